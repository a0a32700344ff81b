package domain

import "context"

// SessionOpener is the remote OpenSession call.
type SessionOpener interface {
	// OpenSession offers algorithm with input and returns the algorithm output
	// and the session path assigned by the service. input and output carry the
	// big-endian DH public values for the encrypted algorithm and are empty
	// for plain.
	OpenSession(ctx context.Context, algorithm string, input []byte) ([]byte, ObjectPath, error)
}

// SessionCloser releases a remote session.
type SessionCloser interface {
	CloseSession(ctx context.Context, session ObjectPath) error
}

// SecretService is the narrow slice of the Secret Service API this module
// talks to: sessions plus secret get/set on items.
type SecretService interface {
	SessionOpener
	SessionCloser
	GetSecret(ctx context.Context, item, session ObjectPath) (WireSecret, error)
	GetSecrets(ctx context.Context, items []ObjectPath, session ObjectPath) (map[ObjectPath]WireSecret, error)
	SetSecret(ctx context.Context, item ObjectPath, secret WireSecret) error
}

// SessionProvider hands out the established session and encodes secrets
// through it.
type SessionProvider interface {
	EnsureSession(ctx context.Context) (Session, error)
	EncodeSecret(v SecretValue) (WireSecret, error)
	DecodeSecret(w WireSecret) (SecretValue, error)
}

// StoredItem is a secret at rest inside a service implementation.
type StoredItem struct {
	Label       string `json:"label"`
	ContentType string `json:"content_type"`
	Secret      []byte `json:"secret"`
}

// ItemStore persists items for a service implementation.
type ItemStore interface {
	LoadItem(path ObjectPath) (StoredItem, bool, error)
	SaveItem(path ObjectPath, item StoredItem) error
	ListItems() ([]ObjectPath, error)
}
