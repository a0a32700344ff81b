package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("secret service call failed")
	// ErrNegotiationRejected means the service declined every offered algorithm.
	ErrNegotiationRejected = errors.New("secret service rejected all offered algorithms")
	// ErrInvalidPeerValue means the service sent a degenerate DH public value.
	ErrInvalidPeerValue = errors.New("invalid diffie-hellman peer value")
	// ErrDecode means a received secret could not be decoded.
	ErrDecode = errors.New("received an invalid or undecryptable secret")
	// ErrCancelled matches every *CancelledError.
	ErrCancelled = errors.New("wait for session cancelled")
	// ErrProtocol means the service answered with a malformed response.
	ErrProtocol = errors.New("couldn't communicate with the secret storage")

	// ErrAlgorithmNotSupported is the remote's answer to an algorithm it does
	// not implement (org.freedesktop.DBus.Error.NotSupported).
	ErrAlgorithmNotSupported = errors.New("algorithm not supported")
	// ErrNoSession is returned by encode/decode before a session exists.
	ErrNoSession = errors.New("no session established")
	// ErrSessionClosed is returned to waiters whose negotiation was
	// abandoned by a disconnect.
	ErrSessionClosed = errors.New("session disconnected")
)

// TransportError carries a bus or remote failure verbatim.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// CancelledError is returned to a caller that stopped waiting.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return fmt.Sprintf("%v: %v", ErrCancelled, e.Err) }

func (e *CancelledError) Unwrap() error { return e.Err }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }
