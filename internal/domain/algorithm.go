package domain

import "github.com/pkg/errors"

// Wire names of the transfer algorithms understood by the Secret Service.
const (
	AlgorithmNamePlain = "plain"
	AlgorithmNameDhAes = "dh-ietf1024-sha256-aes128-cbc-pkcs7"
)

// Algorithm is the transfer algorithm of a session.
type Algorithm int

const (
	// AlgorithmUnestablished is reported while no session exists.
	AlgorithmUnestablished Algorithm = iota
	AlgorithmPlain
	AlgorithmDhAes128CbcPkcs7
)

// Name returns the wire name sent to OpenSession, or "" when unestablished.
func (a Algorithm) Name() string {
	switch a {
	case AlgorithmPlain:
		return AlgorithmNamePlain
	case AlgorithmDhAes128CbcPkcs7:
		return AlgorithmNameDhAes
	default:
		return ""
	}
}

func (a Algorithm) String() string {
	if a == AlgorithmUnestablished {
		return "unestablished"
	}
	return a.Name()
}

// Encrypted reports whether secrets travel encrypted under a.
func (a Algorithm) Encrypted() bool { return a == AlgorithmDhAes128CbcPkcs7 }

// ParseAlgorithm maps a wire name back to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case AlgorithmNamePlain:
		return AlgorithmPlain, nil
	case AlgorithmNameDhAes:
		return AlgorithmDhAes128CbcPkcs7, nil
	default:
		return AlgorithmUnestablished, errors.Wrapf(ErrAlgorithmNotSupported, "algorithm %q", name)
	}
}
