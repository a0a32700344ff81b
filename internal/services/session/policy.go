package session

import (
	"strings"

	"github.com/pkg/errors"
)

// Policy selects the algorithms a negotiator offers.
type Policy int

const (
	// PolicyPreferEncrypted offers the DH algorithm and falls back to plain
	// when the service does not support it.
	PolicyPreferEncrypted Policy = iota
	// PolicyRequireEncrypted offers only the DH algorithm.
	PolicyRequireEncrypted
	// PolicyPlainOnly offers only plain.
	PolicyPlainOnly
)

func (p Policy) String() string {
	switch p {
	case PolicyRequireEncrypted:
		return "require-encrypted"
	case PolicyPlainOnly:
		return "plain"
	default:
		return "prefer-encrypted"
	}
}

// ParsePolicy maps a configuration name to a Policy. The empty name selects
// PolicyPreferEncrypted.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "prefer-encrypted":
		return PolicyPreferEncrypted, nil
	case "require-encrypted":
		return PolicyRequireEncrypted, nil
	case "plain", "plain-only":
		return PolicyPlainOnly, nil
	default:
		return 0, errors.Errorf("unknown session policy %q", name)
	}
}
