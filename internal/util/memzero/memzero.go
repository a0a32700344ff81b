package memzero

import (
	"crypto/subtle"
	"math/big"
)

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// ZeroInt clears every limb backing n, spare capacity included, and sets n
// to zero.
func ZeroInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	words = words[:cap(words)]
	for i := range words {
		words[i] = 0
	}
	n.SetInt64(0)
}
