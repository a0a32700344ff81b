package memzero_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"secretsession/internal/util/memzero"
)

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	memzero.Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)

	memzero.Zero(nil)
}

func TestZeroInt(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(0xdeadbeef), 700)
	words := n.Bits()
	memzero.ZeroInt(n)

	assert.Zero(t, n.Sign())
	for i, w := range words[:cap(words)] {
		assert.Zerof(t, w, "word %d not cleared", i)
	}

	memzero.ZeroInt(nil)
}
