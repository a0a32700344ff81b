package crypto

import (
	"math/big"

	"github.com/pkg/errors"

	"secretsession/internal/util/memzero"
)

// ErrInvalidModulus is returned for an empty modulus or a modulus <= 1.
var ErrInvalidModulus = errors.New("modulus must be greater than one")

var one = big.NewInt(1)

// ModPow returns base^exponent mod modulus. All operands and the result are
// unsigned big-endian integers; the result carries no leading zero bytes.
func ModPow(base, exponent, modulus []byte) ([]byte, error) {
	if len(modulus) == 0 {
		return nil, ErrInvalidModulus
	}
	e := new(big.Int).SetBytes(exponent)
	defer memzero.ZeroInt(e)

	r, err := ModPowInt(new(big.Int).SetBytes(base), e, new(big.Int).SetBytes(modulus))
	if err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

// ModPowInt is ModPow on non-negative *big.Int values. The operands are not
// modified.
func ModPowInt(base, exponent, modulus *big.Int) (*big.Int, error) {
	if modulus == nil || modulus.Cmp(one) <= 0 {
		return nil, ErrInvalidModulus
	}
	if base.Sign() < 0 || exponent.Sign() < 0 {
		return nil, errors.New("operands must be non-negative")
	}
	return new(big.Int).Exp(base, exponent, modulus), nil
}
