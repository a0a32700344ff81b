package dh

import "math/big"

// PrimeBytes is the byte length of the group prime.
const PrimeBytes = 128

const primeHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381" +
	"FFFFFFFFFFFFFFFF"

var (
	prime = func() *big.Int {
		p, ok := new(big.Int).SetString(primeHex, 16)
		if !ok {
			panic("dh: bad group prime")
		}
		return p
	}()
	generator = big.NewInt(2)

	one           = big.NewInt(1)
	two           = big.NewInt(2)
	primeMinusOne = new(big.Int).Sub(prime, one)
	// private exponents are drawn from [0, p-3) and shifted by two
	exponentRange = new(big.Int).Sub(prime, big.NewInt(3))
)

// Prime returns a copy of the group prime.
func Prime() *big.Int { return new(big.Int).Set(prime) }

// Generator returns a copy of the group generator.
func Generator() *big.Int { return new(big.Int).Set(generator) }
