// Package crypto exposes the arithmetic primitives used by secretsession.
//
// Contents
//
//   - Modular exponentiation over arbitrary-precision integers, on big-endian
//     byte buffers (ModPow) or on *big.Int values (ModPowInt)
//   - Short fingerprints of public values for display/logging (Fingerprint)
//
// # Notes
//
// ModPow relies on math/big, which is not constant time. Timing side
// channels in the exponentiation are a known residual risk; the exponents
// handled here are ephemeral and used for a single exchange.
package crypto
