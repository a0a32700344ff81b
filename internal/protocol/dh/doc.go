// Package dh implements the finite-field Diffie-Hellman exchange behind the
// dh-ietf1024-sha256-aes128-cbc-pkcs7 transfer algorithm.
//
// # Group
//
// The exchange runs in the RFC 2409 Second Oakley Group: the published
// 1024-bit safe prime and generator 2.
//
// # Flow
//
//  1. GenerateKeyPair draws a private exponent uniformly from [2, p-2] and
//     computes the public value g^x mod p.
//  2. PublicBytes is sent to the peer as a big-endian byte string.
//  3. ComputeSharedSecret validates the peer value and returns peer^x mod p.
//
// # Errors
//
// Peer values 0, 1 and anything >= p-1 fail with domain.ErrInvalidPeerValue
// before any exponentiation. A KeyPair is single use: the private exponent is
// wiped as soon as ComputeSharedSecret returns, and a second call fails with
// ErrKeyPairConsumed.
package dh
