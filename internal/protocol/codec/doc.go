// Package codec encodes secrets into the (oayays) wire tuple of the Secret
// Service and decodes them back, under the session's transfer algorithm.
//
// # Algorithms
//
//   - plain: parameters are empty and the value travels as-is.
//   - dh-ietf1024-sha256-aes128-cbc-pkcs7: a fresh 16-byte iv per secret,
//     PKCS#7 padding to the AES block size, AES-128-CBC under the session key.
//
// # Errors
//
// Every malformed input on decode (wrong session path, iv of the wrong length,
// ciphertext that is empty or not block aligned, inconsistent padding) fails
// with domain.ErrDecode. Nothing is decoded best-effort.
//
// Encode and Decode keep no state between calls and may run concurrently
// against the same Session.
package codec
