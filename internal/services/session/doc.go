// Package session negotiates and owns the transfer session with the Secret
// Service.
//
// A Negotiator moves through three states:
//
//	Unestablished --EnsureSession--> Negotiating --ok--> Established
//	                                      |
//	                                      +--error--> Unestablished
//
// Steps of a negotiation (policy PreferEncrypted):
//  1. Generate an ephemeral DH key pair in the IETF 1024-bit group.
//  2. Call OpenSession("dh-ietf1024-sha256-aes128-cbc-pkcs7", public value).
//  3. Validate the service's public value, derive the shared secret and the
//     AES-128 key, wipe the private exponent.
//  4. If the service answers NotSupported, open a "plain" session instead.
//
// Concurrency: at most one OpenSession is in flight per negotiator. Callers
// arriving during a negotiation attach to it and all observe the same
// outcome. A caller whose context ends stops waiting with
// domain.ErrCancelled; the negotiation carries on for the others.
//
// Disconnect resets the negotiator. A negotiation still in flight at that
// point is discarded and its waiters receive domain.ErrSessionClosed.
//
// Failed negotiations are never retried here; the next EnsureSession starts
// over.
package session
