// Package fakeservice is an in-process Secret Service.
//
// It implements domain.SecretService the way a real daemon answers on the
// bus: OpenSession for plain and dh-ietf1024-sha256-aes128-cbc-pkcs7,
// session Close, and secret transfer on items through a domain.ItemStore.
// Behaviour switches (rejecting algorithms, injected failures, a gate that
// holds OpenSession back, a forged DH reply) let tests drive a negotiator
// through every branch, and the CLI uses it with --mock.
package fakeservice
