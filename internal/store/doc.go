// Package store provides item persistence for the in-process secret service.
//
// Two domain.ItemStore implementations are available:
//   - MemoryItemStore keeps items in a map and is what tests use
//   - ItemFileStore keeps every item in one JSON file, optionally sealed
//     with a passphrase (scrypt + XChaCha20-Poly1305)
//
// Writes go through a temp file that is renamed over the target, so a crash
// never leaves a half-written file behind. All methods are safe for
// concurrent use.
package store
