// Package store persists each local identity's long-lived key pair.
//
// One JSON file per identity, written via temp file + rename so a crash
// never leaves a half-written key behind. With a passphrase configured
// the private half is wrapped in an scrypt + ChaCha20-Poly1305 envelope;
// without one it is stored plaintext with 0600 permissions. Loading is
// idempotent: the same pair comes back for the same identity across
// process restarts, and anything corrupt or generated for a different
// curve surfaces domain.ErrKeyLoad.
package store
