// Package crypto implements the courier protocol primitives.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie-Hellman (Generate,
//     SharedSecret, PublicKeyFromBytes)
//   - Session key derivation: one HKDF-SHA256 call under a fixed protocol
//     label stretches a shared secret into independent cipher and MAC
//     keys (SessionKeys)
//   - Authenticated encryption in encrypt-then-MAC form: AES-256-CBC with
//     PKCS#7 padding, HMAC-SHA256 over iv‖ciphertext (Seal, Open)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Open verifies the tag in constant time before touching the ciphertext;
// unauthenticated input is never decrypted. Callers should treat derived
// keys and shared secrets as sensitive and wipe them with memzero when
// practical.
package crypto
