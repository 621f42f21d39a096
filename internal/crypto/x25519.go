package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"courier/internal/domain"
)

// Generate returns a fresh X25519 key pair.
// The private key is clamped per RFC 7748.
func Generate() (domain.KeyPair, error) {
	var kp domain.KeyPair
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return domain.KeyPair{}, err
	}
	clamp(&kp.Private)
	pub, err := PublicFromPrivate(kp.Private)
	if err != nil {
		return domain.KeyPair{}, err
	}
	kp.Public = pub
	return kp, nil
}

// PublicFromPrivate recomputes the public point for a private scalar.
func PublicFromPrivate(priv domain.X25519Private) (domain.X25519Public, error) {
	var pub domain.X25519Public
	b, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], b)
	return pub, nil
}

// PublicKeyFromBytes validates an exported public key. Anything that is
// not exactly 32 bytes fails with domain.ErrKeyAgreement.
func PublicKeyFromBytes(b []byte) (domain.X25519Public, error) {
	var pub domain.X25519Public
	if len(b) != len(pub) {
		return pub, fmt.Errorf("%w: got %d bytes, want %d", domain.ErrKeyAgreement, len(b), len(pub))
	}
	copy(pub[:], b)
	return pub, nil
}

// SharedSecret computes X25519 Diffie-Hellman. Degenerate remote keys
// (low-order points yielding an all-zero output) fail with
// domain.ErrKeyAgreement.
func SharedSecret(priv domain.X25519Private, pub domain.X25519Public) ([32]byte, error) {
	var out [32]byte
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, fmt.Errorf("%w: %v", domain.ErrKeyAgreement, err)
	}
	copy(out[:], secret)
	return out, nil
}

// Fingerprint returns a short fingerprint of the public key, safe for
// display and logs.
func Fingerprint(pub domain.X25519Public) string {
	sum := sha256.Sum256(pub[:])
	return hex.EncodeToString(sum[:10])
}

func clamp(k *domain.X25519Private) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
