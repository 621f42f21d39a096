package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// kdfLabel binds derived keys to this protocol version. Changing it
// changes every session key in the deployment.
const kdfLabel = "courier-session-v1"

// SessionKeys stretches an ECDH shared secret into two independent
// 256-bit keys: one for AES-CBC, one for HMAC. Both directions of a
// session derive the same pair, and the two keys are never reused for
// each other's purpose.
func SessionKeys(shared [32]byte) (encKey, macKey [32]byte, err error) {
	r := hkdf.New(sha256.New, shared[:], nil, []byte(kdfLabel))
	if _, err = io.ReadFull(r, encKey[:]); err != nil {
		return
	}
	_, err = io.ReadFull(r, macKey[:])
	return
}
