package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"courier/internal/domain"
)

const (
	// IVSize is the CBC initialization vector length.
	IVSize = aes.BlockSize
	// TagSize is the HMAC-SHA256 tag length.
	TagSize = sha256.Size
)

// Seal encrypts plaintext in encrypt-then-MAC form and returns
// iv ‖ ciphertext ‖ tag. The IV is freshly random per call; reusing an IV
// under the same key is the one thing CBC cannot survive. The tag covers
// iv ‖ ciphertext under macKey.
func Seal(plaintext []byte, encKey, macKey [32]byte) ([]byte, error) {
	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext)
	blob := make([]byte, IVSize+len(padded)+TagSize)
	iv := blob[:IVSize]
	ct := blob[IVSize : IVSize+len(padded)]

	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	mac := hmac.New(sha256.New, macKey[:])
	mac.Write(blob[:IVSize+len(padded)])
	copy(blob[IVSize+len(padded):], mac.Sum(nil))
	return blob, nil
}

// Open verifies the tag over iv ‖ ciphertext in constant time and only
// then decrypts and removes padding. Verification failure surfaces
// domain.ErrAuthentication; a bad pad after an authentic decrypt
// surfaces domain.ErrPadding.
func Open(blob []byte, encKey, macKey [32]byte) ([]byte, error) {
	if len(blob) < IVSize+aes.BlockSize+TagSize {
		return nil, fmt.Errorf("%w: blob too short (%d bytes)", domain.ErrAuthentication, len(blob))
	}
	iv := blob[:IVSize]
	ct := blob[IVSize : len(blob)-TagSize]
	tag := blob[len(blob)-TagSize:]

	mac := hmac.New(sha256.New, macKey[:])
	mac.Write(blob[:len(blob)-TagSize])
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, domain.ErrAuthentication
	}
	if len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block aligned", domain.ErrAuthentication)
	}

	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return unpad(plain)
}

// pad appends PKCS#7 padding: n bytes of value n, always at least one.
func pad(p []byte) []byte {
	n := aes.BlockSize - len(p)%aes.BlockSize
	out := make([]byte, len(p)+n)
	copy(out, p)
	for i := len(p); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(p []byte) ([]byte, error) {
	if len(p) == 0 || len(p)%aes.BlockSize != 0 {
		return nil, domain.ErrPadding
	}
	n := int(p[len(p)-1])
	if n == 0 || n > aes.BlockSize || n > len(p) {
		return nil, fmt.Errorf("%w: pad value %d", domain.ErrPadding, n)
	}
	for _, b := range p[len(p)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", domain.ErrPadding)
		}
	}
	return p[:len(p)-n], nil
}
