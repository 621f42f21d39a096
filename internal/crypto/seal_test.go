package crypto_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"testing"

	"courier/internal/crypto"
	"courier/internal/domain"
)

func sessionKeys(t *testing.T) (enc, mac [32]byte) {
	t.Helper()
	var shared [32]byte
	if _, err := rand.Read(shared[:]); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc, mac, err := crypto.SessionKeys(shared)
	if err != nil {
		t.Fatalf("SessionKeys: %v", err)
	}
	return enc, mac
}

func TestSealOpenRoundTrip(t *testing.T) {
	enc, mac := sessionKeys(t)

	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, aes.BlockSize),     // exactly one block
		bytes.Repeat([]byte{0xCD}, aes.BlockSize*4+3), // ragged multi-block
	}
	for _, plain := range cases {
		blob, err := crypto.Seal(plain, enc, mac)
		if err != nil {
			t.Fatalf("Seal(%d bytes): %v", len(plain), err)
		}
		if got, want := len(blob), crypto.IVSize+paddedLen(plain)+crypto.TagSize; got != want {
			t.Fatalf("blob length %d, want %d", got, want)
		}
		out, err := crypto.Open(blob, enc, mac)
		if err != nil {
			t.Fatalf("Open(%d bytes): %v", len(plain), err)
		}
		if !bytes.Equal(out, plain) {
			t.Fatalf("round trip mismatch: got %q want %q", out, plain)
		}
	}
}

// paddedLen mirrors the padded size Seal should produce.
func paddedLen(p []byte) int {
	return len(p) + aes.BlockSize - len(p)%aes.BlockSize
}

func TestSealFreshIVPerCall(t *testing.T) {
	enc, mac := sessionKeys(t)
	a, err := crypto.Seal([]byte("same plaintext"), enc, mac)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b, err := crypto.Seal([]byte("same plaintext"), enc, mac)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Equal(a[:crypto.IVSize], b[:crypto.IVSize]) {
		t.Fatal("IV repeated across calls")
	}
	if bytes.Equal(a, b) {
		t.Fatal("identical blobs for identical plaintexts")
	}
}

func TestOpenDetectsSingleBitTamper(t *testing.T) {
	enc, mac := sessionKeys(t)
	blob, err := crypto.Seal([]byte("hello"), enc, mac)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	for i := 0; i < len(blob); i++ {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), blob...)
			tampered[i] ^= 1 << bit
			if _, err := crypto.Open(tampered, enc, mac); !errors.Is(err, domain.ErrAuthentication) {
				t.Fatalf("byte %d bit %d: want ErrAuthentication, got %v", i, bit, err)
			}
		}
	}
}

func TestOpenRejectsShortBlob(t *testing.T) {
	enc, mac := sessionKeys(t)
	if _, err := crypto.Open(make([]byte, crypto.IVSize+crypto.TagSize), enc, mac); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication for short blob, got %v", err)
	}
}

func TestOpenWrongKeyFailsAuthentication(t *testing.T) {
	enc, mac := sessionKeys(t)
	otherEnc, otherMac := sessionKeys(t)
	blob, err := crypto.Seal([]byte("hello"), enc, mac)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := crypto.Open(blob, otherEnc, otherMac); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication under wrong keys, got %v", err)
	}
}

// A blob with a valid tag but garbage padding must surface ErrPadding,
// not silently truncate. Build one by hand with the real keys.
func TestOpenMalformedPadding(t *testing.T) {
	enc, mac := sessionKeys(t)

	block, err := aes.NewCipher(enc[:])
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	iv := make([]byte, crypto.IVSize)
	if _, err := rand.Read(iv); err != nil {
		t.Fatalf("rand: %v", err)
	}

	// Last byte claims 17 bytes of padding: out of range for AES.
	padded := bytes.Repeat([]byte{0x11}, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	h := hmac.New(sha256.New, mac[:])
	h.Write(iv)
	h.Write(ct)

	blob := append(append(append([]byte(nil), iv...), ct...), h.Sum(nil)...)
	if _, err := crypto.Open(blob, enc, mac); !errors.Is(err, domain.ErrPadding) {
		t.Fatalf("want ErrPadding, got %v", err)
	}
}
