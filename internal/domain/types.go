package domain

// Identity names a participant. It is a short opaque string supplied by
// the operator (4-digit codes in the reference deployment); courier never
// generates one.
type Identity string

// X25519Private is a Curve25519 private scalar.
type X25519Private [32]byte

// X25519Public is a Curve25519 public point.
type X25519Public [32]byte

// Slice returns a byte-slice view of the key.
func (k X25519Private) Slice() []byte { return k[:] }

// Slice returns a byte-slice view of the key.
func (k X25519Public) Slice() []byte { return k[:] }

// KeyPair is an identity's long-lived X25519 pair. The private half never
// leaves the process except into that identity's own keystore file.
type KeyPair struct {
	Private X25519Private
	Public  X25519Public
}

// QueuedMessage is one mailbox entry: who sent it and the opaque
// ciphertext blob they produced. The relay never inspects the blob.
type QueuedMessage struct {
	From       Identity
	Ciphertext []byte
}

// DecryptedMessage is a mailbox entry after successful authentication
// and decryption on the receiving client.
type DecryptedMessage struct {
	From      Identity
	Plaintext []byte
}
