package domain

import "context"

// KeyStore owns a local participant's long-lived key pair.
type KeyStore interface {
	// LoadOrCreate returns the persisted pair for id, generating and
	// persisting a fresh one on first use. Idempotent across restarts.
	// Corrupt or mismatched persisted material surfaces ErrKeyLoad.
	LoadOrCreate(id Identity) (KeyPair, error)
}

// Directory is the relay's registry of current public keys. Put
// overwrites unconditionally; Get returns ErrNotFound on a miss.
// Operations on the same identity are linearizable; operations on
// different identities do not serialize against each other.
type Directory interface {
	Put(id Identity, publicKey []byte)
	Get(id Identity) ([]byte, error)
}

// Mailbox is the relay's per-identity queue of pending ciphertext.
// Queues are created on first touch; draining an unknown identity yields
// an empty batch. Drain removes and returns everything atomically with
// respect to other drains of the same identity. Requeue puts entries a
// drain could not deliver back at the head of the queue, ahead of
// anything that arrived in the meantime.
type Mailbox interface {
	Enqueue(id Identity, msg QueuedMessage)
	Drain(id Identity) []QueuedMessage
	Requeue(id Identity, entries []QueuedMessage)
}

// RelayClient is the client's view of the relay protocol. One logical
// connection, strictly sequential exchanges.
type RelayClient interface {
	Register(ctx context.Context, id Identity, publicKey []byte) error
	FetchKey(ctx context.Context, id, target Identity) ([]byte, error)
	Send(ctx context.Context, id, target Identity, ciphertext []byte) error
	Receive(ctx context.Context, id Identity) ([]QueuedMessage, error)
	Close() error
}
