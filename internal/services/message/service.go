package message

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"courier/internal/crypto"
	"courier/internal/domain"
	"courier/internal/util/memzero"
)

// Service runs the end-to-end protocol for one or more local identities
// over an injected keystore and relay client.
type Service struct {
	keys  domain.KeyStore
	relay domain.RelayClient
	log   zerolog.Logger
}

// New constructs a message service.
func New(keys domain.KeyStore, relay domain.RelayClient, log zerolog.Logger) *Service {
	return &Service{keys: keys, relay: relay, log: log}
}

// Register publishes me's public key to the relay directory, generating
// the pair on first use.
func (s *Service) Register(ctx context.Context, me domain.Identity) (domain.X25519Public, error) {
	kp, err := s.keys.LoadOrCreate(me)
	if err != nil {
		return domain.X25519Public{}, err
	}
	if err := s.relay.Register(ctx, me, kp.Public.Slice()); err != nil {
		return domain.X25519Public{}, err
	}
	return kp.Public, nil
}

// Send encrypts plaintext for to and queues it on the relay. The target
// must have registered a key first; a miss surfaces domain.ErrNotFound.
func (s *Service) Send(ctx context.Context, from, to domain.Identity, plaintext []byte) error {
	kp, err := s.keys.LoadOrCreate(from)
	if err != nil {
		return err
	}
	encKey, macKey, err := s.sessionWith(ctx, from, to, kp)
	if err != nil {
		return err
	}
	defer memzero.Zero(encKey[:])
	defer memzero.Zero(macKey[:])

	blob, err := crypto.Seal(plaintext, encKey, macKey)
	if err != nil {
		return fmt.Errorf("seal for %q: %w", to, err)
	}
	return s.relay.Send(ctx, from, to, blob)
}

// Receive drains me's mailbox and decrypts each entry with its sender's
// registered key. Entries that cannot be attributed or authenticated are
// dropped with a warning; they are already consumed on the relay and are
// not requeued.
func (s *Service) Receive(ctx context.Context, me domain.Identity) ([]domain.DecryptedMessage, error) {
	kp, err := s.keys.LoadOrCreate(me)
	if err != nil {
		return nil, err
	}
	entries, err := s.relay.Receive(ctx, me)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecryptedMessage, 0, len(entries))
	for _, e := range entries {
		plain, err := s.open(ctx, me, kp, e)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("from", string(e.From)).
				Msg("discarding undecryptable message")
			continue
		}
		out = append(out, domain.DecryptedMessage{From: e.From, Plaintext: plain})
	}
	return out, nil
}

// open authenticates and decrypts one mailbox entry.
func (s *Service) open(ctx context.Context, me domain.Identity, kp domain.KeyPair, e domain.QueuedMessage) ([]byte, error) {
	encKey, macKey, err := s.sessionWith(ctx, me, e.From, kp)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(encKey[:])
	defer memzero.Zero(macKey[:])
	return crypto.Open(e.Ciphertext, encKey, macKey)
}

// sessionWith derives the symmetric keys shared with peer from our pair
// and their registered public key.
func (s *Service) sessionWith(ctx context.Context, me, peer domain.Identity, kp domain.KeyPair) (encKey, macKey [32]byte, err error) {
	raw, err := s.relay.FetchKey(ctx, me, peer)
	if err != nil {
		return encKey, macKey, err
	}
	pub, err := crypto.PublicKeyFromBytes(raw)
	if err != nil {
		return encKey, macKey, fmt.Errorf("key for %q: %w", peer, err)
	}
	shared, err := crypto.SharedSecret(kp.Private, pub)
	if err != nil {
		return encKey, macKey, fmt.Errorf("agreement with %q: %w", peer, err)
	}
	defer memzero.Zero(shared[:])
	// Both directions derive the identical key pair, so one registered
	// key per identity covers the whole session.
	return crypto.SessionKeys(shared)
}
