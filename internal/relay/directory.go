package relay

import (
	"fmt"
	"sync"

	"courier/internal/domain"
)

// Directory maps identities to their currently registered public key.
// A later Put silently replaces the prior key: there is no versioning
// and no revocation signal to peers who already cached the old one.
type Directory struct {
	shards [shardCount]directoryShard
}

type directoryShard struct {
	mu   sync.RWMutex
	keys map[domain.Identity][]byte
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	d := &Directory{}
	for i := range d.shards {
		d.shards[i].keys = make(map[domain.Identity][]byte)
	}
	return d
}

// Put registers publicKey for id, overwriting unconditionally.
func (d *Directory) Put(id domain.Identity, publicKey []byte) {
	s := &d.shards[shardIndex(string(id))]
	s.mu.Lock()
	s.keys[id] = append([]byte(nil), publicKey...)
	s.mu.Unlock()
}

// Get returns the registered key for id, or domain.ErrNotFound.
func (d *Directory) Get(id domain.Identity) ([]byte, error) {
	s := &d.shards[shardIndex(string(id))]
	s.mu.RLock()
	key, ok := s.keys[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no key for %q", domain.ErrNotFound, id)
	}
	return append([]byte(nil), key...), nil
}

var _ domain.Directory = (*Directory)(nil)
