package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"courier/internal/crypto"
	"courier/internal/domain"
	"courier/internal/util/memzero"
)

const curveName = "x25519"

// keyFile is the on-disk shape. Exactly one of Private / Envelope is set.
type keyFile struct {
	Curve    string    `json:"curve"`
	Public   string    `json:"public"`
	Private  string    `json:"private,omitempty"`
	Envelope *envelope `json:"envelope,omitempty"`
}

// envelope wraps the private key under a passphrase-derived key.
type envelope struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	CT    []byte `json:"ct"`
}

// FileKeyStore keeps one key file per identity under dir.
type FileKeyStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileKeyStore returns a keystore rooted at dir. An empty passphrase
// stores private keys unwrapped.
func NewFileKeyStore(dir, passphrase string) *FileKeyStore {
	return &FileKeyStore{dir: dir, passphrase: passphrase}
}

// LoadOrCreate returns id's persisted pair, generating and persisting a
// fresh one on first use.
func (s *FileKeyStore) LoadOrCreate(id domain.Identity) (domain.KeyPair, error) {
	if id == "" || strings.ContainsAny(string(id), `/\`) {
		return domain.KeyPair{}, fmt.Errorf("%w: unusable identity %q", domain.ErrKeyLoad, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, fmt.Sprintf("key-%s.json", id))
	b, err := os.ReadFile(path)
	if err == nil {
		return s.parse(b)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return domain.KeyPair{}, err
	}

	kp, err := crypto.Generate()
	if err != nil {
		return domain.KeyPair{}, err
	}
	if err := s.write(path, kp); err != nil {
		return domain.KeyPair{}, err
	}
	return kp, nil
}

func (s *FileKeyStore) parse(b []byte) (domain.KeyPair, error) {
	var kf keyFile
	if err := json.Unmarshal(b, &kf); err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: %v", domain.ErrKeyLoad, err)
	}
	if kf.Curve != curveName {
		return domain.KeyPair{}, fmt.Errorf("%w: curve %q, want %q", domain.ErrKeyLoad, kf.Curve, curveName)
	}

	var kp domain.KeyPair
	pub, err := hex.DecodeString(kf.Public)
	if err != nil || len(pub) != len(kp.Public) {
		return domain.KeyPair{}, fmt.Errorf("%w: bad public key", domain.ErrKeyLoad)
	}
	copy(kp.Public[:], pub)

	var priv []byte
	switch {
	case kf.Envelope != nil:
		priv, err = s.unwrap(kf.Envelope)
		if err != nil {
			return domain.KeyPair{}, err
		}
	case kf.Private != "":
		priv, err = hex.DecodeString(kf.Private)
		if err != nil {
			return domain.KeyPair{}, fmt.Errorf("%w: bad private key hex", domain.ErrKeyLoad)
		}
	default:
		return domain.KeyPair{}, fmt.Errorf("%w: no private key material", domain.ErrKeyLoad)
	}
	if len(priv) != len(kp.Private) {
		return domain.KeyPair{}, fmt.Errorf("%w: private key is %d bytes", domain.ErrKeyLoad, len(priv))
	}
	copy(kp.Private[:], priv)
	memzero.Zero(priv)

	// The stored public key must be the one this private scalar yields;
	// anything else means the file was edited or corrupted.
	derived, err := crypto.PublicFromPrivate(kp.Private)
	if err != nil || derived != kp.Public {
		return domain.KeyPair{}, fmt.Errorf("%w: public key does not match private scalar", domain.ErrKeyLoad)
	}
	return kp, nil
}

func (s *FileKeyStore) write(path string, kp domain.KeyPair) error {
	kf := keyFile{
		Curve:  curveName,
		Public: hex.EncodeToString(kp.Public.Slice()),
	}
	if s.passphrase == "" {
		kf.Private = hex.EncodeToString(kp.Private.Slice())
	} else {
		env, err := s.wrap(kp.Private.Slice())
		if err != nil {
			return err
		}
		kf.Envelope = env
	}
	b, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, b, 0o600)
}

func (s *FileKeyStore) wrap(priv []byte) (*envelope, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	kek, err := deriveKEK(s.passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return &envelope{Salt: salt, Nonce: nonce, CT: aead.Seal(nil, nonce, priv, salt)}, nil
}

func (s *FileKeyStore) unwrap(env *envelope) ([]byte, error) {
	kek, err := deriveKEK(s.passphrase, env.Salt)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad envelope nonce", domain.ErrKeyLoad)
	}
	priv, err := aead.Open(nil, env.Nonce, env.CT, env.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: envelope open: %v", domain.ErrKeyLoad, err)
	}
	return priv, nil
}

func deriveKEK(passphrase string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
}

// writeFile writes bytes via a temp file, then atomically replaces the
// target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var _ domain.KeyStore = (*FileKeyStore)(nil)
