package app

import (
	"github.com/rs/zerolog"

	"courier/internal/domain"
	"courier/internal/relay"
	messagesvc "courier/internal/services/message"
	"courier/internal/store"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string // key directory, e.g. $HOME/.courier
	RelayAddr  string // relay host:port; empty means no relay commands
	Passphrase string // optional key-at-rest passphrase
	Log        zerolog.Logger
}

// App bundles everything a CLI command needs.
type App struct {
	Keys     domain.KeyStore
	Relay    domain.RelayClient
	Messages *messagesvc.Service
}

// New constructs the dependency graph from cfg. With no relay address
// configured App.Relay and App.Messages stay nil and commands that need
// the relay report that to the operator.
func New(cfg Config) (*App, error) {
	keys := store.NewFileKeyStore(cfg.Home, cfg.Passphrase)
	a := &App{Keys: keys}

	if cfg.RelayAddr != "" {
		rc, err := relay.Dial(cfg.RelayAddr)
		if err != nil {
			return nil, err
		}
		a.Relay = rc
		a.Messages = messagesvc.New(keys, rc, cfg.Log)
	}
	return a, nil
}

// Close releases the relay connection, if any.
func (a *App) Close() error {
	if a.Relay != nil {
		return a.Relay.Close()
	}
	return nil
}
