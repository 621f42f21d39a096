package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"courier/internal/app"
)

var (
	home       string
	relayAddr  string
	identity   string
	passphrase string

	appCtx *app.App
)

// Execute runs the courier CLI.
func Execute() error {
	root := &cobra.Command{
		Use:           "courier",
		Short:         "End-to-end encrypted messaging over a store-and-forward relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".courier")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger().Level(zerolog.WarnLevel)

			a, err := app.New(app.Config{
				Home:       home,
				RelayAddr:  relayAddr,
				Passphrase: passphrase,
				Log:        log,
			})
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx != nil {
				return appCtx.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "key directory (default ~/.courier)")
	root.PersistentFlags().StringVar(&relayAddr, "relay", "", "relay address (host:port)")
	root.PersistentFlags().StringVarP(&identity, "identity", "i", "", "your identity code")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting keys at rest")
	_ = root.MarkPersistentFlagRequired("identity")

	root.AddCommand(registerCmd(), fetchKeyCmd(), sendCmd(), recvCmd())
	return root.Execute()
}

// requireRelay guards commands that cannot work without a relay.
func requireRelay() error {
	if appCtx.Relay == nil {
		return fmt.Errorf("no relay configured, use --relay")
	}
	return nil
}
