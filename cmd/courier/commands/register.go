package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier/internal/crypto"
	"courier/internal/domain"
)

// register: generate a key pair on first use and publish the public half.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Publish your public key to the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRelay(); err != nil {
				return err
			}
			pub, err := appCtx.Messages.Register(cmd.Context(), domain.Identity(identity))
			if err != nil {
				return err
			}
			fmt.Printf("registered %s (fingerprint %s)\n", identity, crypto.Fingerprint(pub))
			return nil
		},
	}
}
