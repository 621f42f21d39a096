package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"courier/internal/crypto"
	"courier/internal/domain"
)

// fetch-key <peer>: look up a peer's registered public key.
func fetchKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-key <peer>",
		Short: "Fetch a peer's registered public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRelay(); err != nil {
				return err
			}
			raw, err := appCtx.Relay.FetchKey(cmd.Context(), domain.Identity(identity), domain.Identity(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(raw))
			if pub, err := crypto.PublicKeyFromBytes(raw); err == nil {
				fmt.Printf("fingerprint %s\n", crypto.Fingerprint(pub))
			}
			return nil
		},
	}
}
