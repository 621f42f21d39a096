package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier/internal/domain"
)

// send <peer> <message>: encrypt and queue a message for <peer>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRelay(); err != nil {
				return err
			}
			err := appCtx.Messages.Send(cmd.Context(), domain.Identity(identity), domain.Identity(args[0]), []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Println("sent")
			return nil
		},
	}
}
