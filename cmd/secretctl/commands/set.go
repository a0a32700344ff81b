package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"secretsession/internal/domain"
)

func setCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "set <item> <value>",
		Short: "Store a secret on an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := domain.ItemPath(args[0])
			v := domain.SecretValue{ContentType: contentType, Payload: []byte(args[1])}
			defer v.Wipe()

			if err := wire.Secrets.Set(cmd.Context(), item, v); err != nil {
				return errors.WithMessagef(err, "writing %s", item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d bytes on %s (%s)\n", len(v.Payload), item, wire.Sessions.Algorithm())
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", domain.ContentTypeText, "content type of the secret")
	return cmd
}
