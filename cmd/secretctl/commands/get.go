package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"secretsession/internal/domain"
)

func getCmd() *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "get <item>...",
		Short: "Print the secret of one or more items",
		Long: "Items are object paths, or names of items in the default collection " +
			"(" + string(domain.DefaultCollectionPath) + ").",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]domain.ObjectPath, len(args))
			for i, a := range args {
				items[i] = domain.ItemPath(a)
			}

			if len(items) == 1 {
				v, err := wire.Secrets.Get(cmd.Context(), items[0])
				if err != nil {
					return errors.WithMessagef(err, "reading %s", items[0])
				}
				defer v.Wipe()
				printSecret(cmd, "", v, asHex)
				return nil
			}

			values, err := wire.Secrets.GetMany(cmd.Context(), items)
			if err != nil {
				return errors.WithMessage(err, "reading secrets")
			}
			for _, item := range items {
				v, ok := values[item]
				if !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: not found\n", item)
					continue
				}
				printSecret(cmd, string(item)+": ", v, asHex)
				v.Wipe()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "always print the payload as hex")
	return cmd
}

func printSecret(cmd *cobra.Command, prefix string, v domain.SecretValue, asHex bool) {
	if text, ok := v.Text(); ok && !asHex {
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", prefix, text)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%s)\n", prefix, hex.EncodeToString(v.Payload), v.ContentType)
}
