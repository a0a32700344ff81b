package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// sessionCmd negotiates a session and reports what was agreed.
func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Negotiate a transfer session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := wire.Sessions.EnsureSession(cmd.Context())
			if err != nil {
				return errors.WithMessage(err, "negotiating session")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "algorithm: %s\n", sess.Algorithm.Name())
			fmt.Fprintf(out, "session:   %s\n", sess.Path)
			fmt.Fprintf(out, "encrypted: %t\n", sess.Algorithm.Encrypted())
			return nil
		},
	}
}
