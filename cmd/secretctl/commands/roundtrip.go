package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"secretsession/internal/domain"
)

// roundtripCmd shows the wire tuple a value travels as, then decodes it
// again with the same session.
func roundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <value>",
		Short: "Encode a value through the session and decode it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := wire.Sessions.EnsureSession(cmd.Context()); err != nil {
				return errors.WithMessage(err, "negotiating session")
			}

			in := domain.NewTextSecret(args[0])
			w, err := wire.Sessions.EncodeSecret(in)
			if err != nil {
				return err
			}
			out, err := wire.Sessions.DecodeSecret(w)
			if err != nil {
				return err
			}
			defer out.Wipe()

			o := cmd.OutOrStdout()
			fmt.Fprintf(o, "session:      %s\n", w.Session)
			fmt.Fprintf(o, "parameters:   %s\n", hex.EncodeToString(w.Parameters))
			fmt.Fprintf(o, "value:        %s\n", hex.EncodeToString(w.Value))
			fmt.Fprintf(o, "content type: %s\n", w.ContentType)
			if !bytes.Equal(in.Payload, out.Payload) || in.ContentType != out.ContentType {
				return errors.New("decoded value differs from input")
			}
			fmt.Fprintln(o, "decoded value matches input")
			return nil
		},
	}
}
