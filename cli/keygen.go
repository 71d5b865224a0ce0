package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/molnia/dbatch/sink"
)

// NewKeygenCommand creates the command that generates an encryption key
// pair for the sink. The recipient goes into the job config; the identity
// stays with whoever gets to read the artifact.
func NewKeygenCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an artifact encryption key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, recipient, err := sink.GenerateIdentity()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# recipient (put into sink.encryption.recipient)\n%s\n", recipient)
			fmt.Fprintf(cmd.OutOrStdout(), "# identity (keep secret, used to decrypt)\n%s\n", identity)
			return nil
		},
	}
}
