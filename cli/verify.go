package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/molnia/dbatch/sink"
)

// NewVerifyCommand creates the command that checks the frame of a finished
// artifact: header first, footer last, count matching the data lines.
func NewVerifyCommand(_ *RootOptions) *cobra.Command {
	var (
		identityFile string
		compressed   bool
		footerLabel  string
	)

	cmd := &cobra.Command{
		Use:   "verify <artifact>",
		Short: "Verify the framing and record count of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []sink.VerifyOption

			if identityFile != "" {
				raw, err := os.ReadFile(identityFile)
				if err != nil {
					return fmt.Errorf("os.ReadFile: %w", err)
				}
				identity, err := sink.ParseIdentity(strings.TrimSpace(string(raw)))
				if err != nil {
					return err
				}
				opts = append(opts, sink.VerifyWithIdentity(identity))
			}
			if compressed {
				opts = append(opts, sink.VerifyWithCompression())
			}
			if footerLabel != "" {
				opts = append(opts, sink.VerifyWithFooterLabel(footerLabel))
			}

			result, err := sink.Verify(args[0], opts...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d data lines, footer count %d\n", result.DataLines, result.FooterCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&identityFile, "identity", "i", "", "file holding the age identity to decrypt with")
	cmd.Flags().BoolVar(&compressed, "compressed", false, "expect a gzip layer")
	cmd.Flags().StringVar(&footerLabel, "footer-label", "", "expected footer label (default \"Total Records: \")")

	return cmd
}
