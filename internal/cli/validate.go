package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akashmaji946/go-redis-batch/internal/script"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script.yaml>",
		Short: "Check a batch script without connecting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			kind := "pipeline"
			if s.Transaction {
				kind = "transaction"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d commands (%s)\n", args[0], len(s.Commands), kind)
			return nil
		},
	}
}
