package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print client, memory and batch counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), common.NewBatchInfo().Print(opts.conf, common.Stats))
			return nil
		},
	}
}
