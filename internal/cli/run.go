package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	goredis "github.com/akashmaji946/go-redis-batch/go-client"
	"github.com/akashmaji946/go-redis-batch/internal/common"
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
	"github.com/akashmaji946/go-redis-batch/internal/script"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Transaction bool
	Async       bool
	Info        bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Send a batch script and print the replies",
		Long: `Sends every command in the script in one flush and prints the replies in
command order. Transactions print whether EXEC committed.

Example:
  go-redis-batch run ./scripts/transfer.yaml --tx --async`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Transaction, "tx", false, "wrap the script in MULTI/EXEC")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "use async decoders and flush")
	cmd.Flags().BoolVar(&opts.Info, "info", false, "print the info report after the run")

	return cmd
}

func runScript(cmd *cobra.Command, opts *RunOptions, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	if opts.Transaction {
		s.Transaction = true
	}
	mode := pipeline.Sync
	if opts.Async {
		mode = pipeline.Async
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := goredis.Dial(ctx, opts.conf, opts.logger)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", opts.conf.Addr, err)
	}
	defer client.Close()

	opts.logger.Debug("running %s: %d commands, mode %s, transaction %v",
		path, len(s.Commands), mode, s.Transaction)

	res, err := script.Run(ctx, client.Conn(), s, mode)
	if res != nil {
		fmt.Fprint(cmd.OutOrStdout(), res.String())
	}
	if opts.Info {
		fmt.Fprint(cmd.OutOrStdout(), "\n"+common.NewBatchInfo().Print(opts.conf, common.Stats))
	}
	return err
}
