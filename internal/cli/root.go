// Package cli implements the go-redis-batch command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/akashmaji946/go-redis-batch/internal/common"
	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Addr       string
	Verbose    bool

	// set by the root's PersistentPreRunE
	conf   *common.Config
	logger *common.Logger
}

// NewRootCommand creates the root command for the go-redis-batch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "go-redis-batch",
		Short: "Pipelines and MULTI/EXEC transactions for Go-Redis",
		Long: "Runs YAML batch scripts against a Go-Redis (or Redis) server, either as\n" +
			"a plain pipeline or wrapped in MULTI/EXEC, and prints every reply in order.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "./config/batch.yaml", "config file")
	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "", "server address (overrides the config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))

	return cmd
}

// load reads the config and sets up logging for the subcommand.
func (opts *RootOptions) load() error {
	conf, err := common.ReadConf(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		conf.Addr = opts.Addr
	}
	if opts.Verbose {
		conf.Verbose = true
		conf.LogLevel = "debug"
	}

	logger := common.NewLogger()
	if conf.LogLevel != "" {
		if err := logger.SetLevel(conf.LogLevel); err != nil {
			return err
		}
	}
	pipeline.SetLogger(logger)

	opts.conf = conf
	opts.logger = logger
	return nil
}
