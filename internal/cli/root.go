package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/syncqueue/pkg/config"
	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/requestid"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json", "yaml"}

// RootOptions holds global flags and state shared by every command.
type RootOptions struct {
	DSN       string
	Namespace string
	Queue     string
	Format    string
	EnvFile   string
	Verbose   bool

	Out io.Writer
	Err io.Writer

	cfg syncqueue.Config
	log *slog.Logger
}

// NewRootCommand builds the syncqueue command tree writing to stdout/stderr.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Out: os.Stdout, Err: os.Stderr})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "syncqueue",
		Short:         "Inspect and drain an offline mutation queue",
		Long:          "syncqueue manages a persisted queue of pending mutations and replays them against a remote endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.DSN, "dsn", "", "storage DSN (default $SYNCQUEUE_STORAGE_DSN or file://.syncqueue)")
	flags.StringVarP(&opts.Namespace, "namespace", "n", "", "queue namespace, usually the user id (default $SYNCQUEUE_NAMESPACE or anon)")
	flags.StringVar(&opts.Queue, "queue", "", "queue name (default $SYNCQUEUE_QUEUE_NAME or mutation_queue)")
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	flags.StringVar(&opts.EnvFile, "env-file", "", "load variables from this .env file first")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newEnqueueCommand(opts),
		newPendingCommand(opts),
		newCountCommand(opts),
		newClearCommand(opts),
		newDrainCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
		newDeadLetterCommand(opts),
	)
	return cmd
}

// setup validates flags, loads configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if o.EnvFile != "" {
		if err := config.LoadEnv(o.EnvFile); err != nil {
			return err
		}
	}
	if err := config.ForceReload(&o.cfg); err != nil {
		return err
	}
	if o.DSN != "" {
		o.cfg.StorageDSN = o.DSN
	}
	if cmd.Flags().Changed("namespace") {
		o.cfg.Namespace = o.Namespace
	}
	if o.Queue != "" {
		o.cfg.QueueName = o.Queue
	}

	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	logOpts := []logger.Option{
		logger.WithOutput(o.Err),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if o.Verbose {
		logOpts = append(logOpts, logger.WithLevel(slog.LevelDebug))
	}
	log, err := logger.NewFromConfig(logCfg, logOpts...)
	if err != nil {
		return err
	}
	o.log = log
	return nil
}

// Logger returns the configured logger, or slog.Default before setup.
func (o *RootOptions) Logger() *slog.Logger {
	if o.log == nil {
		return slog.Default()
	}
	return o.log
}

// Config returns the effective queue configuration.
func (o *RootOptions) Config() syncqueue.Config {
	return o.cfg
}
