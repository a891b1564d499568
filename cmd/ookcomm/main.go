package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/config"
	"github.com/ystepanoff/ookcomm/logger"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// options shared by every subcommand
type globalOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func main() {
	opts := &globalOptions{}

	var rootCmd = &cobra.Command{
		Use:   "ookcomm",
		Short: "ookcomm - short text alerts over 433MHz OOK remotes",
		Long: `ookcomm sends short text messages as 32-bit OOK remote-control codes and
raises a persistent alert on the receiving node. On a host the radio is
emulated over UDP so both nodes, the journal and the monitor can run anywhere.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to ookcomm.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info or error (overrides config)")

	// Add commands
	rootCmd.AddCommand(newReceiveCommand(opts))
	rootCmd.AddCommand(newSendCommand(opts))
	rootCmd.AddCommand(newSimCommand(opts))
	rootCmd.AddCommand(newMonitorCommand(opts))
	rootCmd.AddCommand(newEncodeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = o.logLevel
	}
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// watchLogLevel applies log_level edits while a node runs.
func (o *globalOptions) watchLogLevel(ctx context.Context, cmd *cobra.Command) {
	if cmd.Flags().Changed("log-level") {
		return
	}
	go func() {
		err := config.Watch(ctx, o.configPath, func(cfg *config.Config) {
			if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
				logger.SetLevel(lvl)
			}
		})
		if err != nil {
			logger.Error("[Config] %v\r\n", err)
		}
	}()
}
