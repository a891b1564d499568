package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/config"
	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/driver/ook"
	"github.com/ystepanoff/ookcomm/driver/udp"
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/node"
	proto "github.com/ystepanoff/ookcomm/protocol"
)

func newSendCommand(opts *globalOptions) *cobra.Command {
	var target string
	var message string
	var repeat int

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run the sending node",
		Long: `Runs the sender on the UDP air link. Stdin lines stand in for the card
reader and serial console:

  card C0 A9 72 A3     present a card
  MSG:Fire drill       replace the outgoing message

Authorised cards are read from the credentials list of the config file,
which is reloaded when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := opts.cfg.Sender
			// CLI takes precedence
			if cmd.Flags().Changed("target") {
				sc.Target = target
			}
			if cmd.Flags().Changed("message") {
				if len(message) > proto.MaxMessageLength {
					return fmt.Errorf("message: %w", proto.ErrMessageTooLong)
				}
				sc.Message = message
			}
			if cmd.Flags().Changed("repeat") {
				sc.Repeat = repeat
			}

			ctx, cancel := signalContext()
			defer cancel()
			opts.watchLogLevel(ctx, cmd)
			return runSend(ctx, opts, sc)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "UDP address of the receiver's emulated radio")
	cmd.Flags().StringVar(&message, "message", "", "Initial message")
	cmd.Flags().IntVar(&repeat, "repeat", proto.RepeatTransmit, "Copies of each frame put on air")

	return cmd
}

func runSend(ctx context.Context, opts *globalOptions, sc config.SenderConfig) error {
	// Each copy occupies the air for one RC-Switch transmission.
	gap := time.Duration(ook.TransmissionMicros(proto.FrameBits)) * time.Microsecond
	radio := udp.New("", sc.Target)
	radio.SetRepeat(sc.Repeat, gap)
	defer radio.Close()

	store := credential.NewStore(opts.cfg.UIDs()...)
	go func() {
		if err := config.WatchCredentials(ctx, opts.configPath, store); err != nil {
			logger.Error("[Config] %v\r\n", err)
		}
	}()

	lines := command.NewQueue(command.DefaultQueueSize)
	go func() {
		if err := lines.Feed(os.Stdin); err != nil {
			logger.Error("%v\r\n", err)
		}
	}()

	tx := node.NewSender(node.SenderConfig{
		Radio:        radio,
		Checker:      store,
		Green:        &terminalLED{name: "Green"},
		Red:          &terminalLED{name: "Red"},
		Console:      os.Stdout,
		Lines:        lines,
		Message:      sc.Message,
		MessageLimit: sc.MessageLimit,
	})
	tx.AddListener(node.ListenerFunc(logEvent))

	if err := tx.Initialise(); err != nil {
		return fmt.Errorf("initialise sender: %w", err)
	}
	logger.Info("[Sender] %d authorised cards\r\n", store.Len())

	err := tx.Run(ctx)
	logger.Info("[Sender] Stopped after %d messages\r\n", tx.Transmitter().MessagesSent())
	return err
}
