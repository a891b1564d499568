package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/driver/stub"
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/node"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

func newSimCommand(opts *globalOptions) *cobra.Command {
	var message string
	var count int
	var loss float64
	var seed int64
	var repeat int

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Send messages between an in-process sender and receiver",
		Long: `Connects a transmitter and a receiver through the stub radio, optionally
dropping frame copies, and reports how many messages survived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(message) > proto.MaxMessageLength {
				return fmt.Errorf("message: %w", proto.ErrMessageTooLong)
			}
			if loss < 0 || loss >= 1 {
				return fmt.Errorf("loss must be in [0, 1), got %v", loss)
			}
			ctx, cancel := signalContext()
			defer cancel()
			return runSim(ctx, opts, simOptions{
				message: message,
				count:   count,
				loss:    loss,
				seed:    seed,
				repeat:  repeat,
			})
		},
	}

	cmd.Flags().StringVar(&message, "message", node.DefaultMessage, "Message to send")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of messages")
	cmd.Flags().Float64Var(&loss, "loss", 0, "Probability of losing each frame copy")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the loss model")
	cmd.Flags().IntVar(&repeat, "repeat", proto.RepeatTransmit, "Copies of each frame put on air")

	return cmd
}

type simOptions struct {
	message string
	count   int
	loss    float64
	seed    int64
	repeat  int
}

// simResult summarises one simulation run.
type simResult struct {
	Sent      int
	Delivered int
	Corrupted int
	Timeouts  int
	Lost      uint32
}

func runSim(ctx context.Context, opts *globalOptions, so simOptions) error {
	res, err := simulate(ctx, opts.cfg.Receiver.Options(), so)
	if err != nil {
		return err
	}
	fmt.Printf("sent %d, delivered %d, corrupted %d, timed out %d, copies lost %d\n",
		res.Sent, res.Delivered, res.Corrupted, res.Timeouts, res.Lost)
	return nil
}

func simulate(ctx context.Context, ropts transport.Options, so simOptions) (simResult, error) {
	txRadio, rxRadio := stub.New(), stub.New()
	txRadio.ConnectTo(rxRadio)
	txRadio.SetRepeat(so.repeat, 0)
	if so.loss > 0 {
		txRadio.SetLoss(so.loss, so.seed)
	}

	rx := node.NewReceiver(node.ReceiverConfig{
		Radio:   rxRadio,
		Tone:    terminalTone{},
		LED:     &terminalLED{},
		Options: ropts,
		Muted:   true,
	})

	var mu sync.Mutex
	var res simResult
	got := make(chan struct{}, so.count)
	rx.AddListener(node.ListenerFunc(func(ev node.Event) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.Kind {
		case node.EventMessage:
			if ev.Message == so.message {
				res.Delivered++
			} else {
				res.Corrupted++
				logger.Debug("[Sim] Corrupted message %q\r\n", ev.Message)
			}
			select {
			case got <- struct{}{}:
			default:
			}
		case node.EventTimeout:
			res.Timeouts++
		}
	}))
	if err := rx.Initialise(); err != nil {
		return res, err
	}

	rxCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rx.Run(rxCtx)
	}()

	tx := transport.NewTransmitterWithDriver(txRadio)
	if err := tx.Initialise(); err != nil {
		return res, err
	}
	for i := 0; i < so.count; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := tx.SendMessage(so.message); err != nil {
			return res, err
		}
		mu.Lock()
		res.Sent++
		mu.Unlock()
		// The receiver holds one capture, so let it drain before the next message.
		select {
		case <-got:
		case <-time.After(500 * time.Millisecond):
			logger.Info("[Sim] Message %d not delivered\r\n", i+1)
		case <-ctx.Done():
		}
	}

	stop()
	<-done

	mu.Lock()
	defer mu.Unlock()
	res.Lost = txRadio.Lost()
	return res, nil
}
