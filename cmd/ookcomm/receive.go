package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/config"
	"github.com/ystepanoff/ookcomm/driver/udp"
	"github.com/ystepanoff/ookcomm/journal"
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/monitor"
	"github.com/ystepanoff/ookcomm/node"
)

func newReceiveCommand(opts *globalOptions) *cobra.Command {
	var listen string
	var monitorAddr string
	var journalPath string
	var strict bool
	var muted bool

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Run the receiving node",
		Long: `Runs the receiver on the UDP air link: reassembles messages, raises the
alert, accepts console commands on stdin and, when enabled, records a
journal and serves the websocket monitor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := opts.cfg.Receiver
			// CLI takes precedence
			if cmd.Flags().Changed("listen") {
				rc.Listen = listen
			}
			if cmd.Flags().Changed("monitor") {
				rc.Monitor = monitorAddr
			}
			if cmd.Flags().Changed("journal") {
				rc.Journal = journalPath
			}
			if cmd.Flags().Changed("strict") {
				rc.StrictSequence = strict
			}
			if cmd.Flags().Changed("muted") {
				sound := !muted
				rc.SoundEnabled = &sound
			}

			ctx, cancel := signalContext()
			defer cancel()
			opts.watchLogLevel(ctx, cmd)
			return runReceive(ctx, rc)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "UDP address of the emulated radio")
	cmd.Flags().StringVarP(&monitorAddr, "monitor", "m", "", "HTTP address of the websocket monitor (empty disables)")
	cmd.Flags().StringVar(&journalPath, "journal", "", "Path of the sqlite journal (empty disables)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort messages whose frames arrive out of order")
	cmd.Flags().BoolVar(&muted, "muted", false, "Start with alert sound disabled")

	return cmd
}

func runReceive(ctx context.Context, rc config.ReceiverConfig) error {
	radio := udp.New(rc.Listen, "")
	defer radio.Close()

	lines := command.NewQueue(command.DefaultQueueSize)
	go func() {
		if err := lines.Feed(os.Stdin); err != nil {
			logger.Error("%v\r\n", err)
		}
	}()

	rx := node.NewReceiver(node.ReceiverConfig{
		Radio:   radio,
		Tone:    terminalTone{},
		LED:     &terminalLED{},
		Console: os.Stdout,
		Lines:   lines,
		Options: rc.Options(),
		Muted:   !rc.Sound(),
	})
	rx.AddListener(node.ListenerFunc(logEvent))

	var j *journal.Journal
	var rec *journal.Recorder
	if rc.Journal != "" {
		var err error
		j, err = journal.Open(rc.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		rec = journal.NewRecorder(j, rc.JournalKeep)
		rx.AddListener(rec)
	}

	var srv *http.Server
	if rc.Monitor != "" {
		var jr monitor.JournalReader
		if j != nil {
			jr = j
		}
		hub := monitor.NewHub(lines, jr)
		hub.Notify(node.Event{Kind: node.EventSound, Sound: rc.Sound()})
		rx.AddListener(hub)
		if rec != nil {
			rec.OnUpdate = hub.BroadcastStats
		}
		srv = &http.Server{Addr: rc.Monitor, Handler: hub.Handler()}
		go func() {
			logger.Info("[Monitor] Listening on http://%s/ws\r\n", rc.Monitor)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("[Monitor] %v\r\n", err)
			}
		}()
	}

	if err := rx.Initialise(); err != nil {
		return fmt.Errorf("initialise receiver: %w", err)
	}

	recDone := make(chan struct{})
	go func() {
		defer close(recDone)
		if rec != nil {
			rec.Run(ctx)
		}
	}()

	err := rx.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		srv.Shutdown(shutdownCtx)
		cancel()
	}
	<-recDone
	logger.Info("[Receiver] Stopped, %d frames rejected, %d captures overwritten\r\n",
		rx.Transport().Rejected(), radio.Overwritten())
	return err
}

func logEvent(ev node.Event) {
	switch ev.Kind {
	case node.EventFrame:
		logger.Debug("[Receiver] Frame %v\r\n", ev.Code)
	case node.EventMessage:
		logger.Info("[Receiver] Message: %q\r\n", ev.Message)
		bell()
	case node.EventOutOfSequence, node.EventAborted:
		logger.Error("[Receiver] %s frame %v\r\n", ev.Kind, ev.Code)
	case node.EventTimeout:
		logger.Error("[Receiver] Message timed out, discarded\r\n")
	case node.EventSent:
		logger.Info("[Sender] Sent %q\r\n", ev.Message)
	case node.EventRefused:
		logger.Info("[Sender] Card refused\r\n")
	}
}
