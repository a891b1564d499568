package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/driver/ook"
	proto "github.com/ystepanoff/ookcomm/protocol"
)

func newEncodeCommand() *cobra.Command {
	var pulses bool

	cmd := &cobra.Command{
		Use:   "encode <message>",
		Short: "Print the frames a message is sent as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFrames(os.Stdout, strings.Join(args, " "), pulses)
		},
	}

	cmd.Flags().BoolVar(&pulses, "pulses", false, "Also print the RC-Switch pulse train of each frame")

	return cmd
}

func printFrames(w io.Writer, msg string, pulses bool) error {
	codes, err := proto.SplitMessage([]byte(msg))
	if err != nil {
		return err
	}

	for _, c := range codes {
		b := c.Bytes()
		fmt.Fprintf(w, "%s  %-5s  % X\n", c, c.Kind(), b[:])
		if pulses {
			fmt.Fprintf(w, "    %s\n", formatPulses(ook.Pulses(uint32(c), proto.FrameBits)))
		}
	}

	fmt.Fprintf(w, "%d frames, about %v on air\n", len(codes), airtime(len(codes)))
	return nil
}

// airtime estimates how long the transmitter is busy with a message of n
// frames, including the settle and inter-frame delays.
func airtime(n int) time.Duration {
	perFrame := time.Duration(ook.TransmissionMicros(proto.FrameBits)) * time.Microsecond * proto.RepeatTransmit
	d := time.Duration(n) * perFrame
	if n > 1 {
		d += proto.SettleDelay + time.Duration(n-2)*proto.InterFrameDelay
	}
	return d.Round(time.Millisecond)
}

func formatPulses(ps []ook.Pulse) string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p.High {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
		fmt.Fprintf(&b, "%d", p.Micros)
	}
	return b.String()
}
