package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ystepanoff/ookcomm/monitor/ui"
)

func newMonitorCommand(opts *globalOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch a running receiver and send it console commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("url") {
				if opts.cfg.Receiver.Monitor == "" {
					return fmt.Errorf("receiver.monitor is not configured, use --url")
				}
				url = "ws://" + opts.cfg.Receiver.Monitor + "/ws"
			}
			return ui.Run(url)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Websocket URL of the receiver monitor")

	return cmd
}
