package main

import (
	"fmt"
	"os"

	"github.com/ystepanoff/ookcomm/logger"
)

// terminalTone stands in for the buzzer and logs frequency changes at debug
// level.
type terminalTone struct{}

func (terminalTone) SetTone(hz uint32) {
	logger.Debug("[Tone] %d Hz\r\n", hz)
}

func (terminalTone) StopTone() {
	logger.Debug("[Tone] off\r\n")
}

// terminalLED prints the alert LED state when it changes.
type terminalLED struct {
	name string
	on   bool
}

func (l *terminalLED) SetLED(on bool) {
	if on == l.on {
		return
	}
	l.on = on
	name := l.name
	if name == "" {
		name = "LED"
	}
	if on {
		logger.Debug("[%s] on\r\n", name)
	} else {
		logger.Debug("[%s] off\r\n", name)
	}
}

// bell rings the terminal bell once per completed message.
func bell() {
	fmt.Fprint(os.Stderr, "\a")
}
