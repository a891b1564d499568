package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Log Levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelError = 2
)

// Written by the config watcher, read by every node loop.
var currentLevel atomic.Int32
var logger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

func init() {
	currentLevel.Store(LevelInfo)
}

// SetLevel sets the global log level.
func SetLevel(level int) {
	currentLevel.Store(int32(level))
}

// Level returns the global log level.
func Level() int { return int(currentLevel.Load()) }

// ParseLevel maps "debug", "info" or "error" to a level.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all log output, e.g. to a test buffer.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Debug logs debug messages.
func Debug(format string, v ...interface{}) {
	if currentLevel.Load() <= LevelDebug {
		logger.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs info messages.
func Info(format string, v ...interface{}) {
	if currentLevel.Load() <= LevelInfo {
		logger.Printf("[INFO]  "+format, v...)
	}
}

// Error logs error messages.
func Error(format string, v ...interface{}) {
	if currentLevel.Load() <= LevelError {
		logger.Printf("[ERROR] "+format, v...)
	}
}
