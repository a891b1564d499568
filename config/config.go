// Package config loads the host-side node configuration from ookcomm.yaml.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ystepanoff/ookcomm/credential"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
	"github.com/ystepanoff/ookcomm/transport"
)

const DefaultPath = "ookcomm.yaml"

// Config represents the ookcomm.yaml configuration
type Config struct {
	// Log level: debug, info or error
	LogLevel string `yaml:"log_level"`

	Receiver ReceiverConfig `yaml:"receiver"`
	Sender   SenderConfig   `yaml:"sender"`

	// Authorised card UIDs, e.g. "C0 A9 72 A3"
	Credentials []string `yaml:"credentials"`
}

// ReceiverConfig contains receiver node configuration
type ReceiverConfig struct {
	// UDP address the emulated radio listens on
	Listen string `yaml:"listen"`

	// HTTP address of the websocket monitor; empty disables it
	Monitor string `yaml:"monitor"`

	// Path to the sqlite message journal; empty disables it
	Journal string `yaml:"journal"`

	// Journal entries kept after pruning
	JournalKeep int `yaml:"journal_keep"`

	DedupWindowMs  uint32 `yaml:"dedup_window_ms"`
	TimeoutMs      uint32 `yaml:"timeout_ms"`
	StrictSequence bool   `yaml:"strict_sequence"`

	// Pointer so an explicit false survives defaulting
	SoundEnabled *bool `yaml:"sound_enabled"`
}

// SenderConfig contains sender node configuration
type SenderConfig struct {
	// UDP address of the receiver's emulated radio
	Target string `yaml:"target"`

	// Message sent until replaced from the console
	Message string `yaml:"message"`

	// Console MSG: lines are truncated to this many bytes
	MessageLimit int `yaml:"message_limit"`

	// Copies of each frame put on air
	Repeat int `yaml:"repeat"`
}

// Load loads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to path
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	sound := true
	return &Config{
		LogLevel: "info",
		Receiver: ReceiverConfig{
			Listen:        "127.0.0.1:4330",
			Monitor:       "127.0.0.1:8433",
			Journal:       "ookcomm.db",
			JournalKeep:   500,
			DedupWindowMs: proto.DedupWindowMs,
			TimeoutMs:     proto.ReassemblyTimeoutMs,
			SoundEnabled:  &sound,
		},
		Sender: SenderConfig{
			Target:       "127.0.0.1:4330",
			Message:      "HELLO",
			MessageLimit: proto.DefaultMessageLimit,
			Repeat:       proto.RepeatTransmit,
		},
		Credentials: []string{"C0 A9 72 A3", "0B E6 8C 33"},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	r, dr := &cfg.Receiver, defaults.Receiver
	if r.Listen == "" {
		r.Listen = dr.Listen
	}
	if r.JournalKeep <= 0 {
		r.JournalKeep = dr.JournalKeep
	}
	if r.DedupWindowMs == 0 {
		r.DedupWindowMs = dr.DedupWindowMs
	}
	if r.TimeoutMs == 0 {
		r.TimeoutMs = dr.TimeoutMs
	}
	if r.SoundEnabled == nil {
		r.SoundEnabled = dr.SoundEnabled
	}

	s, ds := &cfg.Sender, defaults.Sender
	if s.Target == "" {
		s.Target = ds.Target
	}
	if s.Message == "" {
		s.Message = ds.Message
	}
	if s.MessageLimit <= 0 {
		s.MessageLimit = ds.MessageLimit
	}
	if s.Repeat <= 0 {
		s.Repeat = ds.Repeat
	}
}

// Validate rejects values no node could run with.
func (c *Config) Validate() error {
	if c.Sender.MessageLimit > proto.MaxMessageLength {
		return fmt.Errorf("sender.message_limit %d exceeds %d", c.Sender.MessageLimit, proto.MaxMessageLength)
	}
	if len(c.Sender.Message) > proto.MaxMessageLength {
		return fmt.Errorf("sender.message: %w", proto.ErrMessageTooLong)
	}
	if _, err := credential.ParseUIDs(c.Credentials); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	return nil
}

// Options converts the receiver section into reassembly options.
func (r ReceiverConfig) Options() transport.Options {
	return transport.Options{
		DedupWindow:    timing.Millis(r.DedupWindowMs),
		Timeout:        timing.Millis(r.TimeoutMs),
		StrictSequence: r.StrictSequence,
	}
}

// Sound reports whether the receiver starts with sound enabled.
func (r ReceiverConfig) Sound() bool {
	return r.SoundEnabled == nil || *r.SoundEnabled
}

// UIDs parses the credential list; Load has already validated it.
func (c *Config) UIDs() []credential.UID {
	uids, _ := credential.ParseUIDs(c.Credentials)
	return uids
}
