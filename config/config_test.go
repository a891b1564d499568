package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Receiver.TimeoutMs != 10000 || cfg.Receiver.DedupWindowMs != 200 {
		t.Errorf("defaults = %+v", cfg.Receiver)
	}
	if !cfg.Receiver.Sound() {
		t.Error("default sound disabled")
	}
	if len(cfg.UIDs()) != 2 {
		t.Errorf("default credentials = %v", cfg.Credentials)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ookcomm.yaml")
	writeFile(t, path, `
log_level: debug
receiver:
  strict_sequence: true
  sound_enabled: false
  timeout_ms: 5000
sender:
  message: "Fire drill"
credentials:
  - "DE AD BE EF"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Sender.Message != "Fire drill" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Receiver.Sound() {
		t.Error("explicit sound_enabled: false overridden")
	}
	if cfg.Sender.MessageLimit != 50 || cfg.Sender.Repeat != 3 || cfg.Receiver.Listen == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	opts := cfg.Receiver.Options()
	if !opts.StrictSequence || opts.Timeout != 5000 || opts.DedupWindow != 200 {
		t.Errorf("Options() = %+v", opts)
	}
	if uids := cfg.UIDs(); len(uids) != 1 || uids[0] != (credential.UID{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("UIDs() = %v", uids)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      "receiver: [",
		"credentials": "credentials: [\"C0 A9\"]",
		"limit":       "sender:\n  message_limit: 300\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ookcomm.yaml")
			writeFile(t, path, content)
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted an invalid file")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ookcomm.yaml")
	cfg := DefaultConfig()
	cfg.Sender.Message = "Saved"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Sender.Message != "Saved" {
		t.Errorf("Sender.Message = %q, want %q", got.Sender.Message, "Saved")
	}
}

func TestWatchCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ookcomm.yaml")
	writeFile(t, path, "credentials: [\"C0 A9 72 A3\"]\n")

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stdout)

	store := credential.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- WatchCredentials(ctx, path, store) }()

	want := credential.UID{0x0B, 0xE6, 0x8C, 0x33}
	deadline := time.Now().Add(3 * time.Second)
	for !store.Allowed(want) {
		if time.Now().After(deadline) {
			t.Fatal("credential store not reloaded")
		}
		// Rewrite until the watcher, which starts asynchronously, sees it.
		writeFile(t, path, "credentials: [\"0B E6 8C 33\"]\n")
		time.Sleep(250 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() did not return after cancellation")
	}

	// Console lines end in CRLF like the rest of the node output.
	out := logs.String()
	if !strings.Contains(out, "[Config] Reloaded "+path+"\r\n") ||
		!strings.Contains(out, "[Config] 1 authorised cards loaded\r\n") {
		t.Errorf("reload log = %q", out)
	}
}
