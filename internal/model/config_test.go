package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loading missing config: %v", err)
	}
	if cfg.Window.StartHour != 8 || cfg.Window.EndHour != 22 {
		t.Errorf("unexpected default window: %+v", cfg.Window)
	}
	if len(cfg.Channels) != 0 {
		t.Errorf("expected no default channels, got %d", len(cfg.Channels))
	}
	if cfg.SharedDocPath == "" {
		t.Error("expected a default shared document path")
	}
}

func TestLoadConfig_ReadsChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
window:
  start_hour: 9
  end_hour: 21
channels:
  - type: telegram
    name: family
    chat_id: 4242
  - type: mail
    name: inbox
    enabled: false
    imap_host: imap.example.org
    imap_port: "993"
    smtp_host: smtp.example.org
    smtp_port: "587"
    username: kat@example.org
    use_tls: true
shared_doc_path: /tmp/shared.txt
allow_reevaluation: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Window.StartHour != 9 || cfg.Window.EndHour != 21 {
		t.Errorf("window not read: %+v", cfg.Window)
	}
	if !cfg.AllowReevaluation {
		t.Error("allow_reevaluation not read")
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(cfg.Channels))
	}

	tg := cfg.Channels[0]
	if tg.Type != "telegram" || tg.ChatID != 4242 {
		t.Errorf("telegram channel not read: %+v", tg)
	}
	if !tg.Enabled {
		t.Error("unset enabled must default to true")
	}
	if tg.PollIntervalSec != 120 {
		t.Errorf("expected default poll interval, got %d", tg.PollIntervalSec)
	}

	mail := cfg.Channels[1]
	if mail.Enabled {
		t.Error("explicit enabled: false must stick")
	}
	if mail.IMAPHost != "imap.example.org" || mail.Username != "kat@example.org" {
		t.Errorf("mail channel not read: %+v", mail)
	}
}

func TestLoadConfig_RejectsInvertedWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "window:\n  start_hour: 22\n  end_hour: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for an inverted window")
	}
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		Window:        ActiveWindow{StartHour: 7, EndHour: 23},
		SharedDocPath: "/tmp/shared.txt",
		Channels: []ChannelConfig{
			{Type: "telegram", Name: "family", Enabled: true, ChatID: 1, PollIntervalSec: 60},
		},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if got.Window != cfg.Window {
		t.Errorf("window mismatch: %+v vs %+v", got.Window, cfg.Window)
	}
	if len(got.Channels) != 1 || got.Channels[0].Name != "family" {
		t.Errorf("channels mismatch: %+v", got.Channels)
	}
}
