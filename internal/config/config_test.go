package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Fsync != "always" {
		t.Fatalf("default fsync should be always")
	}
	if cfg.Outbox.TrimIntervalSec != 60 {
		t.Fatalf("default trim interval")
	}
	if cfg.Feeds.ChunkSize != 100 {
		t.Fatalf("chunk size default")
	}
	if cfg.Settings["ble_enabled"] != "true" {
		t.Fatalf("settings default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bridge.json")
	data := []byte(`{"httpAddr":":9090","fsync":"never","outbox":{"maxBytes":1024},"feeds":{"chunkSize":48}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.Fsync != "never" {
		t.Fatalf("unexpected top-level: %+v", cfg)
	}
	if cfg.Outbox.MaxBytes != 1024 || cfg.Outbox.TrimIntervalSec != 60 {
		t.Fatalf("outbox: %+v", cfg.Outbox)
	}
	if cfg.Feeds.ChunkSize != 48 {
		t.Fatalf("expected 48")
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bridge.toml")
	data := []byte(`
grpc_addr = "127.0.0.1:6000"
plugins_dir = "/opt/plugins"

[log]
level = "debug"
format = "json"

[settings]
websocket_enabled = "true"
`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GRPCAddr != "127.0.0.1:6000" || cfg.PluginsDir != "/opt/plugins" {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log: %+v", cfg.Log)
	}
	if cfg.Settings["websocket_enabled"] != "true" {
		t.Fatalf("settings overlay")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(file, []byte(`{"httpAddr":`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("BRIDGE_DATA_DIR", "/tmp/bridge")
	t.Setenv("BRIDGE_OUTBOX_MAX_BYTES", "4096")
	t.Setenv("BRIDGE_FEEDS_CHUNK_SIZE", "0")
	t.Setenv("BRIDGE_SETTINGS", "ble_enabled=false, websocket_url=ws://x")
	FromEnv(&cfg)
	if cfg.DataDir != "/tmp/bridge" {
		t.Fatalf("env override dir")
	}
	if cfg.Outbox.MaxBytes != 4096 {
		t.Fatalf("env override max bytes")
	}
	if cfg.Feeds.ChunkSize != 100 {
		t.Fatalf("non-positive chunk size must be ignored")
	}
	if cfg.Settings["ble_enabled"] != "false" || cfg.Settings["websocket_url"] != "ws://x" {
		t.Fatalf("settings: %v", cfg.Settings)
	}
}
