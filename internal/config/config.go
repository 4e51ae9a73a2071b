package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir    string `json:"dataDir" toml:"data_dir"`
	PluginsDir string `json:"pluginsDir" toml:"plugins_dir"`
	HTTPAddr   string `json:"httpAddr" toml:"http_addr"`
	GRPCAddr   string `json:"grpcAddr" toml:"grpc_addr"`
	// Fsync is always|interval|never.
	Fsync string `json:"fsync" toml:"fsync"`

	Outbox   OutboxConfig      `json:"outbox" toml:"outbox"`
	Feeds    FeedsConfig       `json:"feeds" toml:"feeds"`
	Log      logpkg.Config     `json:"log" toml:"log"`
	Settings map[string]string `json:"settings" toml:"settings"`
}

// OutboxConfig bounds the persisted UI call queue.
type OutboxConfig struct {
	MaxBytes        int64 `json:"maxBytes" toml:"max_bytes"`
	TrimIntervalSec int   `json:"trimIntervalSec" toml:"trim_interval_sec"`
}

// FeedsConfig tunes the local feed store.
type FeedsConfig struct {
	// ChunkSize is the largest payload stored inline; the rest goes to side-chain chunks.
	ChunkSize int `json:"chunkSize" toml:"chunk_size"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		Fsync:    "always",
		Outbox: OutboxConfig{
			MaxBytes:        8 << 20,
			TrimIntervalSec: 60,
		},
		Feeds: FeedsConfig{ChunkSize: 100},
		Log:   logpkg.Config{Level: "info", Format: "text"},
		Settings: map[string]string{
			"ble_enabled":       "true",
			"websocket_enabled": "false",
			"websocket_url":     "",
			"show_shortnames":   "true",
			"hide_forgotten":    "true",
		},
	}
}

// Load reads configuration from a JSON or TOML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return cfg, nil
}
