package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays BRIDGE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BRIDGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BRIDGE_PLUGINS_DIR"); v != "" {
		cfg.PluginsDir = v
	}
	if v := os.Getenv("BRIDGE_HTTP"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BRIDGE_GRPC"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("BRIDGE_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("BRIDGE_OUTBOX_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Outbox.MaxBytes = n
		}
	}
	if v := os.Getenv("BRIDGE_OUTBOX_TRIM_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Outbox.TrimIntervalSec = n
		}
	}
	if v := os.Getenv("BRIDGE_FEEDS_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Feeds.ChunkSize = n
		}
	}
	if v := os.Getenv("BRIDGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BRIDGE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	// BRIDGE_SETTINGS=k1=v1,k2=v2 seeds default settings.
	if v := os.Getenv("BRIDGE_SETTINGS"); v != "" {
		if cfg.Settings == nil {
			cfg.Settings = map[string]string{}
		}
		for _, kv := range strings.Split(v, ",") {
			k, val, ok := strings.Cut(strings.TrimSpace(kv), "=")
			if ok && k != "" {
				cfg.Settings[k] = val
			}
		}
	}
}
