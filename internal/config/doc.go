// Package config provides loading and environment overlay for the bridge
// configuration. It exposes a Default() baseline, a JSON/TOML file loader and
// a BRIDGE_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/tinyssb/bridge.toml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{DataDir: cfg.DataDir, Config: cfg})
//	defer rt.Close()
package config
