package log

import (
	"fmt"
	stdlog "log"
	"strings"
)

// Config declares a logger. Zero values mean info/text/console.
type Config struct {
	Level  string   `json:"level" toml:"level"`
	Format string   `json:"format" toml:"format"`
	Output string   `json:"output" toml:"output"`
	Redact []string `json:"redact,omitempty" toml:"redact"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := []LoggerOption{WithLevel(lvl)}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts = append(opts, WithFormatter(&TextFormatter{}))
	case "json":
		opts = append(opts, WithFormatter(&JSONFormatter{}))
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	switch strings.ToLower(cfg.Output) {
	case "", "console", "stderr":
		opts = append(opts, WithOutput(NewConsoleOutput()))
	case "null", "none":
		opts = append(opts, WithOutput(&NullOutput{}))
	default:
		return nil, fmt.Errorf("log: unknown output %q", cfg.Output)
	}
	if len(cfg.Redact) > 0 {
		opts = append(opts, WithRedactedKeys(cfg.Redact...))
	}
	return NewLogger(opts...), nil
}

// RedirectStdLog sends the standard library logger's output to l at info level.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdWriter{l: l.With(Component("stdlog"))})
}

type stdWriter struct{ l Logger }

func (w stdWriter) Write(p []byte) (int, error) {
	w.l.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
