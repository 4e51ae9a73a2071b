package log

import (
	"context"
	"encoding/base64"
	"log/slog"
	"runtime"
	"strconv"
)

const redacted = "[REDACTED]"

// recordHandler adapts slog records to Entry values and hands them to the
// formatter and outputs of a BaseLogger. Attributes under a group are
// flattened to "group.key". Byte slices are rendered as base64 so feed ids
// and secrets print the same way in text and JSON.
type recordHandler struct {
	logger *BaseLogger
	prefix string
	base   []slog.Attr
	hidden map[string]bool
}

func newRecordHandler(logger *BaseLogger, redact []string) *recordHandler {
	h := &recordHandler{logger: logger}
	if len(redact) > 0 {
		h.hidden = make(map[string]bool, len(redact))
		for _, k := range redact {
			h.hidden[k] = true
		}
	}
	return h
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.logger.level.v
}

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(Fields, len(h.base)+r.NumAttrs())
	for _, a := range h.base {
		h.collect(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(fields, h.prefix, a)
		return true
	})

	entry := &Entry{
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
		Fields:    fields,
		Timestamp: r.Time,
		Caller:    callerOf(r.PC),
	}
	if e, ok := fields["error"].(error); ok {
		entry.Error = e
	}
	b, err := h.logger.formatter.Format(entry)
	if err != nil {
		return err
	}
	for _, out := range h.logger.outputs {
		_ = out.Write(entry, b)
	}
	return nil
}

func (h *recordHandler) collect(fields Fields, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.collect(fields, p, ga)
		}
		return
	}
	key := prefix + a.Key
	switch v := a.Value.Any().(type) {
	case []byte:
		fields[key] = base64.StdEncoding.EncodeToString(v)
	default:
		fields[key] = v
	}
	if h.hidden[a.Key] || h.hidden[key] {
		fields[key] = redacted
	}
}

// WithAttrs resolves the current group prefix into the stored attributes.
func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.base = append([]slog.Attr{}, h.base...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		nh.base = append(nh.base, a)
	}
	return &nh
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func callerOf(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return ""
	}
	return f.File + ":" + strconv.Itoa(f.Line)
}

func levelToSlog(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel, FatalLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return DebugLevel
	case level < slog.LevelWarn:
		return InfoLevel
	case level < slog.LevelError:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

func toAttrs(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// pairsToAttrs turns printf-style trailing args into attributes: string keys
// pair with the following value, anything else is kept positionally.
func pairsToAttrs(args []any) []slog.Attr {
	var attrs []slog.Attr
	for i := 0; i < len(args); i++ {
		if key, ok := args[i].(string); ok && i+1 < len(args) {
			attrs = append(attrs, slog.Any(key, args[i+1]))
			i++
			continue
		}
		attrs = append(attrs, slog.Any("arg"+strconv.Itoa(i), args[i]))
	}
	return attrs
}

func attrArgs(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}
