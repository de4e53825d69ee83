package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/coursebot/core/config"
)

// defaultDebugSample lets one in fifty sampled debug events through.
var defaultDebugSample = [2]int{1, 50}

// options is the logging setup derived from configuration.
type options struct {
	level    slog.Level
	format   logFormat
	keyOrder []string
	sample   [2]int
	profile  string
	file     string // empty: stdout only
	trace    bool
}

func optionsFrom(cfg *coreconfig.Config) options {
	o := options{
		level:    slog.LevelInfo,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
		sample:   defaultDebugSample,
		profile:  "prod",
		trace:    isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	o.level = parseLevel(lc.Level)
	o.format = parseFormat(lc.Format, o.profile)
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		o.keyOrder = order
	}
	if strings.TrimSpace(lc.DebugSample) != "" {
		num, den := parseRatioSpec(lc.DebugSample)
		o.sample = [2]int{num, den}
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		o.file = filepath.Join(dir, name)
	}
	return o
}

func parseLevel(s string) slog.Level {
	switch normalizeLevel(s) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelFatal:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// parseFormat picks kv for explicit text formats and for debug or dev profiles, json otherwise.
func parseFormat(s, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if profile == "debug" || profile == "dev" {
		return formatKV
	}
	return formatJSON
}

// outputs returns stdout plus the optional log file.
func (o options) outputs() ([]io.Writer, []io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	if o.file == "" {
		return writers, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(o.file), 0o755); err != nil {
		return writers, nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return writers, nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return append(writers, f), []io.Closer{f}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
