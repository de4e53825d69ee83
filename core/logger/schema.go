package logger

import "strings"

// Level names as they appear in the level field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

// vocabulary maps accepted spellings of an enumerated field to its canonical value.
type vocabulary map[string]string

func words(canonical ...string) vocabulary {
	v := make(vocabulary, len(canonical))
	for _, w := range canonical {
		v[w] = w
	}
	return v
}

func (v vocabulary) lookup(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	c, ok := v[s]
	if !ok {
		return s, false
	}
	return c, true
}

var (
	levels = vocabulary{
		"debug": LevelDebug, "info": LevelInfo,
		"warn": LevelWarn, "warning": LevelWarn,
		"error": LevelError, "fatal": LevelFatal,
	}
	statuses = words("ok", "fail", "skip", "retry", "rate_limited", "cancelled")
	outcomes = words("ok", "fail", "cancelled", "rate_limited")
)

func normalizeLevel(level string) string {
	if strings.TrimSpace(level) == "" {
		return LevelInfo
	}
	if c, ok := levels.lookup(level); ok {
		return c
	}
	return strings.ToUpper(strings.TrimSpace(level))
}

// sanitizeEnumerations canonicalizes level and status. Unknown statuses are kept lowercased,
// unknown outcomes are dropped.
func sanitizeEnumerations(fields map[string]any) {
	if level, ok := stringField(fields, "level"); ok {
		fields["level"] = normalizeLevel(level)
	}
	if s, ok := stringField(fields, "status"); ok && s != "" {
		fields["status"], _ = statuses.lookup(s)
	}
	if o, ok := stringField(fields, "outcome"); ok && o != "" {
		if c, known := outcomes.lookup(o); known {
			fields["outcome"] = c
		} else {
			delete(fields, "outcome")
		}
	}
}

// defaultKeyOrder puts correlation fields first, then navigation, then transport details.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "update_id", "user_id", "chat_id", "chat_type", "handler", "cb_key",
	"action", "state", "year", "sem", "course", "file_type", "file_index", "query", "results",
	"outcome", "duration_ms", "messages", "kb", "count", "payload", "username",
	"mode", "listen", "public_url", "backend", "path", "http_code", "db", "host", "port",
	"err", "err_code", "cause", "attempts", "elapsed_ms",
}
