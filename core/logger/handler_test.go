package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func renderLine(t *testing.T, format logFormat, component string, emit func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler).With("component", component))
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithMeta(context.Background(), Meta{RID: "rid-123", UpdateID: 42, UserID: 7, ChatID: 9})

	line := renderLine(t, formatKV, "nav", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "course.render",
			slog.String("status", "ok"),
			slog.String("course", "Signals"),
		)
	})
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=nav", "event=course.render", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithMeta(context.Background(), Meta{RID: "rid-json", UpdateID: 11, UserID: 22, ChatID: 33})

	line := renderLine(t, formatJSON, "favorites", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelError, "favorites.save",
			slog.String("status", "fail"),
			slog.String("err", "disk full"),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"favorites"`, `"event":"favorites.save"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithMeta(context.Background(), Meta{RID: rawRID})

	kv := renderLine(t, formatKV, "app", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	})
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := renderLine(t, formatJSON, "app", func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	})
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", js)
	}
}

func TestStructuredHandlerDurationsAndGroups(t *testing.T) {
	line := renderLine(t, formatKV, "delivery", func(log *slog.Logger) {
		log.WithGroup("file").LogAttrs(context.Background(), slog.LevelInfo, "document.sent",
			slog.Duration("duration", 1500*time.Microsecond),
			slog.String("name", "notes.pdf"),
		)
	})
	if !strings.Contains(line, "file.duration_ms=2") {
		t.Fatalf("expected grouped duration in ms, got %s", line)
	}
	if !strings.Contains(line, "file.name=notes.pdf") {
		t.Fatalf("expected grouped name, got %s", line)
	}
	if !strings.Contains(line, "component=delivery") {
		t.Fatalf("attrs bound before the group must keep their key, got %s", line)
	}
	if !strings.Contains(line, "event=document.sent") {
		t.Fatalf("expected message to become event, got %s", line)
	}
}

func TestStructuredHandlerDropsUnknownOutcome(t *testing.T) {
	line := renderLine(t, formatKV, "tg", func(log *slog.Logger) {
		LogEvent(context.Background(), log, slog.LevelInfo, "handler.handled",
			slog.String("outcome", "weird"),
			slog.String("status", "OK"),
		)
	})
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped, got %s", line)
	}
	if !strings.Contains(line, "status=ok") {
		t.Fatalf("status should be lower-cased, got %s", line)
	}
}
