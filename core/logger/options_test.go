package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/coursebot/core/config"
)

func TestOptionsDefaults(t *testing.T) {
	t.Setenv("TRACE", "")
	t.Setenv("LOG_TRACE", "")
	o := optionsFrom(nil)
	if o.level != slog.LevelInfo || o.format != formatJSON || o.profile != "prod" {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	if o.sample != defaultDebugSample || o.file != "" || o.trace {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("TRACE", "yes")
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "warning",
		Profile:     "Dev",
		KeysOrder:   "event, level ,",
		DebugSample: "off",
		Dir:         "logs",
		BotFile:     "bot.log",
	}}
	o := optionsFrom(cfg)
	if o.level != slog.LevelWarn {
		t.Errorf("level = %v", o.level)
	}
	if o.format != formatKV {
		t.Errorf("dev profile should default to kv, got %s", o.format)
	}
	if len(o.keyOrder) != 2 || o.keyOrder[0] != "event" || o.keyOrder[1] != "level" {
		t.Errorf("keyOrder = %v", o.keyOrder)
	}
	if o.sample != [2]int{0, 0} {
		t.Errorf("sample = %v", o.sample)
	}
	if o.file != filepath.Join("logs", "bot.log") {
		t.Errorf("file = %q", o.file)
	}
	if !o.trace {
		t.Error("TRACE=yes should enable trace")
	}
}

func TestOptionsExplicitFormatWins(t *testing.T) {
	o := optionsFrom(&coreconfig.Config{Logging: coreconfig.LoggingConfig{Format: "json", Profile: "debug"}})
	if o.format != formatJSON {
		t.Fatalf("format = %s", o.format)
	}
}

func TestOutputsOpensFile(t *testing.T) {
	o := options{file: filepath.Join(t.TempDir(), "nested", "bot.log")}
	writers, closers, err := o.outputs()
	if err != nil {
		t.Fatalf("outputs: %v", err)
	}
	if len(writers) != 2 || len(closers) != 1 {
		t.Fatalf("writers=%d closers=%d", len(writers), len(closers))
	}
	_ = closers[0].Close()
}
