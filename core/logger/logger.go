// Package logger is the structured logging layer: one slog handler writing ordered json or
// key=value lines, per-component loggers, and update metadata carried in contexts.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/coursebot/core/buildinfo"
	coreconfig "github.com/m3rciful/coursebot/core/config"
)

var (
	initOnce sync.Once

	shutdownMu sync.Mutex
	closed     bool
	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(defaultDebugSample[0], defaultDebugSample[1])
	traceOverride bool

	// L is the base logger. It falls back to slog.Default until InitLogger runs.
	L = slog.Default()

	TG        = component("tg")
	TWire     = component("tg.wire")
	DB        = component("db")
	MIG       = component("db.migrate")
	Catalog   = component("catalog")
	Favorites = component("favorites")
	KeepAlive = component("keepalive")
)

func component(name string) *slog.Logger { return L.With("component", name) }

// InitLogger installs the structured handler as the slog default. Only the first call has an
// effect. An unusable log file is reported as a warning and logging continues on stdout.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		o := optionsFrom(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.sample[0], o.sample[1])
		traceOverride = o.trace

		outputs, closers, fileErr := o.outputs()
		logClosers = closers
		logWriter = newAsyncWriter(outputs, 64<<10)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   o.format,
			keyOrder: o.keyOrder,
		}))
		slog.SetDefault(L)
		TG, TWire, DB, MIG = component("tg"), component("tg.wire"), component("db"), component("db.migrate")
		Catalog, Favorites, KeepAlive = component("catalog"), component("favorites"), component("keepalive")

		attrs := []slog.Attr{
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("cfg_profile", o.profile),
		}
		if cfg != nil {
			attrs = append(attrs,
				slog.String("backend", cfg.Favorites.Backend),
				slog.String("mode", cfg.Telegram.RunMode),
			)
		}
		LogEvent(context.Background(), L, slog.LevelInfo, "startup", attrs...)
		if fileErr != nil {
			LogEvent(context.Background(), L, slog.LevelWarn, "log_file",
				slog.String("component", "app"),
				slog.String("path", o.file),
				slog.String("err", fileErr.Error()),
			)
		}
	})
	return nil
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LogEvent logs attrs with a leading event attribute through logg, falling back to the context logger.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return component(name)
}

// Event logs an event for the named component.
func Event(ctx context.Context, name string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(name), level, event, attrs...)
}

func Debug(ctx context.Context, name, event string, attrs ...slog.Attr) {
	Event(ctx, name, slog.LevelDebug, event, attrs...)
}

func Warn(ctx context.Context, name, event string, attrs ...slog.Attr) {
	Event(ctx, name, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, name, event string, attrs ...slog.Attr) {
	Event(ctx, name, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged. TRACE=1
// disables sampling.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
