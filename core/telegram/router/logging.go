package router

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/coursebot/core/logger"
	tghelpers "github.com/m3rciful/coursebot/core/telegram/helpers"
	"github.com/m3rciful/coursebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn as the named handler and logs one handler.handled line for it.
func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn func() error, extras ...slog.Attr) error {
	ctx := tghelpers.WithHandler(c, handlerName)
	err := fn()
	logSummary(ctx, c, handlerName, start, statusOf(err), err, extras...)
	return err
}

// logSkipped records an update no handler took.
func logSkipped(c tele.Context, handlerName string, start time.Time) {
	logSummary(tghelpers.WithHandler(c, handlerName), c, handlerName, start, "skip", nil)
}

func logSummary(ctx context.Context, c tele.Context, handlerName string, start time.Time, status string, err error, extras ...slog.Attr) {
	msgs, kb := middleware.GetCounters(c)
	outcome := status
	if status == "skip" {
		outcome = "ok"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", append(attrs, extras...)...)
}

// statusOf maps a handler error to the status and outcome vocabulary.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "fail"
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

var (
	errorCodesMu sync.RWMutex
	errorCodes   []errorCode
)

type errorCode struct {
	target error
	code   string
}

// RegisterErrorCode makes handler summaries report code for errors matching target.
func RegisterErrorCode(target error, code string) {
	errorCodesMu.Lock()
	defer errorCodesMu.Unlock()
	errorCodes = append(errorCodes, errorCode{target: target, code: code})
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errorCodesMu.RLock()
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			errorCodesMu.RUnlock()
			return ec.code
		}
	}
	errorCodesMu.RUnlock()
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		code := strings.TrimSpace(c.Code())
		if code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
	}
	return "UNKNOWN_ERROR"
}
