// Package delivery sends catalog files to a chat, falling back to a plain link.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/core/telegram/format"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/metrics"
)

// Outcome is how a delivery ended.
type Outcome string

const (
	// Sent means the document reached the chat.
	Sent Outcome = "sent"
	// Fallback means the document failed and the manual link was posted instead.
	Fallback Outcome = "fallback"
	// Failed means neither the document nor the link could be posted.
	Failed Outcome = "failed"
)

// Transport is the part of the chat transport delivery needs.
type Transport interface {
	// Notify posts a Markdown text message.
	Notify(text string) error
	// SendDocument asks the chat service to fetch url and post it as filename.
	SendDocument(url, filename string) error
}

// SendingText announces a delivery.
func SendingText(f catalog.FileEntry) string {
	return fmt.Sprintf("🚀 Sending *%s*...", format.EscapeMarkdown(f.Name))
}

// FallbackText offers the manual download link.
func FallbackText(f catalog.FileEntry) string {
	return fmt.Sprintf("❌ Error or file too large.\n[Click here to download manually](%s)", f.DownloadLink)
}

// Deliver announces f, sends it and posts the manual link when sending fails. It does not retry.
// The error reports the failed send for logging; users already saw the fallback.
func Deliver(ctx context.Context, t Transport, f catalog.FileEntry) (Outcome, error) {
	start := time.Now()
	log := logger.Component("delivery")

	if err := t.Notify(SendingText(f)); err != nil {
		log.Debug("announce failed",
			slog.String("event", "delivery.announce"),
			slog.String("file", f.Name),
			slog.String("err", err.Error()),
		)
	}

	outcome := Sent
	sendErr := t.SendDocument(f.DownloadLink, f.Name)
	var err error
	if sendErr != nil {
		outcome = Fallback
		err = fmt.Errorf("send document %q: %w", f.Name, sendErr)
		if nerr := t.Notify(FallbackText(f)); nerr != nil {
			outcome = Failed
			err = errors.Join(err, fmt.Errorf("send fallback link: %w", nerr))
		}
	}
	metrics.Delivery(string(outcome))

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("event", "delivery.done"),
		slog.String("file", f.Name),
		slog.String("outcome", string(outcome)),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	log.LogAttrs(ctx, level, "file delivery", attrs...)
	return outcome, err
}
