// Package keepalive serves a trivial liveness endpoint and pings it periodically, so that
// hosts which suspend idle web services keep the bot running.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/coursebot/core/logger"
)

// AliveText is the body of GET /.
const AliveText = "I am alive!"

// DefaultInterval is the self-ping period.
const DefaultInterval = 14 * time.Minute

// Options configures Run.
type Options struct {
	Port     int
	URL      string
	Interval time.Duration
	Gatherer prometheus.Gatherer
	Client   *http.Client
}

// Router builds the liveness routes: "/", "/healthz" and, with a gatherer, "/metrics".
func Router(g prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, AliveText)
	})
	r.HEAD("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if g != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}
	return r
}

// Run serves the liveness endpoint until ctx is done and, when opts.URL is set, pings it
// every opts.Interval.
func Run(ctx context.Context, opts Options) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(opts.Port)),
		Handler:           Router(opts.Gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.KeepAlive.Info("liveness server listening",
			slog.String("event", "keepalive.listen"),
			slog.Int("port", opts.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("keepalive server: %w", err)
		}
		close(errCh)
	}()

	if opts.URL == "" {
		logger.KeepAlive.Info("self-ping disabled",
			slog.String("event", "keepalive.ping"),
			slog.String("reason", "no_url"),
		)
	} else {
		go Pinger(ctx, opts.Client, opts.URL, opts.Interval)
	}

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("keepalive shutdown: %w", err)
	}
	return nil
}

// Pinger requests url every interval until ctx is done. Failures are logged and ignored.
func Pinger(ctx context.Context, client *http.Client, url string, interval time.Duration) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := Ping(ctx, client, url)
			if err != nil {
				logger.KeepAlive.Warn("self-ping failed",
					slog.String("event", "keepalive.ping"),
					slog.String("err", err.Error()),
				)
				continue
			}
			logger.KeepAlive.Debug("self-ping",
				slog.String("event", "keepalive.ping"),
				slog.Int("status", status),
			)
		}
	}
}

// Ping performs one GET of url and returns the status code.
func Ping(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
