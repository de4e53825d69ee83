package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"

	defaultPollTimeout = 10 * time.Second
)

// AllowedUpdates lists the update kinds the bot subscribes to; everything else is filtered
// out by Telegram.
var AllowedUpdates = []string{"message", "callback_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// IsWebhook reports whether the options select webhook delivery.
func (o PollerOptions) IsWebhook() bool {
	return strings.EqualFold(strings.TrimSpace(o.RunMode), RunModeWebhook)
}

// PollTimeout is the long-poll timeout, defaulting to ten seconds.
func (o PollerOptions) PollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds <= 0 {
		return defaultPollTimeout
	}
	return time.Duration(o.LongPollTimeoutSeconds) * time.Second
}

// BuildPoller returns a webhook or long poller restricted to AllowedUpdates.
func BuildPoller(opts PollerOptions) tele.Poller {
	if opts.IsWebhook() {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
			AllowedUpdates: AllowedUpdates,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: opts.PollTimeout(), AllowedUpdates: AllowedUpdates}
}
