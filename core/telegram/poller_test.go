package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpoll(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, p.Timeout)
	assert.Equal(t, AllowedUpdates, p.AllowedUpdates)

	p, ok = BuildPoller(PollerOptions{LongPollTimeoutSeconds: 30}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, p.Timeout)
}

func TestBuildPollerWebhook(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{
		RunMode: " Webhook ",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", p.Listen)
	assert.Equal(t, "https://bot.example.com/hook", p.Endpoint.PublicURL)
	assert.Equal(t, AllowedUpdates, p.AllowedUpdates)
}
