package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}

	assert.False(t, ShouldRetry(nil))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}))
	assert.True(t, ShouldRetry(&tele.Error{Code: 502}))
	assert.False(t, ShouldRetry(&tele.Error{Code: 400, Description: "Bad Request: file is too big"}))
	assert.False(t, ShouldRetry(context.Canceled))
	assert.False(t, ShouldRetry(errors.New("plain")))
}
