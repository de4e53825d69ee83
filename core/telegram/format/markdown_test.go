package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Signals \& Systems`, EscapeMarkdown(`Signals \& Systems`))
	assert.Equal(t, `EE\_101 \*core\*`, EscapeMarkdown(`EE_101 *core*`))
	assert.Equal(t, "\\`code\\` \\[x]", EscapeMarkdown("`code` [x]"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10, ".."))
	assert.Equal(t, "abc..", Truncate("abcdef", 3, ".."))
	assert.Equal(t, "ééé...", Truncate("éééééé", 3, "..."))
	assert.Equal(t, "", Truncate("abc", 0, ".."))
}
