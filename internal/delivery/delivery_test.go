package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/coursebot/internal/catalog"
)

type fakeTransport struct {
	notes     []string
	docs      []string
	docErr    error
	notifyErr error
}

func (f *fakeTransport) Notify(text string) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notes = append(f.notes, text)
	return nil
}

func (f *fakeTransport) SendDocument(url, filename string) error {
	if f.docErr != nil {
		return f.docErr
	}
	f.docs = append(f.docs, filename+"@"+url)
	return nil
}

var slides = catalog.FileEntry{Name: "Intro_1.pdf", DownloadLink: "https://example.com/intro.pdf"}

func TestDeliverSends(t *testing.T) {
	tr := &fakeTransport{}
	outcome, err := Deliver(context.Background(), tr, slides)
	require.NoError(t, err)
	assert.Equal(t, Sent, outcome)
	assert.Equal(t, []string{`🚀 Sending *Intro\_1.pdf*...`}, tr.notes)
	assert.Equal(t, []string{"Intro_1.pdf@https://example.com/intro.pdf"}, tr.docs)
}

func TestDeliverFallsBackToLink(t *testing.T) {
	tr := &fakeTransport{docErr: errors.New("file too large")}
	outcome, err := Deliver(context.Background(), tr, slides)
	assert.Error(t, err)
	assert.Equal(t, Fallback, outcome)
	require.Len(t, tr.notes, 2)
	assert.Equal(t, "❌ Error or file too large.\n[Click here to download manually](https://example.com/intro.pdf)", tr.notes[1])
}

func TestDeliverFailsWhenNothingGoesThrough(t *testing.T) {
	tr := &fakeTransport{docErr: errors.New("blocked"), notifyErr: errors.New("blocked")}
	outcome, err := Deliver(context.Background(), tr, slides)
	assert.Error(t, err)
	assert.Equal(t, Failed, outcome)
}
