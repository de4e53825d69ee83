package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/coursebot/internal/catalog"
)

func file(name string) catalog.FileEntry {
	return catalog.FileEntry{Name: name, DownloadLink: "https://example.com/" + name}
}

func TestSearchCapsAtTenInTraversalOrder(t *testing.T) {
	b := catalog.NewBuilder()
	for i := 0; i < 15; i++ {
		year := fmt.Sprint(i/6 + 1)
		sem := fmt.Sprint(i%2 + 1)
		b.Course(year, sem, fmt.Sprintf("Logic %02d", i))
	}
	cat := b.Build()

	got := Search(cat, "logic", MaxResults)
	require.Len(t, got, 10)

	want := cat.Courses()[:10]
	for i, m := range got {
		assert.Equal(t, CourseMatch, m.Kind)
		assert.Same(t, want[i], m.Course)
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	cat := catalog.NewBuilder().
		Add("1", "1", "Calculus II", catalog.Slides, file("intro.pdf")).
		Add("1", "2", "Physics", catalog.Books, file("calc-notes.pdf")).
		Add("1", "2", "Chemistry", catalog.Books, file("organic.pdf")).
		Build()

	got := Search(cat, "  CAL ", 0)
	require.Len(t, got, 2)
	assert.Equal(t, CourseMatch, got[0].Kind)
	assert.Equal(t, "Calculus II", got[0].Course.Name)
	assert.Equal(t, FileMatch, got[1].Kind)
	assert.Equal(t, "calc-notes.pdf", got[1].File.Name)
	assert.Equal(t, catalog.Books, got[1].Category)
	assert.Equal(t, "Physics", got[1].Course.Name)
}

func TestSearchInterleavesCourseAndFiles(t *testing.T) {
	cat := catalog.NewBuilder().
		Add("1", "1", "Signals", catalog.Videos, file("signals-v.mp4")).
		Add("1", "1", "Signals", catalog.Books, file("signals-b.pdf")).
		Add("1", "1", "Signals", catalog.Past, file("signals-p.pdf")).
		Add("1", "1", "Signals", catalog.Slides, file("signals-s.pdf")).
		Add("1", "1", "Other", catalog.Slides, file("signals-other.pdf")).
		Build()

	var names []string
	for _, m := range Search(cat, "signals", 0) {
		if m.Kind == CourseMatch {
			names = append(names, "course:"+m.Course.Name)
			continue
		}
		names = append(names, m.File.Name)
	}
	assert.Equal(t, []string{
		"course:Signals",
		"signals-s.pdf",
		"signals-p.pdf",
		"signals-b.pdf",
		"signals-v.mp4",
		"signals-other.pdf",
	}, names)
}

func TestSearchNoMatches(t *testing.T) {
	cat := catalog.NewBuilder().Add("1", "1", "Signals", catalog.Slides, file("a.pdf")).Build()
	assert.Empty(t, Search(cat, "zzz", 0))
	assert.Empty(t, Search(cat, "   ", 0))
	assert.Empty(t, Search(nil, "sig", 0))
}

func TestMatchLabel(t *testing.T) {
	long := strings.Repeat("x", 45)
	m := Match{Kind: FileMatch, File: file(long)}
	assert.Equal(t, "📄 "+strings.Repeat("x", 40)+"...", m.Label())

	c := catalog.NewBuilder().Add("1", "1", "Signals", catalog.Slides).Build()
	course, _ := c.Course("1", "1", "Signals")
	assert.Equal(t, "📘 Signals", Match{Kind: CourseMatch, Course: course}.Label())
}

func TestTooShort(t *testing.T) {
	assert.True(t, TooShort("hi"))
	assert.True(t, TooShort("  ab  "))
	assert.False(t, TooShort("abc"))
	assert.False(t, TooShort("日本語"))
}
