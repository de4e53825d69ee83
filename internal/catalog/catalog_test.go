package catalog

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Catalog {
	t.Helper()
	cat, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return cat
}

func courseNames(cs []*Course) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Year+"/"+c.Semester+"/"+c.Name)
	}
	return out
}

func TestLoadKeepsDocumentOrder(t *testing.T) {
	cat := loadFixture(t, "catalog.json")

	require.Len(t, cat.Years, 2)
	assert.Equal(t, "2", cat.Years[0].ID)
	assert.Equal(t, "1", cat.Years[1].ID)
	assert.Equal(t, "2", cat.Years[1].Semesters[0].ID)

	assert.Equal(t, []string{
		"2/1/Signals",
		"2/1/Calculus",
		"1/2/Physics",
		"1/1/Signals",
		"1/1/Empty Course",
	}, courseNames(cat.Courses()))
}

func TestCourseCategoriesUseMenuOrder(t *testing.T) {
	cat := loadFixture(t, "catalog.json")

	c, ok := cat.Course("2", "1", "Signals")
	require.True(t, ok)
	assert.Equal(t, []Category{Slides, Videos}, c.Categories())
	require.Len(t, c.Files(Slides), 2)
	assert.Equal(t, "Fourier.pdf", c.Files(Slides)[1].Name)
	assert.Empty(t, c.Files(Books))

	empty, ok := cat.Course("1", "1", "Empty Course")
	require.True(t, ok)
	assert.Empty(t, empty.Categories())
}

func TestFindCourseFirstMatchWins(t *testing.T) {
	cat := loadFixture(t, "catalog.json")

	c, err := cat.FindCourse("Signals")
	require.NoError(t, err)
	assert.Equal(t, "2", c.Year)
	assert.Equal(t, "1", c.Semester)

	_, err = cat.FindCourse("Chemistry")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestResolvePrefersExactLocation(t *testing.T) {
	cat := loadFixture(t, "catalog.json")

	c, err := cat.Resolve("1", "1", "Signals")
	require.NoError(t, err)
	assert.Equal(t, "Old Signals.pdf", c.Files(Slides)[0].Name)

	c, err = cat.Resolve("9", "9", "Physics")
	require.NoError(t, err)
	assert.Equal(t, "1", c.Year)
	assert.Equal(t, "2", c.Semester)

	_, err = cat.Resolve("", "", "Nope")
	assert.True(t, errors.Is(err, ErrCourseNotFound))
}

func TestStats(t *testing.T) {
	cat := loadFixture(t, "catalog.json")
	assert.Equal(t, Stats{Years: 2, Semesters: 3, Courses: 5, Files: 6}, cat.Stats())
}

func TestLoadYAMLSkipsUnknownCategory(t *testing.T) {
	cat := loadFixture(t, "catalog.yaml")

	assert.Equal(t, []string{"3/2/Networks", "3/2/Databases"}, courseNames(cat.Courses()))
	c, ok := cat.Course("3", "2", "Networks")
	require.True(t, ok)
	assert.Equal(t, []Category{Slides}, c.Categories())
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"1":`,
		"empty":        `{}`,
		"missing link": `{"1":{"1":{"A":{"slides":[{"name":"x"}]}}}}`,
		"bad link":     `{"1":{"1":{"A":{"slides":[{"name":"x","download_link":"not a url"}]}}}}`,
		"missing name": `{"1":{"1":{"A":{"books":[{"download_link":"https://example.com/a"}]}}}}`,
		"array root":   `[]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc), FormatJSON)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParseReportsEveryBadFile(t *testing.T) {
	doc := `{"1":{"1":{"A":{"slides":[{"name":"x"},{"name":"y"}]}}}}`
	_, err := Parse(strings.NewReader(doc), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slides[0]")
	assert.Contains(t, err.Error(), "slides[1]")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("data.yml"))
	assert.Equal(t, FormatYAML, FormatFor("DATA.YAML"))
	assert.Equal(t, FormatJSON, FormatFor("data.json"))
	assert.Equal(t, FormatJSON, FormatFor("data"))
}

func TestBuilder(t *testing.T) {
	cat := NewBuilder().
		Add("1", "1", "A", Slides, FileEntry{Name: "a", DownloadLink: "https://x/a"}).
		Add("1", "1", "A", Slides, FileEntry{Name: "b", DownloadLink: "https://x/b"}).
		Add("1", "2", "B", Books).
		Build()

	c, ok := cat.Course("1", "1", "A")
	require.True(t, ok)
	assert.Len(t, c.Files(Slides), 2)
	b, ok := cat.Course("1", "2", "B")
	require.True(t, ok)
	assert.Empty(t, b.Categories())
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Reference Books", Books.Title())
	assert.Equal(t, "Past Questions", Past.Title())
	assert.Equal(t, "Files", Category("other").Title())

	_, ok := ParseCategory("notes")
	assert.False(t, ok)
}
