// Package search finds courses and files whose names contain a query.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/coursebot/core/telegram/format"
	"github.com/m3rciful/coursebot/internal/catalog"
)

const (
	// MaxResults caps a result list; there is no paging.
	MaxResults = 10
	// MinQueryLength is the shortest query, in characters, that is searched at all.
	MinQueryLength = 3
	// FileLabelLimit is how many characters of a file name a result button shows.
	FileLabelLimit = 40
)

// Kind tells course matches from file matches.
type Kind int

const (
	CourseMatch Kind = iota
	FileMatch
)

// Match is one search hit. File and Category are set for file matches only.
type Match struct {
	Kind     Kind
	Course   *catalog.Course
	Category catalog.Category
	File     catalog.FileEntry
}

// Label is the button text for the match.
func (m Match) Label() string {
	if m.Kind == FileMatch {
		return "📄 " + format.Truncate(m.File.Name, FileLabelLimit, "...")
	}
	return "📘 " + m.Course.Name
}

// Normalize folds a query the way Search compares it.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// TooShort reports whether query is below MinQueryLength after trimming.
func TooShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength
}

// Search walks cat in traversal order and returns up to limit matches. A course is visited
// before its files, and files are visited in catalog.SearchOrder. limit <= 0 means MaxResults.
func Search(cat *catalog.Catalog, query string, limit int) []Match {
	q := Normalize(query)
	if q == "" || cat == nil {
		return nil
	}
	if limit <= 0 {
		limit = MaxResults
	}

	var out []Match
	for _, course := range cat.Courses() {
		if strings.Contains(strings.ToLower(course.Name), q) {
			out = append(out, Match{Kind: CourseMatch, Course: course})
			if len(out) == limit {
				return out
			}
		}
		for _, c := range catalog.SearchOrder {
			for _, f := range course.Files(c) {
				if !strings.Contains(strings.ToLower(f.Name), q) {
					continue
				}
				out = append(out, Match{Kind: FileMatch, Course: course, Category: c, File: f})
				if len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}
