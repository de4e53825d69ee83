// Package catalog holds the immutable Year -> Semester -> Course -> Category -> File tree
// that the bot lets students browse.
package catalog

import (
	"errors"
)

var (
	// ErrInvalidDocument reports a catalog document that cannot be served.
	ErrInvalidDocument = errors.New("catalog: invalid document")
	// ErrCourseNotFound reports a course name that no Year/Semester contains.
	ErrCourseNotFound = errors.New("catalog: course not found")
)

// Category names one resource bucket of a course.
type Category string

const (
	Slides Category = "slides"
	Books  Category = "books"
	Past   Category = "past"
	Videos Category = "videos"
)

// MenuOrder is the order category buttons appear in a course menu.
var MenuOrder = []Category{Slides, Books, Past, Videos}

// SearchOrder is the order a course's files are visited by search.
var SearchOrder = []Category{Slides, Past, Books, Videos}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case Slides, Books, Past, Videos:
		return c, true
	}
	return "", false
}

// Title is the human label of the category.
func (c Category) Title() string {
	switch c {
	case Slides:
		return "Slides"
	case Books:
		return "Reference Books"
	case Past:
		return "Past Questions"
	case Videos:
		return "Videos"
	}
	return "Files"
}

// Label is the course menu button text of the category.
func (c Category) Label() string {
	switch c {
	case Slides:
		return "📄 Slides"
	case Books:
		return "📚 Reference Books"
	case Past:
		return "📝 Past Questions"
	case Videos:
		return "🎥 Videos"
	}
	return "📁 " + c.Title()
}

// FileEntry is one downloadable resource.
type FileEntry struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	DownloadLink string `json:"download_link" yaml:"download_link" validate:"required,url"`
}

// Course is a named set of resource categories located in one Year/Semester.
type Course struct {
	Name     string
	Year     string
	Semester string
	files    map[Category][]FileEntry
}

// Files returns the ordered files of a category; the index is the download selector.
func (c *Course) Files(cat Category) []FileEntry {
	return c.files[cat]
}

// Categories lists the non-empty categories of the course in menu order.
func (c *Course) Categories() []Category {
	var out []Category
	for _, cat := range MenuOrder {
		if len(c.files[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Semester groups the courses of one half-year.
type Semester struct {
	ID      string
	Courses []*Course
	byName  map[string]*Course
}

// Course looks up a course by name within the semester.
func (s *Semester) Course(name string) (*Course, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Year groups semesters.
type Year struct {
	ID        string
	Semesters []*Semester
	byID      map[string]*Semester
}

// Semester looks up a semester of the year.
func (y *Year) Semester(id string) (*Semester, bool) {
	s, ok := y.byID[id]
	return s, ok
}

// Catalog is the loaded resource tree. It is never mutated after loading and is safe to share.
type Catalog struct {
	Years []*Year
	byID  map[string]*Year
}

// Year looks up a year by id.
func (c *Catalog) Year(id string) (*Year, bool) {
	y, ok := c.byID[id]
	return y, ok
}

// Semester looks up a semester by year and semester id.
func (c *Catalog) Semester(year, sem string) (*Semester, bool) {
	y, ok := c.Year(year)
	if !ok {
		return nil, false
	}
	return y.Semester(sem)
}

// Course looks up a course at an exact location.
func (c *Catalog) Course(year, sem, name string) (*Course, bool) {
	s, ok := c.Semester(year, sem)
	if !ok {
		return nil, false
	}
	return s.Course(name)
}

// FindCourse scans the catalog in document order and returns the first course called name.
// Course names are only unique within a semester; the first match wins.
func (c *Catalog) FindCourse(name string) (*Course, error) {
	for _, course := range c.Courses() {
		if course.Name == name {
			return course, nil
		}
	}
	return nil, ErrCourseNotFound
}

// Resolve finds a course at year/sem, falling back to FindCourse when the location
// is unknown or does not contain it.
func (c *Catalog) Resolve(year, sem, name string) (*Course, error) {
	if year != "" && sem != "" {
		if course, ok := c.Course(year, sem, name); ok {
			return course, nil
		}
	}
	return c.FindCourse(name)
}

// Courses lists every course in traversal order: year, then semester, then course.
func (c *Catalog) Courses() []*Course {
	var out []*Course
	for _, y := range c.Years {
		for _, s := range y.Semesters {
			out = append(out, s.Courses...)
		}
	}
	return out
}

// Stats summarizes catalog size.
type Stats struct {
	Years     int
	Semesters int
	Courses   int
	Files     int
}

// Stats counts the catalog contents.
func (c *Catalog) Stats() Stats {
	st := Stats{Years: len(c.Years)}
	for _, y := range c.Years {
		st.Semesters += len(y.Semesters)
		for _, s := range y.Semesters {
			st.Courses += len(s.Courses)
			for _, course := range s.Courses {
				for _, files := range course.files {
					st.Files += len(files)
				}
			}
		}
	}
	return st
}
