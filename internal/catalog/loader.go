package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/coursebot/core/logger"
)

// Format selects the catalog document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatFor picks the document format from a file extension; anything but .yaml/.yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and validates the catalog document at path.
func Load(path string) (*Catalog, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	st := cat.Stats()
	logger.Catalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("path", path),
		slog.Int("years", st.Years),
		slog.Int("courses", st.Courses),
		slog.Int("files", st.Files),
		slog.Duration("duration", logger.Took(start)),
	)
	return cat, nil
}

// Parse decodes a catalog document. Key order in the document is display order.
func Parse(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc ordered[ordered[ordered[courseDoc]]]
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if len(doc.keys) == 0 {
		return nil, fmt.Errorf("%w: no years", ErrInvalidDocument)
	}

	b := NewBuilder()
	var problems []error
	for _, year := range doc.keys {
		sems := doc.vals[year]
		if strings.TrimSpace(year) == "" {
			problems = append(problems, errors.New("empty year id"))
			continue
		}
		for _, sem := range sems.keys {
			courses := sems.vals[sem]
			for _, name := range courses.keys {
				where := fmt.Sprintf("year %s / semester %s / %s", year, sem, name)
				if strings.TrimSpace(name) == "" {
					problems = append(problems, fmt.Errorf("year %s / semester %s: empty course name", year, sem))
					continue
				}
				b.Course(year, sem, name)
				for key, files := range courses.vals[name] {
					cat, ok := ParseCategory(key)
					if !ok {
						logger.Catalog.Warn("unknown category skipped",
							slog.String("event", "catalog.category_unknown"),
							slog.String("course", name),
							slog.String("file_type", key),
						)
						continue
					}
					for i, f := range files {
						if err := validate.Struct(f); err != nil {
							problems = append(problems, fmt.Errorf("%s / %s[%d]: %w", where, key, i, err))
							continue
						}
					}
					b.Add(year, sem, name, cat, files...)
				}
			}
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(problems...))
	}
	return b.Build(), nil
}

// courseDoc maps category names to files; category order is fixed, not taken from the document.
type courseDoc map[string][]FileEntry

// ordered is a JSON/YAML object that remembers key order.
type ordered[V any] struct {
	keys []string
	vals map[string]V
}

func (o *ordered[V]) set(key string, v V) {
	if o.vals == nil {
		o.vals = make(map[string]V)
	}
	if _, dup := o.vals[key]; !dup {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *ordered[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		o.set(key, v)
	}
	_, err = dec.Token()
	return err
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *ordered[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		o.set(key, v)
	}
	return nil
}

// Builder assembles a Catalog in insertion order.
type Builder struct {
	cat *Catalog
}

// NewBuilder starts an empty catalog.
func NewBuilder() *Builder {
	return &Builder{cat: &Catalog{byID: make(map[string]*Year)}}
}

// Course ensures the course exists at year/sem and returns it.
func (b *Builder) Course(year, sem, name string) *Course {
	y, ok := b.cat.byID[year]
	if !ok {
		y = &Year{ID: year, byID: make(map[string]*Semester)}
		b.cat.byID[year] = y
		b.cat.Years = append(b.cat.Years, y)
	}
	s, ok := y.byID[sem]
	if !ok {
		s = &Semester{ID: sem, byName: make(map[string]*Course)}
		y.byID[sem] = s
		y.Semesters = append(y.Semesters, s)
	}
	c, ok := s.byName[name]
	if !ok {
		c = &Course{Name: name, Year: year, Semester: sem, files: make(map[Category][]FileEntry)}
		s.byName[name] = c
		s.Courses = append(s.Courses, c)
	}
	return c
}

// Add appends files to a course category, creating the course if needed.
func (b *Builder) Add(year, sem, name string, cat Category, files ...FileEntry) *Builder {
	c := b.Course(year, sem, name)
	if len(files) > 0 {
		c.files[cat] = append(c.files[cat], files...)
	}
	return b
}

// Build returns the assembled catalog. The builder must not be used afterwards.
func (b *Builder) Build() *Catalog {
	cat := b.cat
	b.cat = nil
	return cat
}
