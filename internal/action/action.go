// Package action turns callback data and free text into typed navigation actions.
//
// Callback ids are colon separated: "year:1", "sem:2", "course:Signals", "type:slides",
// "down:3", "fav:list", "fav:toggle:<year>:<sem>:<course>", "search_course:<year>:<sem>:<course>",
// "home" and "ignore". Course names are always the last field and may contain colons.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/coursebot/core/telegram/keyboard"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/search"
)

// ErrUnknown is returned for callback data that maps to no action.
var ErrUnknown = errors.New("action: unknown")

// Callback routing keys.
const (
	KeyHome         = "home"
	KeyYear         = "year"
	KeySemester     = "sem"
	KeyCourse       = "course"
	KeyType         = "type"
	KeyDownload     = "down"
	KeyFavorites    = "fav"
	KeySearchCourse = "search_course"
	KeyIgnore       = "ignore"
)

// Keys lists every callback routing key.
var Keys = []string{KeyHome, KeyYear, KeySemester, KeyCourse, KeyType, KeyDownload, KeyFavorites, KeySearchCourse, KeyIgnore}

// Action is one parsed user intent. The set of implementations is closed.
type Action interface {
	// Name is a short, stable identifier used in logs and metrics.
	Name() string
	action()
}

type (
	// Home shows the year list. Fresh is set for /start and greetings, which send a new menu.
	Home struct{ Fresh bool }
	// SelectYear opens the semester menu of a year.
	SelectYear struct{ Year string }
	// SelectSemester opens the course list of the selected year.
	SelectSemester struct{ Semester string }
	// SelectCourse opens the category menu of a course.
	SelectCourse struct{ Course string }
	// SelectType opens the file list of a category of the selected course.
	SelectType struct{ Category catalog.Category }
	// Download delivers the file at Index of the selected category.
	Download struct{ Index int }
	// FavList shows the user's favorites.
	FavList struct{}
	// FavToggle adds or removes a course from the favorites, then shows the course.
	FavToggle struct{ Year, Semester, Course string }
	// SearchCourse shows a course reached from a search result.
	SearchCourse struct{ Year, Semester, Course string }
	// Ignore is the no-op of placeholder buttons.
	Ignore struct{}
	// Search runs a free-text query.
	Search struct{ Query string }
	// Clear drops the tracked menu.
	Clear struct{}
	// TooShort is free text below the minimum query length.
	TooShort struct{ Text string }
)

func (Home) Name() string           { return "home" }
func (SelectYear) Name() string     { return "year" }
func (SelectSemester) Name() string { return "sem" }
func (SelectCourse) Name() string   { return "course" }
func (SelectType) Name() string     { return "type" }
func (Download) Name() string       { return "down" }
func (FavList) Name() string        { return "fav_list" }
func (FavToggle) Name() string      { return "fav_toggle" }
func (SearchCourse) Name() string   { return "search_course" }
func (Ignore) Name() string         { return "ignore" }
func (Search) Name() string         { return "search" }
func (Clear) Name() string          { return "clear" }
func (TooShort) Name() string       { return "too_short" }

func (Home) action()           {}
func (SelectYear) action()     {}
func (SelectSemester) action() {}
func (SelectCourse) action()   {}
func (SelectType) action()     {}
func (Download) action()       {}
func (FavList) action()        {}
func (FavToggle) action()      {}
func (SearchCourse) action()   {}
func (Ignore) action()         {}
func (Search) action()         {}
func (Clear) action()          {}
func (TooShort) action()       {}

// Parse decodes callback data.
func Parse(data string) (Action, error) {
	data = strings.TrimSpace(data)
	key, arg, _ := strings.Cut(data, ":")
	switch key {
	case KeyHome:
		return Home{}, nil
	case KeyIgnore:
		return Ignore{}, nil
	case KeyYear:
		if arg != "" {
			return SelectYear{Year: arg}, nil
		}
	case KeySemester:
		if arg != "" {
			return SelectSemester{Semester: arg}, nil
		}
	case KeyCourse:
		if arg != "" {
			return SelectCourse{Course: arg}, nil
		}
	case KeyType:
		if c, ok := catalog.ParseCategory(arg); ok {
			return SelectType{Category: c}, nil
		}
	case KeyDownload:
		if i, err := strconv.Atoi(arg); err == nil {
			return Download{Index: i}, nil
		}
	case KeyFavorites:
		sub, rest, _ := strings.Cut(arg, ":")
		switch sub {
		case "list":
			return FavList{}, nil
		case "toggle":
			if y, s, c, ok := location(rest); ok {
				return FavToggle{Year: y, Semester: s, Course: c}, nil
			}
		}
	case KeySearchCourse:
		if y, s, c, ok := location(arg); ok {
			return SearchCourse{Year: y, Semester: s, Course: c}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, data)
}

func location(s string) (year, sem, course string, ok bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Data encodes an action as callback data. Text-only actions encode to "".
func Data(a Action) string {
	switch v := a.(type) {
	case Home:
		return KeyHome
	case Ignore:
		return KeyIgnore
	case SelectYear:
		return KeyYear + ":" + v.Year
	case SelectSemester:
		return KeySemester + ":" + v.Semester
	case SelectCourse:
		return KeyCourse + ":" + v.Course
	case SelectType:
		return KeyType + ":" + string(v.Category)
	case Download:
		return KeyDownload + ":" + strconv.Itoa(v.Index)
	case FavList:
		return KeyFavorites + ":list"
	case FavToggle:
		return strings.Join([]string{KeyFavorites, "toggle", v.Year, v.Semester, v.Course}, ":")
	case SearchCourse:
		return strings.Join([]string{KeySearchCourse, v.Year, v.Semester, v.Course}, ":")
	}
	return ""
}

// ErrDataTooLong reports a catalog entry whose buttons exceed the callback data limit.
var ErrDataTooLong = errors.New("action: callback data too long")

// CheckCatalog lists every year and course of cat whose callback data would not fit an
// inline button. Telegram rejects the whole keyboard in that case.
func CheckCatalog(cat *catalog.Catalog) error {
	var problems []error
	check := func(a Action) bool {
		if n := len(Data(a)); n > keyboard.MaxCallbackData {
			problems = append(problems, fmt.Errorf("%w: %q is %d bytes, limit %d",
				ErrDataTooLong, Data(a), n, keyboard.MaxCallbackData))
			return false
		}
		return true
	}
	for _, y := range cat.Years {
		check(SelectYear{Year: y.ID})
	}
	for _, c := range cat.Courses() {
		_ = check(FavToggle{Year: c.Year, Semester: c.Semester, Course: c.Name}) &&
			check(SearchCourse{Year: c.Year, Semester: c.Semester, Course: c.Name})
	}
	return errors.Join(problems...)
}

var greetings = map[string]struct{}{
	"hello": {}, "hi": {}, "hey": {}, "start": {}, "menu": {},
}

// ParseText classifies a free-text message: greetings go home, "clear" drops the menu,
// short text asks for more characters and everything else is a search.
func ParseText(text string) Action {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)
	if _, ok := greetings[lower]; ok {
		return Home{Fresh: true}
	}
	if lower == "clear" {
		return Clear{}
	}
	if search.TooShort(t) {
		return TooShort{Text: t}
	}
	return Search{Query: t}
}
