package nav

import (
	"fmt"

	"github.com/m3rciful/coursebot/core/telegram/format"
	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/favorites"
	"github.com/m3rciful/coursebot/internal/menu"
	"github.com/m3rciful/coursebot/internal/search"
)

// Chat texts.
const (
	WelcomeTitle = "👋 *Welcome to the Telecom Resources Bot!* 🚀\n\n" +
		"📚 Access slides, past questions, and books easily.\n" +
		"👇 *Select your Year to get started:*"

	LabelFavorites      = "⭐ My Favorites"
	LabelAddFavorite    = "⭐ Add to Favorites"
	LabelRemoveFavorite = "💔 Remove Favorite"
	LabelNoFiles        = "No files found 😕"
	LabelNoCourses      = "No courses found 😕"

	NoticeStale        = "⚠️ This menu is out of date. Send /start to open a fresh one."
	NoticeFileMissing  = "⚠️ This file is no longer in this menu. Send /start to open a fresh one."
	NoticeMenuFailed   = "⚠️ Could not show this menu. Send /start to try again."
	NoticeTooShort     = "✍️ Please type at least 3 characters to search."
	NoticeFavoritesErr = "⚠️ Could not update your favorites right now. Please try again."
	ToastNoFiles       = "No files available here 😕"

	// FileLabelLimit is how many characters of a file name a download button shows.
	FileLabelLimit = 30
)

// Semesters offered by every year menu.
var Semesters = []string{"1", "2"}

var semesterLabels = map[string]string{
	"1": "Semester 1 🍂",
	"2": "Semester 2 🌸",
}

func homeMenu(cat *catalog.Catalog) menu.Menu {
	buttons := make([]menu.Button, 0, len(cat.Years))
	for _, y := range cat.Years {
		buttons = append(buttons, menu.Button{
			Label:  "🎓 Year " + y.ID,
			Action: action.SelectYear{Year: y.ID},
		})
	}
	return menu.Menu{
		Title:   WelcomeTitle,
		Buttons: buttons,
		Layout:  menu.Grid,
		Extra:   []menu.Button{{Label: LabelFavorites, Action: action.FavList{}}},
	}
}

func yearMenu(year string) menu.Menu {
	buttons := make([]menu.Button, 0, len(Semesters))
	for _, s := range Semesters {
		buttons = append(buttons, menu.Button{Label: semesterLabels[s], Action: action.SelectSemester{Semester: s}})
	}
	return menu.Menu{
		Title:   fmt.Sprintf("🎓 *Year %s Selected*\n\n👇 Choose your semester:", format.EscapeMarkdown(year)),
		Buttons: buttons,
		Layout:  menu.Grid,
		Back:    menu.BackTo(action.Home{}),
	}
}

// semesterMenu lists the courses of sem; a semester missing from the catalog shows a placeholder.
func semesterMenu(year, semID string, sem *catalog.Semester) menu.Menu {
	var buttons []menu.Button
	if sem != nil {
		for _, c := range sem.Courses {
			buttons = append(buttons, menu.Button{Label: "📘 " + c.Name, Action: action.SelectCourse{Course: c.Name}})
		}
	}
	if len(buttons) == 0 {
		buttons = append(buttons, menu.Button{Label: LabelNoCourses, Action: action.Ignore{}})
	}
	return menu.Menu{
		Title:   fmt.Sprintf("📅 *Semester %s Selected*\n\n👇 Choose your course:", format.EscapeMarkdown(semID)),
		Buttons: buttons,
		Layout:  menu.Column,
		Back:    menu.BackTo(action.SelectYear{Year: year}),
	}
}

func courseMenu(c *catalog.Course, favorite bool) menu.Menu {
	var buttons []menu.Button
	for _, cat := range c.Categories() {
		buttons = append(buttons, menu.Button{Label: cat.Label(), Action: action.SelectType{Category: cat}})
	}
	if len(buttons) == 0 {
		buttons = append(buttons, menu.Button{Label: LabelNoFiles, Action: action.Ignore{}})
	}
	toggle := menu.Button{
		Label:  LabelAddFavorite,
		Action: action.FavToggle{Year: c.Year, Semester: c.Semester, Course: c.Name},
	}
	if favorite {
		toggle.Label = LabelRemoveFavorite
	}
	return menu.Menu{
		Title:   fmt.Sprintf("📘 *%s*\n\n👇 Choose resource type:", format.EscapeMarkdown(c.Name)),
		Buttons: buttons,
		Layout:  menu.Grid,
		Extra:   []menu.Button{toggle},
		Back:    menu.BackTo(action.SelectSemester{Semester: c.Semester}),
	}
}

func typeMenu(c *catalog.Course, cat catalog.Category) menu.Menu {
	files := c.Files(cat)
	buttons := make([]menu.Button, 0, len(files))
	for i, f := range files {
		buttons = append(buttons, menu.Button{
			Label:  "⬇️ " + format.Truncate(f.Name, FileLabelLimit, ".."),
			Action: action.Download{Index: i},
		})
	}
	if len(buttons) == 0 {
		buttons = append(buttons, menu.Button{Label: LabelNoFiles, Action: action.Ignore{}})
	}
	return menu.Menu{
		Title: fmt.Sprintf("📂 *%s for %s*\n\n👇 Select a file to download:",
			cat.Title(), format.EscapeMarkdown(c.Name)),
		Buttons: buttons,
		Layout:  menu.Column,
		Back:    menu.BackTo(action.SelectCourse{Course: c.Name}),
	}
}

func favoritesMenu(favs []favorites.Favorite) menu.Menu {
	m := menu.Menu{
		Title:  "⭐ *My Favorites*\n\n👇 Pick a course:",
		Layout: menu.Column,
		Back:   menu.BackTo(action.Home{}),
	}
	if len(favs) == 0 {
		m.Title = "⭐ *My Favorites*\n\nYou have no favorites yet. Open a course and tap " + LabelAddFavorite + "."
		return m
	}
	for _, f := range favs {
		m.Buttons = append(m.Buttons, menu.Button{Label: "📘 " + f.Course, Action: action.SelectCourse{Course: f.Course}})
	}
	return m
}

func searchMenu(query string, matches []search.Match) menu.Menu {
	q := format.EscapeMarkdown(query)
	m := menu.Menu{
		Title:  fmt.Sprintf("🔍 *Results for* \"%s\":", q),
		Layout: menu.Column,
		Back:   menu.BackTo(action.Home{}),
	}
	if len(matches) == 0 {
		m.Title = fmt.Sprintf("😕 No courses or files match \"%s\".", q)
		return m
	}
	for _, match := range matches {
		b := menu.Button{Label: match.Label()}
		if match.Kind == search.FileMatch {
			b.URL = match.File.DownloadLink
		} else {
			b.Action = action.SearchCourse{Year: match.Course.Year, Semester: match.Course.Semester, Course: match.Course.Name}
		}
		m.Buttons = append(m.Buttons, b)
	}
	return m
}
