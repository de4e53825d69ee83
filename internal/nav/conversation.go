package nav

import "github.com/m3rciful/coursebot/internal/catalog"

// Conversation is the navigation progress of one user. Fields fill in as the user drills down.
type Conversation struct {
	Year     string
	Semester string
	Course   string
	FileType catalog.Category

	// LastMenuMessageID is the most recent menu sent as a new message, 0 when none is tracked.
	LastMenuMessageID int
}

// Reset clears every selection but keeps the tracked menu.
func (c Conversation) Reset() Conversation {
	return Conversation{LastMenuMessageID: c.LastMenuMessageID}
}

// State names the deepest selection made so far.
func (c Conversation) State() string {
	switch {
	case c.FileType != "":
		return "file_type_selected"
	case c.Course != "":
		return "course_selected"
	case c.Semester != "":
		return "semester_selected"
	case c.Year != "":
		return "year_selected"
	}
	return "home"
}
