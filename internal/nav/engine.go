// Package nav is the navigation state machine: it applies one user action to a conversation
// and describes what the bot should show next.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/coursebot/core/logger"
	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/favorites"
	"github.com/m3rciful/coursebot/internal/metrics"
	"github.com/m3rciful/coursebot/internal/search"
)

// ErrStaleAction reports an action that does not fit the conversation, typically a button of
// an old menu.
var ErrStaleAction = errors.New("nav: stale action")

// maxRedirects bounds the fall-through chain; fav toggle and search_course redirect once.
const maxRedirects = 4

// Engine applies actions to conversations. It is safe for concurrent use; callers serialize
// actions of the same conversation.
type Engine struct {
	catalog   *catalog.Catalog
	favorites favorites.Repository
}

// NewEngine builds an engine over an immutable catalog and a favorites repository.
func NewEngine(cat *catalog.Catalog, favs favorites.Repository) *Engine {
	return &Engine{catalog: cat, favorites: favs}
}

// Catalog returns the catalog the engine navigates.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Handle applies act to conv. The returned Result is always usable, also when err is set:
// errors describe what went wrong for logging, the Result carries the chat reply.
func (e *Engine) Handle(ctx context.Context, userID string, conv Conversation, act action.Action) (Conversation, Result, error) {
	metrics.Action(act.Name())
	for i := 0; i < maxRedirects; i++ {
		next, res, redirect, err := e.step(ctx, userID, conv, act)
		if redirect == nil || err != nil {
			return next, res, err
		}
		logger.Component("nav").Debug("redirect",
			slog.String("event", "nav.redirect"),
			slog.String("user_id", userID),
			slog.String("action", act.Name()),
			slog.String("redirect", redirect.Name()),
			slog.String("state", next.State()),
		)
		conv, act = next, redirect
	}
	return conv, notice(NoticeStale), fmt.Errorf("%w: redirect loop at %s", ErrStaleAction, act.Name())
}

// step handles one action. A non-nil redirect asks the loop to continue with that action
// on the returned conversation.
func (e *Engine) step(ctx context.Context, userID string, conv Conversation, act action.Action) (Conversation, Result, action.Action, error) {
	switch a := act.(type) {
	case action.Home:
		next := conv.Reset()
		res := Result{Kind: KindMenu, Menu: homeMenu(e.catalog), Fresh: a.Fresh}
		if a.Fresh {
			res.DeleteMessageID = conv.LastMenuMessageID
			next.LastMenuMessageID = 0
		}
		return next, res, nil, nil

	case action.SelectYear:
		if _, ok := e.catalog.Year(a.Year); !ok {
			return conv, notice(NoticeStale), nil, stale("unknown year %q", a.Year)
		}
		next := conv.Reset()
		next.Year = a.Year
		return next, Result{Kind: KindMenu, Menu: yearMenu(a.Year)}, nil, nil

	case action.SelectSemester:
		year, ok := e.catalog.Year(conv.Year)
		if !ok {
			return conv, notice(NoticeStale), nil, stale("semester %q without year", a.Semester)
		}
		sem, _ := year.Semester(a.Semester)
		next := conv.Reset()
		next.Year, next.Semester = conv.Year, a.Semester
		return next, Result{Kind: KindMenu, Menu: semesterMenu(conv.Year, a.Semester, sem)}, nil, nil

	case action.SelectCourse:
		course, err := e.catalog.Resolve(conv.Year, conv.Semester, a.Course)
		if err != nil {
			return conv, notice(NoticeStale), nil, fmt.Errorf("%w: %w", ErrStaleAction, err)
		}
		next := conv.Reset()
		next.Year, next.Semester, next.Course = course.Year, course.Semester, course.Name
		fav, err := favorites.IsFavorite(ctx, e.favorites, userID, course.Name)
		if err != nil {
			logger.Favorites.Warn("favorites read failed",
				slog.String("event", "favorites.read"),
				slog.String("user_id", userID),
				slog.String("course", course.Name),
				slog.String("err", err.Error()),
			)
		}
		return next, Result{Kind: KindMenu, Menu: courseMenu(course, fav)}, nil, nil

	case action.SelectType:
		course, ok := e.selectedCourse(conv)
		if !ok {
			return conv, notice(NoticeStale), nil, stale("type %q without course", a.Category)
		}
		next := conv
		next.FileType = a.Category
		return next, Result{Kind: KindMenu, Menu: typeMenu(course, a.Category)}, nil, nil

	case action.Download:
		course, ok := e.selectedCourse(conv)
		if !ok || conv.FileType == "" {
			return conv, notice(NoticeFileMissing), nil, stale("download without file type")
		}
		files := course.Files(conv.FileType)
		if a.Index < 0 || a.Index >= len(files) {
			return conv, notice(NoticeFileMissing), nil, stale("file index %d of %d", a.Index, len(files))
		}
		return conv, Result{Kind: KindFile, File: files[a.Index]}, nil, nil

	case action.FavList:
		favs, err := e.favorites.List(ctx, userID)
		if err != nil {
			logger.Favorites.Warn("favorites read failed",
				slog.String("event", "favorites.read"),
				slog.String("user_id", userID),
				slog.String("err", err.Error()),
			)
			favs = nil
		}
		return conv.Reset(), Result{Kind: KindMenu, Menu: favoritesMenu(favs)}, nil, nil

	case action.FavToggle:
		added, err := favorites.Toggle(ctx, e.favorites, userID, favorites.Favorite{
			Year: a.Year, Semester: a.Semester, Course: a.Course,
		})
		metrics.Toggle(added, err)
		if err != nil {
			return conv, notice(NoticeFavoritesErr), nil, err
		}
		next := conv.Reset()
		next.Year, next.Semester = a.Year, a.Semester
		return next, Result{}, action.SelectCourse{Course: a.Course}, nil

	case action.SearchCourse:
		next := conv.Reset()
		next.Year, next.Semester = a.Year, a.Semester
		return next, Result{}, action.SelectCourse{Course: a.Course}, nil

	case action.Search:
		matches := search.Search(e.catalog, a.Query, search.MaxResults)
		metrics.Search(len(matches))
		logger.Component("nav").Debug("search",
			slog.String("event", "nav.search"),
			slog.String("user_id", userID),
			slog.String("query", logger.SanitizeLimit(a.Query, 64)),
			slog.Int("results", len(matches)),
		)
		return conv, Result{Kind: KindMenu, Menu: searchMenu(a.Query, matches), Fresh: true}, nil, nil

	case action.TooShort:
		return conv, notice(NoticeTooShort), nil, nil

	case action.Clear:
		next := conv
		next.LastMenuMessageID = 0
		return next, Result{Kind: KindClear, DeleteMessageID: conv.LastMenuMessageID}, nil, nil

	case action.Ignore:
		return conv, Result{Kind: KindAck, Toast: ToastNoFiles}, nil, nil
	}
	return conv, Result{Kind: KindAck}, nil, stale("unhandled action %s", act.Name())
}

// selectedCourse resolves the course of the conversation.
func (e *Engine) selectedCourse(conv Conversation) (*catalog.Course, bool) {
	if conv.Course == "" {
		return nil, false
	}
	course, err := e.catalog.Resolve(conv.Year, conv.Semester, conv.Course)
	return course, err == nil
}

func notice(text string) Result {
	return Result{Kind: KindNotice, Notice: text}
}

func stale(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStaleAction, fmt.Sprintf(format, args...))
}
