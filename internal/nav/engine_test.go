package nav

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/coursebot/internal/action"
	"github.com/m3rciful/coursebot/internal/catalog"
	"github.com/m3rciful/coursebot/internal/favorites"
	"github.com/m3rciful/coursebot/internal/menu"
)

type memRepo struct {
	mu      sync.Mutex
	data    map[string][]favorites.Favorite
	failErr error
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string][]favorites.Favorite)}
}

func (r *memRepo) List(_ context.Context, user string) ([]favorites.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	return append([]favorites.Favorite(nil), r.data[user]...), nil
}

func (r *memRepo) Add(_ context.Context, user string, fav favorites.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	for _, f := range r.data[user] {
		if f.Course == fav.Course {
			return nil
		}
	}
	r.data[user] = append(r.data[user], fav)
	return nil
}

func (r *memRepo) Remove(_ context.Context, user, course string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	var kept []favorites.Favorite
	for _, f := range r.data[user] {
		if f.Course != course {
			kept = append(kept, f)
		}
	}
	r.data[user] = kept
	return nil
}

func link(name string) catalog.FileEntry {
	return catalog.FileEntry{Name: name, DownloadLink: "https://example.com/" + name}
}

func testCatalog() *catalog.Catalog {
	return catalog.NewBuilder().
		Add("1", "1", "Signals", catalog.Slides, link("signals-1.pdf"), link("signals-2.pdf")).
		Add("1", "1", "Signals", catalog.Videos).
		Add("1", "1", "Math", catalog.Slides, link("math.pdf")).
		Add("1", "1", "Math", catalog.Past, link("math-2021.pdf")).
		Add("1", "2", "Physics", catalog.Books, link("halliday.pdf")).
		Add("2", "1", "Calculus II", catalog.Slides, link("calc-notes.pdf")).
		Add("2", "1", "Signals", catalog.Books, link("signals-advanced.pdf")).
		Add("3", "1", "Networks", catalog.Slides, link(strings.Repeat("n", 35)+".pdf")).
		Build()
}

type harness struct {
	t      *testing.T
	engine *Engine
	repo   *memRepo
	conv   Conversation
}

func newHarness(t *testing.T) *harness {
	repo := newMemRepo()
	return &harness{t: t, engine: NewEngine(testCatalog(), repo), repo: repo}
}

func (h *harness) do(act action.Action) (Result, error) {
	h.t.Helper()
	next, res, err := h.engine.Handle(context.Background(), "42", h.conv, act)
	h.conv = next
	return res, err
}

func (h *harness) press(data string) (Result, error) {
	h.t.Helper()
	act, err := action.Parse(data)
	require.NoError(h.t, err, data)
	return h.do(act)
}

func (h *harness) mustPress(data string) Result {
	h.t.Helper()
	res, err := h.press(data)
	require.NoError(h.t, err, data)
	return res
}

func labels(m menu.Menu) []string {
	var out []string
	for _, b := range m.Buttons {
		out = append(out, b.Label)
	}
	return out
}

// findButton returns the first button of m labeled label, in row order.
func findButton(m menu.Menu, label string) (menu.Button, bool) {
	for _, row := range m.Rows() {
		for _, b := range row {
			if b.Label == label {
				return b, true
			}
		}
	}
	return menu.Button{}, false
}

func datas(m menu.Menu) []string {
	var out []string
	for _, b := range m.Buttons {
		out = append(out, b.Data())
	}
	return out
}

func TestYearMenuAlwaysOffersTwoSemesters(t *testing.T) {
	h := newHarness(t)
	for _, y := range h.engine.Catalog().Years {
		h.mustPress("home")
		res := h.mustPress("year:" + y.ID)
		require.Equal(t, KindMenu, res.Kind)
		assert.Equal(t, []string{"sem:1", "sem:2"}, datas(res.Menu), y.ID)
		require.NotNil(t, res.Menu.Back)
		assert.Equal(t, "home", res.Menu.Back.Data())
	}
}

func TestCourseMenuShowsOnlyNonEmptyCategories(t *testing.T) {
	h := newHarness(t)
	h.mustPress("year:1")
	h.mustPress("sem:1")
	res := h.mustPress("course:Math")
	assert.Equal(t, []string{"type:slides", "type:past"}, datas(res.Menu))
	assert.Equal(t, menu.Grid, res.Menu.Layout)
	assert.Equal(t, "sem:1", res.Menu.Back.Data())
}

func TestEndToEndFavoriteToggle(t *testing.T) {
	h := newHarness(t)
	home := h.mustPress("home")
	assert.Contains(t, labels(home.Menu), "🎓 Year 1")

	h.mustPress("year:1")
	sem := h.mustPress("sem:1")
	assert.Equal(t, []string{"📘 Signals", "📘 Math"}, labels(sem.Menu))
	assert.Equal(t, "year:1", sem.Menu.Back.Data())

	res := h.mustPress("course:Signals")
	assert.Equal(t, []string{"📄 Slides"}, labels(res.Menu))
	toggle, ok := findButton(res.Menu, LabelAddFavorite)
	require.True(t, ok)
	assert.Equal(t, "fav:toggle:1:1:Signals", toggle.Data())

	res = h.mustPress(toggle.Data())
	require.Equal(t, KindMenu, res.Kind)
	_, ok = findButton(res.Menu, LabelRemoveFavorite)
	assert.True(t, ok)

	res = h.mustPress("course:Signals")
	_, ok = findButton(res.Menu, LabelRemoveFavorite)
	assert.True(t, ok)

	res = h.mustPress("fav:toggle:1:1:Signals")
	_, ok = findButton(res.Menu, LabelAddFavorite)
	assert.True(t, ok)
	assert.Empty(t, h.repo.data["42"])
}

func TestFavToggleAddsOneEntryAndShowsCourse(t *testing.T) {
	h := newHarness(t)
	res := h.mustPress("fav:toggle:1:1:Signals")

	assert.Equal(t, []favorites.Favorite{{Year: "1", Semester: "1", Course: "Signals"}}, h.repo.data["42"])
	require.Equal(t, KindMenu, res.Kind)
	assert.Contains(t, res.Menu.Title, "*Signals*")
	assert.Equal(t, Conversation{Year: "1", Semester: "1", Course: "Signals"}, h.conv)
}

func TestFavToggleDoesNotTouchOtherCourses(t *testing.T) {
	h := newHarness(t)
	h.mustPress("fav:toggle:1:1:Math")
	h.mustPress("fav:toggle:1:1:Signals")
	h.mustPress("fav:toggle:1:1:Signals")
	assert.Equal(t, []favorites.Favorite{{Year: "1", Semester: "1", Course: "Math"}}, h.repo.data["42"])
}

func TestFavToggleStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.repo.failErr = errors.New("disk full")
	res, err := h.press("fav:toggle:1:1:Signals")
	assert.Error(t, err)
	assert.Equal(t, KindNotice, res.Kind)
	assert.Equal(t, NoticeFavoritesErr, res.Notice)
}

func TestCourseMenuDegradesWhenFavoritesUnreadable(t *testing.T) {
	h := newHarness(t)
	h.repo.failErr = errors.New("corrupt")
	res := h.mustPress("course:Signals")
	_, ok := findButton(res.Menu, LabelAddFavorite)
	assert.True(t, ok)
}

func TestTypeMenuAndDownload(t *testing.T) {
	h := newHarness(t)
	h.mustPress("year:1")
	h.mustPress("sem:1")
	h.mustPress("course:Signals")
	res := h.mustPress("type:slides")
	assert.Equal(t, []string{"down:0", "down:1"}, datas(res.Menu))
	assert.Equal(t, "course:Signals", res.Menu.Back.Data())
	assert.Equal(t, menu.Column, res.Menu.Layout)

	res = h.mustPress("down:1")
	require.Equal(t, KindFile, res.Kind)
	assert.Equal(t, "signals-2.pdf", res.File.Name)
}

func TestEmptyCategoryShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	h.mustPress("course:Signals")
	res := h.mustPress("type:videos")
	require.Len(t, res.Menu.Buttons, 1)
	assert.Equal(t, LabelNoFiles, res.Menu.Buttons[0].Label)
	assert.Equal(t, "ignore", res.Menu.Buttons[0].Data())

	res = h.mustPress("ignore")
	assert.Equal(t, KindAck, res.Kind)
	assert.Equal(t, ToastNoFiles, res.Toast)
}

func TestDownloadOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.mustPress("course:Signals")
	h.mustPress("type:slides")
	before := h.conv

	res, err := h.press("down:7")
	assert.ErrorIs(t, err, ErrStaleAction)
	assert.Equal(t, KindNotice, res.Kind)
	assert.Equal(t, NoticeFileMissing, res.Notice)
	assert.Contains(t, res.Notice, "/start")
	assert.Equal(t, before, h.conv)

	h.conv = Conversation{}
	res, err = h.press("down:0")
	assert.ErrorIs(t, err, ErrStaleAction)
	assert.Equal(t, KindNotice, res.Kind)
}

func TestFileLabelsAreTruncated(t *testing.T) {
	h := newHarness(t)
	h.mustPress("course:Networks")
	res := h.mustPress("type:slides")
	assert.Equal(t, "⬇️ "+strings.Repeat("n", 30)+"..", res.Menu.Buttons[0].Label)
}

func TestStaleActions(t *testing.T) {
	h := newHarness(t)

	res, err := h.press("sem:1")
	assert.ErrorIs(t, err, ErrStaleAction)
	assert.Equal(t, NoticeStale, res.Notice)

	_, err = h.press("type:slides")
	assert.ErrorIs(t, err, ErrStaleAction)

	_, err = h.press("year:9")
	assert.ErrorIs(t, err, ErrStaleAction)

	res, err = h.press("course:Chemistry")
	assert.ErrorIs(t, err, ErrStaleAction)
	assert.ErrorIs(t, err, catalog.ErrCourseNotFound)
	assert.Equal(t, KindNotice, res.Kind)
}

func TestMissingSemesterShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	h.mustPress("year:3")
	res := h.mustPress("sem:2")
	require.Len(t, res.Menu.Buttons, 1)
	assert.Equal(t, LabelNoCourses, res.Menu.Buttons[0].Label)
	assert.Equal(t, "year:3", res.Menu.Back.Data())
}

func TestCourseResolvesFirstMatchWithoutLocation(t *testing.T) {
	h := newHarness(t)
	h.mustPress("course:Signals")
	assert.Equal(t, Conversation{Year: "1", Semester: "1", Course: "Signals"}, h.conv)

	h.conv = Conversation{Year: "2", Semester: "1"}
	res := h.mustPress("course:Signals")
	assert.Equal(t, []string{"📚 Reference Books"}, labels(res.Menu))
}

func TestSearchAndSearchCourse(t *testing.T) {
	h := newHarness(t)
	res, err := h.do(action.ParseText("cal"))
	require.NoError(t, err)
	require.Equal(t, KindMenu, res.Kind)
	assert.True(t, res.Fresh)
	require.Len(t, res.Menu.Buttons, 2)
	assert.Equal(t, "search_course:2:1:Calculus II", res.Menu.Buttons[0].Data())
	assert.Equal(t, "https://example.com/calc-notes.pdf", res.Menu.Buttons[1].URL)

	res = h.mustPress(res.Menu.Buttons[0].Data())
	assert.Contains(t, res.Menu.Title, "Calculus II")
	assert.Equal(t, Conversation{Year: "2", Semester: "1", Course: "Calculus II"}, h.conv)
	assert.Equal(t, "sem:1", res.Menu.Back.Data())
}

func TestSearchCourseUsesGivenLocation(t *testing.T) {
	h := newHarness(t)
	res := h.mustPress("search_course:2:1:Signals")
	assert.Equal(t, []string{"📚 Reference Books"}, labels(res.Menu))
}

func TestSearchWithoutResults(t *testing.T) {
	h := newHarness(t)
	res, err := h.do(action.Search{Query: "chemistry"})
	require.NoError(t, err)
	assert.Empty(t, res.Menu.Buttons)
	assert.Contains(t, res.Menu.Title, "No courses or files match")
	assert.Equal(t, "home", res.Menu.Back.Data())
}

func TestShortTextPromptsForMore(t *testing.T) {
	h := newHarness(t)
	res, err := h.do(action.ParseText("ab"))
	require.NoError(t, err)
	assert.Equal(t, KindNotice, res.Kind)
	assert.Equal(t, NoticeTooShort, res.Notice)
}

func TestGreetingAndHome(t *testing.T) {
	h := newHarness(t)
	h.conv = Conversation{Year: "1", Semester: "1", Course: "Math", LastMenuMessageID: 99}

	res := h.mustPress("home")
	assert.False(t, res.Fresh)
	assert.Zero(t, res.DeleteMessageID)
	assert.Equal(t, Conversation{LastMenuMessageID: 99}, h.conv)

	res, err := h.do(action.ParseText("hello"))
	require.NoError(t, err)
	assert.True(t, res.Fresh)
	assert.Equal(t, 99, res.DeleteMessageID)
	assert.Zero(t, h.conv.LastMenuMessageID)
	fav, ok := findButton(res.Menu, LabelFavorites)
	require.True(t, ok)
	assert.Equal(t, "fav:list", fav.Data())
}

func TestClear(t *testing.T) {
	h := newHarness(t)
	h.conv.LastMenuMessageID = 12
	res, err := h.do(action.ParseText("clear"))
	require.NoError(t, err)
	assert.Equal(t, KindClear, res.Kind)
	assert.Equal(t, 12, res.DeleteMessageID)
	assert.Zero(t, h.conv.LastMenuMessageID)
}

func TestFavoritesList(t *testing.T) {
	h := newHarness(t)
	res := h.mustPress("fav:list")
	assert.Empty(t, res.Menu.Buttons)
	assert.Contains(t, res.Menu.Title, "no favorites yet")

	h.mustPress("fav:toggle:2:1:Calculus II")
	h.mustPress("fav:toggle:1:2:Physics")
	res = h.mustPress("fav:list")
	assert.Equal(t, []string{"course:Calculus II", "course:Physics"}, datas(res.Menu))
	assert.Equal(t, "home", res.Menu.Back.Data())
	assert.Equal(t, "home", h.conv.State())

	res = h.mustPress("course:Physics")
	assert.Equal(t, []string{"📚 Reference Books"}, labels(res.Menu))
}

func TestConversationState(t *testing.T) {
	assert.Equal(t, "home", Conversation{}.State())
	assert.Equal(t, "year_selected", Conversation{Year: "1"}.State())
	assert.Equal(t, "file_type_selected", Conversation{Course: "A", FileType: catalog.Books}.State())
}
