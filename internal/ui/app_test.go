package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/feed"
	"github.com/adriangreen/todo-tui/internal/memory"
	"github.com/adriangreen/todo-tui/internal/todo"
)

type fakeLoader struct {
	result feed.Result
	calls  int
}

func (f *fakeLoader) Load(context.Context) feed.Result {
	f.calls++
	return f.result
}

func sampleTasks(n int) []todo.Task {
	tasks := make([]todo.Task, n)
	for i := range tasks {
		id := i + 1
		tasks[i] = todo.Task{ID: id, UserID: 1, Title: fmt.Sprintf("task %d", id), Completed: id%2 == 0}
	}
	return tasks
}

// createTestModel builds a sized model that has not loaded yet.
func createTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	t.Setenv("TODO_TUI_STATE_DIR", t.TempDir())
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Loader == nil {
		opts.Loader = &fakeLoader{result: feed.Success(nil)}
	}
	m := NewModel(opts)
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// loadedModel builds a model that has received tasks.
func loadedModel(t *testing.T, tasks []todo.Task) Model {
	t.Helper()
	m := createTestModel(t, Options{})
	return update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Success(tasks)})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestLoadCapsInitialView(t *testing.T) {
	m := loadedModel(t, sampleTasks(30))

	assert.Equal(t, feed.Loaded, m.loadState)
	assert.Equal(t, 30, m.store.Len())
	assert.Len(t, m.store.Visible(), todo.InitialVisibleLimit)
	assert.Len(t, m.table.Rows(), todo.InitialVisibleLimit)
	assert.Contains(t, m.View(), "All (30)")
}

func TestLoadRespectsConfiguredLimit(t *testing.T) {
	for _, tc := range []struct {
		limit int
		want  int
	}{
		{limit: 5, want: 5},
		{limit: -1, want: 30},
		{limit: 0, want: todo.InitialVisibleLimit},
	} {
		t.Run(fmt.Sprint(tc.limit), func(t *testing.T) {
			cfg := config.Default()
			cfg.UI.InitialLimit = tc.limit
			m := createTestModel(t, Options{Config: cfg})
			m = update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Success(sampleTasks(30))})
			assert.Len(t, m.store.Visible(), tc.want)
		})
	}
}

func TestStaleLoadResultIsDropped(t *testing.T) {
	m := createTestModel(t, Options{})

	m = update(t, m, FeedLoadedMsg{Seq: 7, Result: feed.Success(sampleTasks(3))})

	assert.Equal(t, feed.Loading, m.loadState)
	assert.Zero(t, m.store.Len())
	assert.Contains(t, m.View(), "Loading tasks...")
}

func TestLoadFailureShowsErrorAndRetries(t *testing.T) {
	m := createTestModel(t, Options{})
	m = update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Failure(errors.New("connection refused"))})

	require.Equal(t, feed.Failed, m.loadState)
	view := m.View()
	assert.Contains(t, view, "Failed to load tasks: connection refused")
	assert.Contains(t, view, "Press r to retry")
	assert.Empty(t, m.store.Visible())

	m = press(t, m, "r")
	assert.Equal(t, feed.Loading, m.loadState)
	assert.Equal(t, 2, m.loadSeq)

	// the first request's late answer must not win
	m = update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Success(sampleTasks(9))})
	assert.Equal(t, feed.Loading, m.loadState)

	m = update(t, m, FeedLoadedMsg{Seq: 2, Result: feed.Success(sampleTasks(4))})
	assert.Equal(t, feed.Loaded, m.loadState)
	assert.Equal(t, 4, m.store.Len())
}

func TestMutationsBlockedAfterFailedLoad(t *testing.T) {
	m := createTestModel(t, Options{})
	m = update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Failure(errors.New("timeout"))})
	require.Equal(t, feed.Failed, m.loadState)

	m = press(t, m, "a")
	assert.False(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalIdle, m.session.Modal().Kind)

	m = typeText(t, m, "mine")
	m = press(t, m, "enter", "e", "x")
	assert.False(t, m.dialogs.HasDialog())
	assert.Zero(t, m.store.Len())
	assert.Zero(t, m.toasts.Len())

	m = press(t, m, "r")
	m = update(t, m, FeedLoadedMsg{Seq: 2, Result: feed.Success(sampleTasks(3))})
	assert.Equal(t, 3, m.store.Len())

	m = press(t, m, "a")
	assert.True(t, m.dialogs.HasDialog())
}

func TestRefreshIgnoredOnceLoaded(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	next, cmd := m.Update(keyMsg("r"))
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.loadSeq)
	assert.Equal(t, feed.Loaded, m.loadState)
}

func TestLoadCmdCallsLoader(t *testing.T) {
	loader := &fakeLoader{result: feed.Success(sampleTasks(2))}
	m := createTestModel(t, Options{Loader: loader})

	msg := m.loadCmd()()
	loaded, ok := msg.(FeedLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, loaded.Seq)
	assert.Len(t, loaded.Result.Tasks, 2)
}

func TestMissingLoaderFails(t *testing.T) {
	m := NewModel(Options{Config: config.Default()})

	msg := m.loadCmd()().(FeedLoadedMsg)
	assert.ErrorIs(t, msg.Result.Err, errNoLoader)
}

func TestFilterKeys(t *testing.T) {
	m := loadedModel(t, sampleTasks(10))

	m = press(t, m, "3")
	assert.Equal(t, todo.FilterDone, m.store.Filter())
	for _, task := range m.store.Visible() {
		assert.True(t, task.Completed)
	}
	assert.Len(t, m.table.Rows(), 5)

	m = press(t, m, "f")
	assert.Equal(t, todo.FilterAll, m.store.Filter())
	assert.Len(t, m.table.Rows(), 10)

	m = press(t, m, "f")
	assert.Equal(t, todo.FilterToDo, m.store.Filter())

	view := m.View()
	assert.Contains(t, view, "All (10)")
	assert.Contains(t, view, "To Do (5)")
	assert.Contains(t, view, "Done (5)")
}

func TestAddTask(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "a")
	require.True(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalAdding, m.session.Modal().Kind)
	assert.Contains(t, m.View(), "Add New Task")

	m = typeText(t, m, "buy milk")
	draft, ok := m.session.Draft()
	require.True(t, ok)
	assert.Equal(t, "buy milk", draft.Title)

	m = press(t, m, "enter")

	assert.False(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalIdle, m.session.Modal().Kind)
	require.Equal(t, 4, m.store.Len())
	added, ok := m.store.Get(4)
	require.True(t, ok)
	assert.Equal(t, "buy milk", added.Title)
	assert.False(t, added.Completed)

	require.Equal(t, 1, m.toasts.Len())
	assert.Equal(t, todo.MsgTaskAdded, m.toasts.Items()[0].Message)
	assert.Contains(t, m.View(), todo.MsgTaskAdded)
}

func TestAddTaskAsDone(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "a")
	m = typeText(t, m, "ship it")
	m = press(t, m, "tab", "right", "enter")

	added, ok := m.store.Get(4)
	require.True(t, ok)
	assert.True(t, added.Completed)
}

func TestAddTaskWithEmptyTitle(t *testing.T) {
	m := loadedModel(t, sampleTasks(1))

	m = press(t, m, "a", "enter")

	added, ok := m.store.Get(2)
	require.True(t, ok)
	assert.Empty(t, added.Title)
}

func TestAddTaskTrimsTitle(t *testing.T) {
	m := loadedModel(t, sampleTasks(1))

	m = press(t, m, "a")
	m = typeText(t, m, "  padded  ")
	draft, _ := m.session.Draft()
	assert.Equal(t, "  padded  ", draft.Title)

	m = press(t, m, "enter")

	added, ok := m.store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "padded", added.Title)
}

func TestCancelAddLeavesStore(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "a")
	m = typeText(t, m, "never mind")
	m = press(t, m, "esc")

	assert.False(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalIdle, m.session.Modal().Kind)
	assert.Equal(t, 3, m.store.Len())
	assert.Zero(t, m.toasts.Len())
}

func TestAddIgnoredWhileLoading(t *testing.T) {
	m := createTestModel(t, Options{})

	m = press(t, m, "a")

	assert.False(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalIdle, m.session.Modal().Kind)
}

func TestEditTask(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "e")
	require.True(t, m.dialogs.HasDialog())
	assert.Equal(t, todo.ModalEditing, m.session.Modal().Kind)
	assert.Contains(t, m.View(), "Edit Task")

	m = typeText(t, m, "!")
	m = press(t, m, "tab", "right", "enter")

	edited, ok := m.store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "task 1!", edited.Title)
	assert.True(t, edited.Completed)
	assert.Equal(t, 1, edited.UserID)

	require.Equal(t, 1, m.toasts.Len())
	assert.Equal(t, todo.MsgTaskUpdated, m.toasts.Items()[0].Message)
}

func TestCancelEditKeepsTask(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "e")
	m = typeText(t, m, " changed")
	m = press(t, m, "esc")

	task, ok := m.store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "task 1", task.Title)
	assert.Zero(t, m.toasts.Len())
}

func TestEditFollowsCursor(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "down", "e")

	draft, ok := m.session.Draft()
	require.True(t, ok)
	assert.Equal(t, 2, draft.ID)
}

func TestDeleteSelected(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "x")

	assert.Equal(t, 2, m.store.Len())
	assert.False(t, m.store.Has(1))
	assert.Len(t, m.table.Rows(), 2)
	require.Equal(t, 1, m.toasts.Len())
	assert.Equal(t, todo.MsgTaskDeleted, m.toasts.Items()[0].Message)
}

func TestDeleteOnEmptyTableIsNoop(t *testing.T) {
	m := loadedModel(t, nil)

	m = press(t, m, "x")

	assert.Zero(t, m.toasts.Len())
	assert.Contains(t, m.View(), "No tasks to show")
}

func TestDeleteLastRowMovesCursorUp(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "G", "x")

	assert.Equal(t, 1, m.table.Cursor())
	task, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, 2, task.ID)
}

func TestSearchNarrowsLive(t *testing.T) {
	m := loadedModel(t, []todo.Task{
		{ID: 1, Title: "buy milk"},
		{ID: 2, Title: "walk dog"},
		{ID: 3, Title: "write code", Completed: true},
	})

	m = press(t, m, "/")
	require.True(t, m.searching)
	m = typeText(t, m, "milk")

	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "buy milk", m.table.Rows()[0][1])

	m = press(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "milk", m.store.Query())
	assert.Contains(t, m.View(), "Search: milk")

	// keys act on the table again once search is closed
	m = press(t, m, "esc")
	assert.Empty(t, m.store.Query())
	assert.Len(t, m.table.Rows(), 3)
}

func TestSearchEscClears(t *testing.T) {
	m := loadedModel(t, sampleTasks(5))

	m = press(t, m, "/")
	m = typeText(t, m, "task 3")
	m = press(t, m, "esc")

	assert.False(t, m.searching)
	assert.Empty(t, m.store.Query())
	assert.Len(t, m.table.Rows(), 5)
}

func TestSearchModeSwallowsCommandKeys(t *testing.T) {
	m := loadedModel(t, sampleTasks(3))

	m = press(t, m, "/")
	m = typeText(t, m, "xa")

	assert.Equal(t, 3, m.store.Len())
	assert.False(t, m.dialogs.HasDialog())
	assert.Equal(t, "xa", m.search.Value())
}

func TestQuitSavesViewState(t *testing.T) {
	mem, err := memory.Open(memory.BackendJSON, "")
	require.NoError(t, err)
	state := memory.NewHelper(mem)

	m := createTestModel(t, Options{State: state})
	m = update(t, m, FeedLoadedMsg{Seq: 1, Result: feed.Success(sampleTasks(6))})
	m = press(t, m, "3", "down")

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)

	saved, ok, err := LoadViewState(context.Background(), state)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ViewState{Filter: "done", SelectedID: 4}, saved)

	restored := createTestModel(t, Options{State: state})
	assert.Equal(t, todo.FilterDone, restored.store.Filter())
	restored = update(t, restored, FeedLoadedMsg{Seq: 1, Result: feed.Success(sampleTasks(6))})
	task, ok := restored.selectedTask()
	require.True(t, ok)
	assert.Equal(t, 4, task.ID)
}

func TestCtrlCQuitsFromDialogAndSearch(t *testing.T) {
	for name, keys := range map[string][]string{
		"dialog": {"a"},
		"search": {"/"},
	} {
		t.Run(name, func(t *testing.T) {
			m := loadedModel(t, sampleTasks(3))
			m = press(t, m, keys...)

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestClearViewState(t *testing.T) {
	mem, err := memory.Open(memory.BackendJSON, "")
	require.NoError(t, err)
	state := memory.NewHelper(mem)
	ctx := context.Background()

	require.NoError(t, SaveViewState(ctx, state, ViewState{Filter: "todo", Query: "milk"}))
	require.NoError(t, ClearViewState(ctx, state))

	_, ok, err := LoadViewState(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultFilterFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UI.DefaultFilter = "todo"

	m := createTestModel(t, Options{Config: cfg})

	assert.Equal(t, todo.FilterToDo, m.store.Filter())
}

func TestApplyConfigRebindsKeys(t *testing.T) {
	m := loadedModel(t, sampleTasks(2))

	cfg := config.Default()
	cfg.KeyBindings["add"] = "n"
	cfg.UI.ToastSeconds = 9
	m.applyConfig(cfg)

	m = press(t, m, "a")
	assert.False(t, m.dialogs.HasDialog())

	m = press(t, m, "n")
	assert.True(t, m.dialogs.HasDialog())
}

func TestToastTickExpires(t *testing.T) {
	m := loadedModel(t, sampleTasks(2))
	m = press(t, m, "x")
	require.Equal(t, 1, m.toasts.Len())

	expires := m.toasts.Items()[0].Expires
	m = update(t, m, toastTickMsg(expires))

	assert.Zero(t, m.toasts.Len())
}

func TestViewBeforeResize(t *testing.T) {
	m := NewModel(Options{Config: config.Default()})
	assert.Equal(t, "Initializing Task List Manager...", m.View())
}
