package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/feed"
	"github.com/adriangreen/todo-tui/internal/logging"
	"github.com/adriangreen/todo-tui/internal/memory"
	"github.com/adriangreen/todo-tui/internal/todo"
	"github.com/adriangreen/todo-tui/internal/ui/dialog"
)

const appTitle = "Task List Manager"

// Form field ids shared by the add and edit dialogs.
const (
	fieldTitle  = "title"
	fieldStatus = "status"
)

var errNoLoader = errors.New("no task loader configured")

// taskCommittedMsg moves the cursor to a task after a dialog saved it.
type taskCommittedMsg struct{ ID int }

// Options wires a Model to its collaborators. Only Loader is required.
type Options struct {
	Config        *config.Config
	ConfigManager *config.ConfigManager
	Loader        Loader
	State         *memory.Helper
	Logger        *log.Logger
	Context       context.Context
}

// Model represents the TUI application state
type Model struct {
	// Services
	cfg           *config.Config
	configManager *config.ConfigManager
	loader        Loader
	state         *memory.Helper
	logger        *log.Logger

	// Task data
	session *todo.Session
	store   *todo.Store
	toasts  *Toasts

	// Components
	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	dialogs *dialog.Manager
	keyMap  KeyMap
	styles  *Styles

	// Loading
	ctx       context.Context
	cancel    context.CancelFunc
	loadSeq   int
	loadState feed.LoadState
	loadErr   error

	// View state
	showHelp      bool
	searching     bool
	pendingSelect int
	width         int
	height        int
}

// NewModel creates the TUI model. The first load starts in Init.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil && opts.ConfigManager != nil {
		cfg = opts.ConfigManager.GetConfig()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	toasts := NewToasts(cfg.UI.ToastDuration())
	store := todo.NewStore()
	notifier := todo.NotifierFunc(func(n todo.Notification) {
		toasts.Notify(n)
		logger.Info(n.Message, "level", n.Level)
	})

	keyMap := NewKeyMap(cfg)

	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(tableStyles(cfg.Theme)),
		table.WithKeyMap(tableKeyMap(keyMap)),
	)

	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	dialogs := dialog.NewManager()
	dialog.ApplyTheme(dialogs, cfg.Theme)

	m := Model{
		cfg:           cfg,
		configManager: opts.ConfigManager,
		loader:        opts.Loader,
		state:         opts.State,
		logger:        logger,
		session:       todo.NewSession(store, notifier),
		store:         store,
		toasts:        toasts,
		table:         t,
		search:        search,
		spinner:       sp,
		help:          help.New(),
		dialogs:       dialogs,
		keyMap:        keyMap,
		styles:        NewStyles(cfg.Theme),
		ctx:           ctx,
		cancel:        cancel,
		loadSeq:       1,
		loadState:     feed.Loading,
	}

	if f, err := todo.ParseFilter(cfg.UI.DefaultFilter); err == nil {
		store.SetFilter(f)
	} else if cfg.UI.DefaultFilter != "" {
		logger.Warn("ignoring default filter", "filter", cfg.UI.DefaultFilter, "err", err)
	}
	m.restoreViewState()
	return m
}

// restoreViewState applies the saved filter, query and selection. It runs
// before the first load so the initial cap applies to the restored view.
func (m *Model) restoreViewState() {
	vs, ok, err := LoadViewState(m.ctx, m.state)
	if err != nil {
		m.logger.Warn("load view state", "err", err)
		return
	}
	if !ok {
		return
	}
	if f, err := todo.ParseFilter(vs.Filter); err == nil {
		m.session.SelectFilter(f)
	}
	m.session.SetSearch(vs.Query)
	m.search.SetValue(vs.Query)
	m.pendingSelect = vs.SelectedID
}

// Init starts the first load, the spinner, the toast clock and the config
// reload listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCmd(),
		toastTick(),
		WaitForConfigReload(m.configManager),
	)
}

func (m Model) loadCmd() tea.Cmd {
	if m.loader == nil {
		seq := m.loadSeq
		return func() tea.Msg {
			return FeedLoadedMsg{Seq: seq, Result: feed.Failure(errNoLoader)}
		}
	}
	return LoadFeedCmd(m.ctx, m.loader, m.loadSeq)
}

// reload starts a new load. Results of earlier loads are dropped.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	m.loadState = feed.Loading
	m.loadErr = nil
	m.logger.Info("reloading tasks", "seq", m.loadSeq)
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// initialLimit maps the configured cap onto Store.LoadLimit: zero means the
// default, a negative value disables the cap.
func (m Model) initialLimit() int {
	switch l := m.cfg.UI.InitialLimit; {
	case l == 0:
		return todo.InitialVisibleLimit
	case l < 0:
		return 0
	default:
		return l
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dialogs.SetTerminalWidth(msg.Width)
		m.resize()
		return m, nil

	case FeedLoadedMsg:
		m.handleFeedLoaded(msg)
		return m, nil

	case spinner.TickMsg:
		if m.loadState != feed.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastTickMsg:
		m.toasts.Expire(time.Time(msg))
		return m, toastTick()

	case taskCommittedMsg:
		m.selectTask(msg.ID)
		return m, nil

	case ConfigReloadedMsg:
		if m.configManager == nil {
			return m, nil
		}
		m.applyConfig(m.configManager.GetConfig())
		return m, WaitForConfigReload(m.configManager)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleFeedLoaded(msg FeedLoadedMsg) {
	if msg.Seq != m.loadSeq {
		m.logger.Debug("dropping stale load result", "seq", msg.Seq, "current", m.loadSeq)
		return
	}

	m.loadState = feed.StateOf(msg.Result)
	if !msg.Result.OK() {
		m.loadErr = msg.Result.Err
		m.logger.Error("load tasks", "err", msg.Result.Err)
		return
	}

	m.loadErr = nil
	m.store.LoadLimit(msg.Result.Tasks, m.initialLimit())
	m.refreshRows()
	if m.pendingSelect > 0 {
		m.selectTask(m.pendingSelect)
		m.pendingSelect = 0
	}
	m.logger.Info("tasks loaded", "total", m.store.Len(), "visible", len(m.store.Visible()))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits from every mode; raw mode delivers it as a key, not SIGINT.
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	// An open dialog takes every key.
	if m.dialogs.HasDialog() {
		cmd := m.dialogs.HandleKey(msg)
		m.refreshRows()
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help, m.keyMap.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Add):
		return m.openAdd()

	case key.Matches(msg, m.keyMap.Edit):
		return m.openEdit()

	case key.Matches(msg, m.keyMap.Delete):
		m.deleteSelected()
		return m, nil

	case key.Matches(msg, m.keyMap.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, m.keyMap.Filter):
		m.selectFilter(m.store.Filter().Next())
		return m, nil

	case key.Matches(msg, m.keyMap.FilterAll):
		m.selectFilter(todo.FilterAll)
		return m, nil

	case key.Matches(msg, m.keyMap.FilterToDo):
		m.selectFilter(todo.FilterToDo)
		return m, nil

	case key.Matches(msg, m.keyMap.FilterDone):
		m.selectFilter(todo.FilterDone)
		return m, nil

	case key.Matches(msg, m.keyMap.Back):
		if m.store.Query() != "" {
			m.setQuery("")
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		// Only a failed load is retried; a loaded list may hold local edits.
		if m.loadState != feed.Failed {
			return m, nil
		}
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.saveViewState()
	m.cancel()
	return m, tea.Quit
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.setQuery("")
		m.stopSearch()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.stopSearch()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.session.SetSearch(v)
		m.refreshRows()
	}
	return m, cmd
}

func (m *Model) stopSearch() {
	m.searching = false
	m.search.Blur()
}

func (m *Model) setQuery(q string) {
	m.search.SetValue(q)
	m.session.SetSearch(q)
	m.refreshRows()
}

func (m *Model) selectFilter(f todo.Filter) {
	m.session.SelectFilter(f)
	m.refreshRows()
	m.logger.Debug("filter selected", "filter", f.Key())
}

func (m Model) openAdd() (tea.Model, tea.Cmd) {
	if !m.editable() {
		return m, nil
	}
	if err := m.session.StartAdd(); err != nil {
		m.logger.Debug("open add dialog", "err", err)
		return m, nil
	}
	form := dialog.NewFormDialog("Add New Task", []dialog.FormField{
		dialog.TextField(fieldTitle, "Task Title", "Title", ""),
		statusField(false),
	}, []string{"Cancel", "Save"}, "Save")
	return m.openForm(form)
}

func (m Model) openEdit() (tea.Model, tea.Cmd) {
	if !m.editable() {
		return m, nil
	}
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	if err := m.session.StartEdit(task); err != nil {
		m.logger.Debug("open edit dialog", "err", err)
		return m, nil
	}
	form := dialog.NewFormDialog("Edit Task", []dialog.FormField{
		dialog.TextField(fieldTitle, "Title", "Title", task.Title),
		statusField(task.Completed),
	}, []string{"Cancel", "Save"}, "Save")
	return m.openForm(form)
}

func statusField(completed bool) dialog.FormField {
	selected := 0
	if completed {
		selected = 1
	}
	return dialog.SelectField(fieldStatus, "Status", []string{todo.StatusToDo, todo.StatusDone}, selected)
}

// openForm shows a form bound to the session's draft. Edits flow into the
// draft as they are typed; Save commits the submitted values, anything else
// cancels.
func (m Model) openForm(form *dialog.FormDialog) (tea.Model, tea.Cmd) {
	session, store, logger := m.session, m.store, m.logger

	form.OnChange(func(id, value string) {
		switch id {
		case fieldTitle:
			session.SetDraftTitle(value)
		case fieldStatus:
			session.SetDraftCompleted(value == todo.StatusDone)
		}
	})

	cb := func(result dialog.DialogResult, value any) tea.Cmd {
		if result != dialog.DialogResultConfirm {
			if err := session.Cancel(); err != nil {
				logger.Warn("cancel dialog", "err", err)
			}
			return nil
		}

		// The submitted values are final; the title arrives trimmed.
		if values, ok := value.(dialog.FormValues); ok {
			session.SetDraftTitle(values[fieldTitle])
			session.SetDraftCompleted(values[fieldStatus] == todo.StatusDone)
		}
		draft, _ := session.Draft()
		adding := session.Modal().Kind == todo.ModalAdding
		if err := session.Commit(); err != nil {
			logger.Warn("commit dialog", "err", err)
			return nil
		}
		id := draft.ID
		if adding {
			// ConfirmAdd may have reallocated the id.
			if all := store.All(); len(all) > 0 {
				id = all[len(all)-1].ID
			}
		}
		logger.Debug("task saved", "id", id, "adding", adding)
		return func() tea.Msg { return taskCommittedMsg{ID: id} }
	}

	cmd, err := m.dialogs.Open(form, cb)
	if err != nil {
		logger.Warn("open dialog", "err", err)
		_ = session.Cancel()
		return m, nil
	}
	return m, cmd
}

// editable reports whether the list may be changed. Until a load succeeds
// there is nothing on screen to edit, and a retry would replace the store.
func (m Model) editable() bool {
	return m.loadState == feed.Loaded
}

func (m *Model) deleteSelected() {
	if !m.editable() {
		return
	}
	task, ok := m.selectedTask()
	if !ok {
		return
	}
	m.session.DeleteTask(task.ID)
	m.refreshRows()
	m.logger.Debug("task deleted", "id", task.ID)
}

// selectedTask returns the task under the table cursor.
func (m Model) selectedTask() (todo.Task, bool) {
	visible := m.store.Visible()
	i := m.table.Cursor()
	if i < 0 || i >= len(visible) {
		return todo.Task{}, false
	}
	return visible[i], true
}

// selectTask moves the cursor to id if it is visible.
func (m *Model) selectTask(id int) {
	for i, t := range m.store.Visible() {
		if t.ID == id {
			m.table.SetCursor(i)
			return
		}
	}
}

// refreshRows copies the derived view into the table.
func (m *Model) refreshRows() {
	rows := taskRows(m.store.Visible())
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	m.table.SetColumns(tableColumns(m.width))
	m.table.SetHeight(tableHeight(m.height, 0))
}

// applyConfig re-applies key bindings, theme and toast lifetime.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	m.keyMap = NewKeyMap(cfg)
	m.table.KeyMap = tableKeyMap(m.keyMap)
	m.table.SetStyles(tableStyles(cfg.Theme))
	m.styles = NewStyles(cfg.Theme)
	dialog.ApplyTheme(m.dialogs, cfg.Theme)
	m.toasts.SetTTL(cfg.UI.ToastDuration())
	m.logger.Info("configuration reloaded")
}

// View renders the current model state
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing " + appTitle + "..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.dialogs.HasDialog() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.dialogs.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderSearch(),
		m.renderBody(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	left := lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Title.Render(appTitle),
		"  ",
		m.renderFilters(),
	)

	toasts := m.toasts.Items()
	for len(toasts) > 0 {
		right := m.renderToasts(toasts)
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
		if gap >= 1 {
			return left + lipgloss.NewStyle().Width(gap).Render("") + right
		}
		toasts = toasts[1:]
	}
	return left
}

func (m Model) renderFilters() string {
	counts := m.store.Counts()
	active := m.store.Filter()
	parts := make([]string, 0, len(todo.Filters)*2)
	for i, f := range todo.Filters {
		if i > 0 {
			parts = append(parts, m.styles.FilterSep.Render(" | "))
		}
		label := fmt.Sprintf("%s (%d)", f, counts.For(f))
		if f == active {
			parts = append(parts, m.styles.FilterOn.Render(label))
		} else {
			parts = append(parts, m.styles.FilterOff.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderToasts(toasts []Toast) string {
	parts := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		parts = append(parts, m.styles.ToastStyle(toasts[i].Level).Render(toasts[i].Message))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderSearch() string {
	if m.searching {
		return m.styles.SearchLabel.Render("Search: ") + m.search.View()
	}
	if q := m.store.Query(); q != "" {
		return m.styles.SearchLabel.Render("Search: ") + q +
			m.styles.Subtle.Render(fmt.Sprintf("  (%s to clear)", m.keyMap.Back.Help().Key))
	}
	return m.styles.Subtle.Render(fmt.Sprintf("Press %s to search", m.keyMap.Search.Help().Key))
}

func (m Model) renderBody() string {
	switch m.loadState {
	case feed.Loading:
		return m.spinner.View() + " Loading tasks..."
	case feed.Failed:
		return m.styles.Error.Render(fmt.Sprintf("Failed to load tasks: %v", m.loadErr)) + "\n" +
			m.styles.Subtle.Render(fmt.Sprintf("Press %s to retry", m.keyMap.Refresh.Help().Key))
	}

	body := m.styles.Table.Render(m.table.View())
	if len(m.store.Visible()) == 0 {
		body += "\n" + m.styles.Subtle.Render("No tasks to show")
	}
	return body
}

func (m Model) renderStatusBar() string {
	left := m.help.View(m.keyMap)
	right := fmt.Sprintf("%d shown of %d", len(m.store.Visible()), m.store.Len())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return m.styles.StatusBar.Render(left)
	}
	return m.styles.StatusBar.Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
