package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idrissbado/taskhub/internal/apiclient"
	"github.com/idrissbado/taskhub/internal/domain/task"
	"github.com/idrissbado/taskhub/internal/domain/user"
)

const requestTimeout = 10 * time.Second

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	highStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	errorStyle    = lipgloss.NewStyle().Bold(true)
)

// RunTUI starts the terminal client against an already configured
// API client.
func RunTUI(ctx context.Context, client *apiclient.Client) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newModel(client)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}

type mode int

const (
	modeAuth mode = iota
	modeDashboard
)

// entry names the text box currently captured by key input. entryNone
// means keys act as dashboard commands.
type entry int

const (
	entryNone entry = iota
	entrySearch
	entryAdd
	entryEdit
)

type authField int

const (
	fieldName authField = iota
	fieldEmail
	fieldPassword
)

type model struct {
	client *apiclient.Client

	mode mode

	// auth form
	registering bool
	fields      [3]string
	field       authField

	// dashboard
	me      user.User
	tasks   []task.Task
	view    View
	cursor  int
	entry   entry
	input   string
	editID  string
	loading bool
	status  string
	failed  bool
}

type loggedInMsg struct{ user user.User }

type tasksMsg struct{ tasks []task.Task }

type taskSavedMsg struct{ task task.Task }

type taskDeletedMsg struct{ id string }

type errMsg struct{ err error }

// sessionCheckMsg reports the startup CurrentUser probe. A failure is
// not an error, it just means the auth form comes first.
type sessionCheckMsg struct {
	user user.User
	ok   bool
}

func newModel(client *apiclient.Client) *model {
	return &model{client: client, mode: modeAuth, field: fieldEmail}
}

func (m *model) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		u, err := client.CurrentUser(ctx)
		if err != nil {
			return sessionCheckMsg{}
		}
		return sessionCheckMsg{user: u, ok: true}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeAuth {
			return m.updateAuth(msg)
		}
		return m.updateDashboard(msg)

	case sessionCheckMsg:
		if msg.ok && m.mode == modeAuth {
			m.me = msg.user
			m.mode = modeDashboard
			m.loading = true
			return m, m.loadTasks()
		}
		return m, nil

	case loggedInMsg:
		m.me = msg.user
		m.mode = modeDashboard
		m.loading = true
		m.setStatus("Signed in as " + msg.user.Email)
		return m, m.loadTasks()

	case tasksMsg:
		m.loading = false
		m.tasks = msg.tasks
		m.clampCursor()
		return m, nil

	case taskSavedMsg:
		m.loading = false
		m.applySaved(msg.task)
		return m, nil

	case taskDeletedMsg:
		m.loading = false
		m.removeTask(msg.id)
		m.setStatus("Task deleted")
		return m, nil

	case errMsg:
		m.loading = false
		m.setError(msg.err)
		return m, nil
	}

	return m, nil
}

func (m *model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.field = m.nextField(1)
		return m, nil
	case "shift+tab", "up":
		m.field = m.nextField(-1)
		return m, nil
	case "ctrl+r":
		m.registering = !m.registering
		if !m.registering && m.field == fieldName {
			m.field = fieldEmail
		}
		return m, nil
	case "enter":
		return m, m.submitAuth()
	case "backspace":
		m.fields[m.field] = trimLastRune(m.fields[m.field])
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.fields[m.field] += string(msg.Runes)
	case tea.KeySpace:
		m.fields[m.field] += " "
	}
	return m, nil
}

func (m *model) nextField(step int) authField {
	first := fieldEmail
	if m.registering {
		first = fieldName
	}

	f := int(m.field) + step
	if f < int(first) {
		return fieldPassword
	}
	if f > int(fieldPassword) {
		return first
	}
	return authField(f)
}

func (m *model) submitAuth() tea.Cmd {
	name := strings.TrimSpace(m.fields[fieldName])
	email := strings.TrimSpace(m.fields[fieldEmail])
	password := m.fields[fieldPassword]
	registering := m.registering

	if email == "" || password == "" {
		m.setStatus("Email and password are required")
		return nil
	}

	m.loading = true
	client := m.client

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			u   user.User
			err error
		)
		if registering {
			u, err = client.Register(ctx, name, email, password)
		} else {
			u, err = client.Login(ctx, email, password)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return loggedInMsg{user: u}
	}
}

func (m *model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entry != entryNone {
		return m.updateEntry(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil
	case "f":
		m.view.Filter = NextFilter(m.view.Filter)
		m.clampCursor()
		return m, nil
	case "s":
		m.view.Sort = NextSort(m.view.Sort)
		m.clampCursor()
		return m, nil
	case "/":
		m.entry = entrySearch
		m.input = m.view.Search
		return m, nil
	case "a":
		m.entry = entryAdd
		m.input = ""
		return m, nil
	case "e":
		if t, ok := m.selected(); ok {
			m.entry = entryEdit
			m.editID = t.ID
			m.input = t.Title
		}
		return m, nil
	case "enter", " ":
		if t, ok := m.selected(); ok {
			return m, m.toggleComplete(t)
		}
		return m, nil
	case "p":
		if t, ok := m.selected(); ok {
			return m, m.cyclePriority(t)
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.deleteTask(t.ID)
		}
		return m, nil
	case "r":
		m.loading = true
		return m, m.loadTasks()
	}

	return m, nil
}

func (m *model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.entry = entryNone
		m.input = ""
		return m, nil
	case "backspace":
		m.input = trimLastRune(m.input)
		if m.entry == entrySearch {
			m.view.Search = m.input
			m.clampCursor()
		}
		return m, nil
	case "enter":
		return m.commitEntry()
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeySpace:
		m.input += " "
	default:
		return m, nil
	}
	if m.entry == entrySearch {
		m.view.Search = m.input
		m.clampCursor()
	}
	return m, nil
}

func (m *model) commitEntry() (tea.Model, tea.Cmd) {
	entry := m.entry
	text := strings.TrimSpace(m.input)
	m.entry = entryNone
	m.input = ""

	switch entry {
	case entrySearch:
		m.view.Search = text
		m.clampCursor()
		return m, nil
	case entryAdd:
		if text == "" {
			return m, nil
		}
		return m, m.createTask(text)
	case entryEdit:
		if text == "" {
			return m, nil
		}
		return m, m.renameTask(m.editID, text)
	}
	return m, nil
}

func (m *model) loadTasks() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		tasks, err := client.ListTasks(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return tasksMsg{tasks: tasks}
	}
}

func (m *model) createTask(title string) tea.Cmd {
	m.loading = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		created, err := client.CreateTask(ctx, task.CreateTaskRequest{Title: title})
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: created}
	}
}

// toggleComplete sends the flip to the server and leaves local state
// untouched until the updated record comes back. The list stays
// truthful when the request fails.
func (m *model) toggleComplete(t task.Task) tea.Cmd {
	m.loading = true
	client := m.client
	next := !t.Completed
	id := t.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, err := client.UpdateTask(ctx, id, task.UpdateTaskRequest{Completed: &next})
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: updated}
	}
}

func (m *model) cyclePriority(t task.Task) tea.Cmd {
	m.loading = true
	client := m.client
	next := NextPriority(t.Priority)
	id := t.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, err := client.UpdateTask(ctx, id, task.UpdateTaskRequest{Priority: &next})
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: updated}
	}
}

func (m *model) renameTask(id, title string) tea.Cmd {
	m.loading = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, err := client.UpdateTask(ctx, id, task.UpdateTaskRequest{Title: &title})
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: updated}
	}
}

func (m *model) deleteTask(id string) tea.Cmd {
	m.loading = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteTask(ctx, id); err != nil {
			return errMsg{err: err}
		}
		return taskDeletedMsg{id: id}
	}
}

// applySaved merges a server-acknowledged record into the local list.
// Unknown IDs are new tasks and go to the front to match the server's
// newest-first ordering.
func (m *model) applySaved(t task.Task) {
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			m.tasks[i] = t
			m.setStatus("Task updated")
			return
		}
	}
	m.tasks = append([]task.Task{t}, m.tasks...)
	m.setStatus("Task added")
	m.clampCursor()
}

func (m *model) removeTask(id string) {
	out := m.tasks[:0]
	for _, t := range m.tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	m.tasks = out
	m.clampCursor()
}

func (m *model) visible() []task.Task {
	return ApplyView(m.tasks, m.view)
}

func (m *model) selected() (task.Task, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

func (m *model) View() string {
	if m.mode == modeAuth {
		return m.viewAuth()
	}
	return m.viewDashboard()
}

func (m *model) viewAuth() string {
	var b strings.Builder

	action := "Sign in"
	if m.registering {
		action = "Create account"
	}
	b.WriteString(titleStyle.Render("TaskHub | "+action) + "\n\n")

	if m.registering {
		b.WriteString(renderField("Name", m.fields[fieldName], m.field == fieldName, false))
	}
	b.WriteString(renderField("Email", m.fields[fieldEmail], m.field == fieldEmail, false))
	b.WriteString(renderField("Password", m.fields[fieldPassword], m.field == fieldPassword, true))

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("enter submit | tab next field | ctrl+r switch to register/login | esc quit") + "\n")
	m.writeStatus(&b)
	return b.String()
}

func renderField(label, value string, active, masked bool) string {
	shown := value
	if masked {
		shown = strings.Repeat("*", len([]rune(value)))
	}

	marker := "  "
	if active {
		marker = "> "
		shown += "_"
	}
	return fmt.Sprintf("%s%-10s %s\n", marker, label+":", shown)
}

func (m *model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TaskHub | "+m.me.Name) + "\n")

	stats := Stats(m.tasks)
	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"%d tasks | %d done (%d%%) | %d high priority | filter: %s | sort: %s",
		stats.Total, stats.Completed, stats.CompletionRate, stats.HighPriority,
		displayFilter(m.view.Filter), displaySort(m.view.Sort),
	)) + "\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString("  Nothing to show.\n")
	}
	for i, t := range visible {
		b.WriteString(renderTask(t, i == m.cursor))
	}

	b.WriteString("\n")
	switch m.entry {
	case entrySearch:
		b.WriteString("Search: " + m.input + "_\n")
	case entryAdd:
		b.WriteString("New task: " + m.input + "_\n")
	case entryEdit:
		b.WriteString("Title: " + m.input + "_\n")
	default:
		b.WriteString(headerStyle.Render("a add | enter toggle | e edit | p priority | d delete | f filter | s sort | / search | r refresh | q quit") + "\n")
	}

	m.writeStatus(&b)
	return b.String()
}

func renderTask(t task.Task, selected bool) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	line := fmt.Sprintf("%s %-6s %s", check, t.Priority, t.Title)
	if t.DueDate != nil {
		line += " (due " + t.DueDate.Format("2006-01-02") + ")"
	}

	switch {
	case selected:
		line = selectedStyle.Render(line)
	case t.Completed:
		line = doneStyle.Render(line)
	case t.Priority == task.PriorityHigh:
		line = highStyle.Render(line)
	}
	return "  " + line + "\n"
}

func (m *model) writeStatus(b *strings.Builder) {
	if m.loading {
		b.WriteString(statusStyle.Render("Working...") + "\n")
		return
	}
	if m.status == "" {
		return
	}
	if m.failed {
		b.WriteString(errorStyle.Render(m.status) + "\n")
		return
	}
	b.WriteString(statusStyle.Render(m.status) + "\n")
}

func displayFilter(f Filter) string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}

func displaySort(s Sort) string {
	if s == "" {
		return string(SortNone)
	}
	return string(s)
}

func trimLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}
