package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/user/catalogs/internal/catalog"
	"github.com/user/catalogs/internal/pipeline"
	"github.com/user/catalogs/internal/session"
	"github.com/user/catalogs/internal/sources"
	"github.com/user/catalogs/internal/undo"
)

type model struct {
	pipes       map[catalog.Kind]*pipeline.Pipeline
	kind        catalog.Kind
	board       *board
	searchInput textinput.Model
	radiusInput textinput.Model
	list        list.Model
	saved       map[catalog.Kind]bool // result set currently shows saved items
	detail      *catalog.Item
	confirm     *catalog.Item
	width       int
	height      int
	searching   bool
	editRadius  bool
	showHelp    bool
	status      string
}

// board receives result set notifications. It is shared by every copy of
// the model, so observers registered once keep feeding the current one.
type board struct {
	items  map[catalog.Kind][]list.Item
	dirty  bool
	cancel []func()
}

func (b *board) close() {
	for _, c := range b.cancel {
		c()
	}
}

func initialModel(pipes map[catalog.Kind]*pipeline.Pipeline, defaultRadius string) model {
	ti := textinput.New()
	ti.Placeholder = "Search movies by title..."
	ti.CharLimit = 256
	ti.Width = 50

	ri := textinput.New()
	ri.Placeholder = "radius"
	ri.CharLimit = 6
	ri.Width = 8
	ri.SetValue(defaultRadius)

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	b := &board{items: make(map[catalog.Kind][]list.Item)}
	for kind, p := range pipes {
		kind := kind
		b.cancel = append(b.cancel, p.Results().Subscribe(func(items []catalog.Item) {
			b.items[kind] = toListItems(items)
			b.dirty = true
		}))
		b.items[kind] = toListItems(p.Results().Items())
	}

	m := model{
		pipes:       pipes,
		board:       b,
		searchInput: ti,
		radiusInput: ri,
		list:        l,
		saved:       make(map[catalog.Kind]bool),
	}
	m.switchTo(catalog.Movie)
	return m
}

type searchMsg struct {
	kind  catalog.Kind
	out   session.Outcome
	err   error
	saved bool
}

type saveMsg struct {
	kind  catalog.Kind
	saved pipeline.Saved
	err   error
}

type removeMsg struct {
	kind    catalog.Kind
	pending undo.Pending
	err     error
}

type undoMsg struct {
	kind catalog.Kind
	item catalog.Item
	err  error
}

type undoTimeoutMsg struct {
	kind catalog.Kind
	id   uuid.UUID
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) pipe() *pipeline.Pipeline {
	return m.pipes[m.kind]
}

// switchTo makes kind the active catalog and restores its last query.
func (m *model) switchTo(kind catalog.Kind) {
	m.kind = kind
	m.detail = nil
	m.confirm = nil

	query, radius := m.pipe().LastSearch()
	m.searchInput.SetValue(query)
	if kind == catalog.Event && radius != "" {
		m.radiusInput.SetValue(radius)
	}
	m.searchInput.Placeholder = placeholder(kind)
	m.list.SetItems(m.board.items[kind])
	m.refreshTitle()
}

func (m *model) refreshTitle() {
	title := catalog.SchemaFor(m.kind).Label
	if m.saved[m.kind] {
		title += " (saved)"
	}
	m.list.Title = title
}

func placeholder(kind catalog.Kind) string {
	switch kind {
	case catalog.Photo:
		return "Search photos..."
	case catalog.Event:
		return "Search events by city..."
	default:
		return "Search movies by title..."
	}
}

func (m model) doSearch(query, radius string) tea.Cmd {
	p, kind := m.pipe(), m.kind
	return func() tea.Msg {
		out, err := p.Search(context.Background(), query, sources.Options{Radius: radius})
		return searchMsg{kind: kind, out: out, err: err}
	}
}

func (m model) loadSaved() tea.Cmd {
	p, kind := m.pipe(), m.kind
	return func() tea.Msg {
		out, err := p.LoadSaved(context.Background())
		return searchMsg{kind: kind, out: out, err: err, saved: true}
	}
}

func (m model) doSave(item catalog.Item) tea.Cmd {
	p, kind := m.pipe(), m.kind
	return func() tea.Msg {
		saved, err := p.Save(context.Background(), item, true)
		return saveMsg{kind: kind, saved: saved, err: err}
	}
}

func (m model) doRemove(item catalog.Item) tea.Cmd {
	p, kind := m.pipe(), m.kind
	return func() tea.Msg {
		pending, err := p.Remove(context.Background(), item)
		return removeMsg{kind: kind, pending: pending, err: err}
	}
}

func (m model) doUndo(id uuid.UUID) tea.Cmd {
	p, kind := m.pipe(), m.kind
	return func() tea.Msg {
		item, err := p.Undo(context.Background(), id)
		return undoMsg{kind: kind, item: item, err: err}
	}
}

func (m model) selected() (catalog.Item, bool) {
	if m.detail != nil {
		return *m.detail, true
	}
	if it, ok := m.list.SelectedItem().(catalogItem); ok {
		return it.item, true
	}
	return catalog.Item{}, false
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			next.syncList()
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-7)
		m.searchInput.Width = msg.Width - 30

	case searchMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			break
		}
		if !m.pipes[msg.kind].Apply(msg.out) {
			break
		}
		m.saved[msg.kind] = msg.saved
		m.refreshTitle()
		m.status = summarize(msg.out)

	case saveMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			break
		}
		m.status = fmt.Sprintf("Saved %q.", msg.saved.Item.Title)
		if msg.saved.ImageErr != nil {
			m.status += " Image could not be saved."
		} else if msg.saved.ImagePath != "" {
			m.status += " Image written to " + msg.saved.ImagePath
		}
		if m.saved[msg.kind] && msg.kind == m.kind {
			return m, m.loadSaved()
		}

	case removeMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			break
		}
		m.status = ""
		window := m.pipes[msg.kind].UndoWindow()
		id, kind := msg.pending.ID, msg.kind
		cmds = append(cmds, tea.Tick(window, func(time.Time) tea.Msg {
			return undoTimeoutMsg{kind: kind, id: id}
		}))
		if m.saved[msg.kind] && msg.kind == m.kind {
			cmds = append(cmds, m.loadSaved())
		}
		return m, tea.Batch(cmds...)

	case undoMsg:
		if msg.err != nil {
			if errors.Is(msg.err, undo.ErrUndoExpired) {
				m.status = "Too late to undo."
			} else {
				m.status = describeError(msg.err)
			}
			break
		}
		m.status = fmt.Sprintf("Restored %q.", msg.item.Title)
		if m.saved[msg.kind] && msg.kind == m.kind {
			return m, m.loadSaved()
		}

	case undoTimeoutMsg:
		m.pipes[msg.kind].DismissUndo(msg.id)
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if m.editRadius {
		var cmd tea.Cmd
		m.radiusInput, cmd = m.radiusInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if m.detail == nil {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncList()
	return m, tea.Batch(cmds...)
}

// syncList copies pending result set changes into the list widget.
func (m *model) syncList() {
	if !m.board.dirty {
		return
	}
	m.board.dirty = false
	m.list.SetItems(m.board.items[m.kind])
}

// handleKey reports handled=false for keys that should fall through to the
// focused widget.
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit, true
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil, true
	}

	if m.confirm != nil {
		item := *m.confirm
		m.confirm = nil
		if key == "y" {
			m.detail = nil
			return m, m.doRemove(item), true
		}
		m.status = ""
		return m, nil, true
	}

	if m.searching {
		switch key {
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			return m, nil, true
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				m.status = "Type something to search for."
				return m, nil, true
			}
			m.status = "Searching..."
			return m, m.doSearch(query, m.radius()), true
		}
		return m, nil, false
	}

	if m.editRadius {
		switch key {
		case "esc", "enter":
			m.editRadius = false
			m.radiusInput.Blur()
			return m, nil, true
		}
		return m, nil, false
	}

	switch key {
	case "q":
		if m.detail != nil {
			m.detail = nil
			return m, nil, true
		}
		return m, tea.Quit, true
	case "esc":
		m.detail = nil
		return m, nil, true
	case "/":
		m.detail = nil
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink, true
	case "r":
		if m.kind == catalog.Event {
			m.editRadius = true
			m.radiusInput.Focus()
			return m, textinput.Blink, true
		}
	case "?":
		m.showHelp = true
		return m, nil, true
	case "1", "2", "3":
		m.switchTo(catalog.Kinds[key[0]-'1'])
		return m, nil, true
	case "enter":
		if item, ok := m.selected(); ok && m.detail == nil {
			m.detail = &item
		}
		return m, nil, true
	case "s":
		m.detail = nil
		return m, m.loadSaved(), true
	case "w":
		if item, ok := m.selected(); ok {
			m.status = "Saving..."
			return m, m.doSave(item), true
		}
		return m, nil, true
	case "d":
		item, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		if !item.HasIdentity() {
			m.status = "Only saved items can be deleted. Press s to show them."
			return m, nil, true
		}
		m.confirm = &item
		m.status = "Do you want to delete? [y/n]"
		return m, nil, true
	case "u":
		if p, ok := m.pipe().PendingUndo(); ok {
			return m, m.doUndo(p.ID), true
		}
		m.status = "Nothing to undo."
		return m, nil, true
	case "o":
		if item, ok := m.selected(); ok {
			url := item.LinkURL
			if url == "" {
				url = item.ImageURL
			}
			openBrowser(url)
		}
		return m, nil, true
	case "j", "down":
		m.list.CursorDown()
		return m, nil, true
	case "k", "up":
		m.list.CursorUp()
		return m, nil, true
	case "g":
		m.list.Select(0)
		return m, nil, true
	case "G":
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m model) radius() string {
	if m.kind != catalog.Event {
		return ""
	}
	return strings.TrimSpace(m.radiusInput.Value())
}

func summarize(out session.Outcome) string {
	if out.Saved {
		if len(out.Items) == 0 {
			return "No saved items."
		}
		return fmt.Sprintf("%d saved items.", len(out.Items))
	}
	s := fmt.Sprintf("%d results for %q.", len(out.Items), out.Query)
	if out.Skipped > 0 {
		s += fmt.Sprintf(" %d incomplete records skipped.", out.Skipped)
	}
	return s
}

func describeError(err error) string {
	var fe *catalog.FetchError
	var se *catalog.StoreError
	switch {
	case errors.Is(err, catalog.ErrEmptyQuery):
		return "Type something to search for."
	case errors.As(err, &fe):
		return "Search failed: " + fe.Message
	case errors.As(err, &se):
		return "Storage error: " + se.Err.Error()
	case errors.Is(err, undo.ErrNoPendingUndo):
		return "Nothing to undo."
	}
	return "Error: " + err.Error()
}

func openBrowser(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the TUI application
func Run(c *pipeline.Container) error {
	pipes := make(map[catalog.Kind]*pipeline.Pipeline, len(catalog.Kinds))
	for _, kind := range catalog.Kinds {
		pipes[kind] = c.Pipeline(kind)
	}

	m := initialModel(pipes, c.Config.Catalogs.Event.Radius)
	defer m.board.close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
