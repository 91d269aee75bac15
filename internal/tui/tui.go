// Package tui is the interactive list of contacts: a table with add, edit
// and delete. Every change goes to the worker as a fire-and-forget request
// and the table redraws from the snapshot the worker publishes afterwards.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jward/contacts"
)

// Backend is the part of *contacts.Manager the list needs.
type Backend interface {
	Add(name string, birth contacts.EpochDay) error
	Edit(rec contacts.Record) error
	Remove(rec contacts.Record) error
	Snapshots() <-chan contacts.Snapshot
}

var _ Backend = (*contacts.Manager)(nil)

type viewState int

const (
	listView viewState = iota
	formView
	confirmDeleteView
)

// snapshotMsg carries a published snapshot. closed is set once the worker
// has stopped.
type snapshotMsg struct {
	snap   contacts.Snapshot
	closed bool
}

// Model is the root bubbletea model.
type Model struct {
	backend Backend
	now     func() time.Time

	state    viewState
	people   []contacts.Record
	table    table.Model
	form     personForm
	toDelete contacts.Record
	err      error
	loaded   bool
}

// New returns the list model for b.
func New(b Backend) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 32},
			{Title: "Birth", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return Model{backend: b, now: time.Now, table: t}
}

// Run shows the list until the user quits.
func Run(b Backend) error {
	_, err := tea.NewProgram(New(b), tea.WithAltScreen()).Run()
	return err
}

func waitForSnapshot(ch <-chan contacts.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		return snapshotMsg{snap: snap, closed: !ok}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.backend.Snapshots())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(snapshotMsg); ok {
		if msg.closed {
			return m, tea.Quit
		}
		m.applySnapshot(msg.snap)
		return m, waitForSnapshot(m.backend.Snapshots())
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case formView:
		return m.updateForm(msg)
	case confirmDeleteView:
		return m.updateConfirm(msg)
	default:
		return m.updateList(msg)
	}
}

func (m *Model) applySnapshot(snap contacts.Snapshot) {
	m.loaded = true
	m.err = snap.Err
	if snap.Err != nil && snap.Records == nil {
		return
	}
	m.people = snap.Records
	rows := make([]table.Row, len(m.people))
	for i, p := range m.people {
		rows[i] = table.Row{strconv.FormatInt(p.ID, 10), p.Name, p.Birth.String()}
	}
	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

// selected returns the highlighted person.
func (m Model) selected() (contacts.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.people) {
		return contacts.Record{}, false
	}
	return m.people[i], true
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			return m, tea.Quit
		case "a", "+":
			m.form = newPersonForm(nil, contacts.EpochDayOf(m.now()))
			m.state = formView
			return m, nil
		case "e", "enter":
			if rec, ok := m.selected(); ok {
				m.form = newPersonForm(&rec, rec.Birth)
				m.state = formView
			}
			return m, nil
		case "d", "delete", "x":
			if rec, ok := m.selected(); ok {
				m.toDelete = rec
				m.state = confirmDeleteView
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.state = listView
			return m, nil
		case "tab", "down":
			var cmd tea.Cmd
			m.form, cmd = m.form.cycle(1)
			return m, cmd
		case "shift+tab", "up":
			var cmd tea.Cmd
			m.form, cmd = m.form.cycle(-1)
			return m, cmd
		case "enter":
			name, birth, err := m.form.values()
			if err != nil {
				m.form.err = err
				return m, nil
			}
			if m.form.editing != nil {
				err = m.backend.Edit(m.form.editing.WithName(name).WithBirth(birth))
			} else {
				err = m.backend.Add(name, birth)
			}
			if err != nil {
				m.form.err = err
				return m, nil
			}
			m.state = listView
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		if err := m.backend.Remove(m.toDelete); err != nil {
			m.err = err
		}
		m.state = listView
	case "n", "N", "esc", "q":
		m.state = listView
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	switch m.state {
	case formView:
		b.WriteString(m.form.view())
	case confirmDeleteView:
		b.WriteString(dangerStyle.Render(fmt.Sprintf("Delete %s (#%d)? [y/N]", m.toDelete.Name, m.toDelete.ID)))
	default:
		b.WriteString(titleStyle.Render("Contacts"))
		b.WriteString("\n")
		switch {
		case !m.loaded:
			b.WriteString(helpStyle.Render("Opening database…"))
		case len(m.people) == 0:
			b.WriteString(helpStyle.Render("No contacts yet. Press a to add one."))
		default:
			b.WriteString(tableBorder.Render(m.table.View()))
		}
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("a: add • enter: edit • d: delete • q: quit"))
	}
	return docStyle.Render(b.String())
}
