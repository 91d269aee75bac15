package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jward/contacts"
)

// personForm edits a name and a birth date. editing is nil when adding.
type personForm struct {
	inputs  []textinput.Model // 0: name, 1: birth
	focus   int
	editing *contacts.Record
	err     error
}

func newPersonForm(editing *contacts.Record, birth contacts.EpochDay) personForm {
	f := personForm{inputs: make([]textinput.Model, 2), editing: editing}
	for i := range f.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.Width = 32
		switch i {
		case 0:
			t.Prompt = "Name:  "
			t.Placeholder = "Ada Lovelace"
			t.CharLimit = 128
		case 1:
			t.Prompt = "Birth: "
			t.Placeholder = "YYYY-MM-DD"
			t.CharLimit = 10
		}
		f.inputs[i] = t
	}
	if editing != nil {
		f.inputs[0].SetValue(editing.Name)
		birth = editing.Birth
	}
	f.inputs[1].SetValue(birth.String())
	f.inputs[0].Focus()
	f.inputs[0].TextStyle = focusedStyle
	return f
}

// values validates the inputs.
func (f personForm) values() (string, contacts.EpochDay, error) {
	name := strings.TrimSpace(f.inputs[0].Value())
	if name == "" {
		return "", 0, fmt.Errorf("name cannot be empty")
	}
	birth, err := contacts.ParseEpochDay(strings.TrimSpace(f.inputs[1].Value()))
	if err != nil {
		return "", 0, fmt.Errorf("birth must be YYYY-MM-DD")
	}
	return name, birth, nil
}

// cycle moves focus by delta, wrapping around.
func (f personForm) cycle(delta int) (personForm, tea.Cmd) {
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
			f.inputs[i].TextStyle = focusedStyle
			continue
		}
		f.inputs[i].Blur()
		f.inputs[i].TextStyle = lipgloss.NewStyle()
	}
	return f, cmd
}

func (f personForm) update(msg tea.Msg) (personForm, tea.Cmd) {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return f, tea.Batch(cmds...)
}

func (f personForm) view() string {
	var b strings.Builder
	if f.editing != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Edit #%d", f.editing.ID)))
	} else {
		b.WriteString(titleStyle.Render("Add person"))
	}
	b.WriteString("\n")
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	return b.String()
}
