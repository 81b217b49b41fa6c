package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpeople/internal/person"
)

// fieldsModel lists every field with a checkbox for the stored selection.
type fieldsModel struct {
	all       []person.Field
	selection person.FieldSet
	cursor    int
	flash     string
}

// toggleFieldMsg asks the root to flip and persist one field.
type toggleFieldMsg struct {
	field person.Field
}

func newFieldsModel(sel person.FieldSet) fieldsModel {
	return fieldsModel{all: person.AllFields(), selection: sel}
}

func (m fieldsModel) Update(msg tea.Msg) (fieldsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m fieldsModel) handleKey(msg tea.KeyMsg) (fieldsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, zstyle.KeyQuit):
		return m, tea.Quit
	case key.Matches(msg, zstyle.KeyBack):
		return m, navigate(viewMenu)
	case key.Matches(msg, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, zstyle.KeyDown):
		if m.cursor < len(m.all)-1 {
			m.cursor++
		}
		return m, nil
	}

	switch msg.String() {
	case " ", "x", "enter":
		f := m.all[m.cursor]
		return m, func() tea.Msg { return toggleFieldMsg{field: f} }
	case "g":
		return m, navigate(viewOutput)
	}

	return m, nil
}

func (m fieldsModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"
	for i, f := range m.all {
		box := "[ ]"
		if m.selection.Has(f) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, f)

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"
	if m.selection.Len() == 0 {
		s += "  " + zstyle.StatusWarn.Render("nothing selected, the default fields will be used") + "\n"
	} else {
		s += "  " + zstyle.MutedText.Render(fmt.Sprintf("%d of %d selected", m.selection.Len(), len(m.all))) + "\n"
	}

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
