package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/sink"
)

type optionChoice int

const (
	optionCount optionChoice = iota
	optionFormat
	optionBack
)

var optionItems = []string{
	"count",
	"format",
	"back",
}

// optionsModel edits the record count and output format.
type optionsModel struct {
	cursor int
	count  int
	format render.Format

	flash    string
	flashErr bool
}

// saveOptionsMsg asks the root to persist count and format.
type saveOptionsMsg struct {
	count  int
	format render.Format
}

func newOptionsModel(count int, format render.Format) optionsModel {
	return optionsModel{count: prefs.ClampCount(count), format: format}
}

func (m optionsModel) Update(msg tea.Msg) (optionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		m.flashErr = false
		return m, nil
	}

	return m, nil
}

func (m optionsModel) handleKey(msg tea.KeyMsg) (optionsModel, tea.Cmd) {
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
		if m.cursor < len(optionItems)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, zstyle.KeyEnter):
		if optionChoice(m.cursor) == optionBack {
			return m, navigate(viewMenu)
		}
		return m, m.save()
	}

	switch msg.String() {
	case "l", "right", "+":
		return m.change(1), nil
	case "h", "left", "-":
		return m.change(-1), nil
	}

	return m, nil
}

// change steps the value under the cursor by delta.
func (m optionsModel) change(delta int) optionsModel {
	switch optionChoice(m.cursor) {
	case optionCount:
		m.count = prefs.ClampCount(m.count + delta)
	case optionFormat:
		if delta < 0 {
			m.format = m.format.Prev()
		} else {
			m.format = m.format.Next()
		}
	}
	return m
}

func (m *optionsModel) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m optionsModel) save() tea.Cmd {
	count, format := m.count, m.format
	return func() tea.Msg { return saveOptionsMsg{count: count, format: format} }
}

func (m optionsModel) valueFor(choice optionChoice) string {
	switch choice {
	case optionCount:
		return fmt.Sprintf("< %d >", m.count)
	case optionFormat:
		return fmt.Sprintf("< %s >", m.format)
	}
	return ""
}

func (m optionsModel) View() string {
	s := "\n"

	for i, item := range optionItems {
		line := zstyle.RenderMenuItem(zstyle.MenuItem{Label: item, Active: m.cursor == i}, accent)
		if v := m.valueFor(optionChoice(i)); v != "" {
			line += " " + zstyle.Highlight.Render(v)
		}
		s += line + "\n"
	}

	s += "\n  " + zstyle.MutedText.Render(fmt.Sprintf("count %d-%d, saved as %s", person.MinCount, person.MaxCount, sink.FileName(m.format))) + "\n"

	// always reserve a line for flash to prevent layout shift
	switch {
	case m.flash == "":
		s += "\n"
	case m.flashErr:
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	default:
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	}

	return s
}
