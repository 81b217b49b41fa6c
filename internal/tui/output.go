package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/sink"
)

const defaultOutputHeight = 20

// outputModel shows the formatted people with copy and save actions.
type outputModel struct {
	format     render.Format
	saveDir    string
	count      int
	output     string
	err        string
	generating bool

	scroll int
	height int
	// width caps displayed line width; zero leaves lines whole
	width int

	// saving is set while the save path prompt is open
	saving bool
	path   textinput.Model

	flash    string
	flashErr bool
}

// generateMsg asks the root to run a new generate cycle.
type generateMsg struct{}

// generatedMsg carries the result of a generate cycle.
type generatedMsg struct {
	output string
	err    error
	count  int
}

// cycleFormatMsg asks the root to show the same people in the next format.
type cycleFormatMsg struct{}

// copyOutputMsg asks the root to copy the output to the clipboard.
type copyOutputMsg struct{}

// saveOutputMsg asks the root to save the output to path.
type saveOutputMsg struct {
	path string
}

// savedMsg reports where the output was written.
type savedMsg struct {
	path string
	err  error
}

// flashMsg clears the flash after a timeout.
type flashMsg struct {
	seq int
}

func newOutputModel(format render.Format, saveDir string) outputModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60
	ti.Prompt = "save to: "

	return outputModel{
		format:  format,
		saveDir: saveDir,
		height:  defaultOutputHeight,
		path:    ti,
	}
}

func (m outputModel) Update(msg tea.Msg) (outputModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.saving {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)

	case generatedMsg:
		m.generating = false
		m.count = msg.count
		m.scroll = 0
		if msg.err != nil {
			m.output = ""
			m.err = msg.err.Error()
			return m, nil
		}
		m.output = msg.output
		m.err = ""
		return m, nil

	case flashMsg:
		m.flash = ""
		m.flashErr = false
		return m, nil
	}

	if m.saving {
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m outputModel) handleKey(msg tea.KeyMsg) (outputModel, tea.Cmd) {
	switch {
	case key.Matches(msg, zstyle.KeyQuit):
		return m, tea.Quit
	case key.Matches(msg, zstyle.KeyBack):
		return m, navigate(viewMenu)
	case key.Matches(msg, zstyle.KeyUp):
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil
	case key.Matches(msg, zstyle.KeyDown):
		if m.scroll < m.maxScroll() {
			m.scroll++
		}
		return m, nil
	}

	if m.generating {
		return m, nil
	}

	switch msg.String() {
	case "n":
		return m, func() tea.Msg { return generateMsg{} }
	case "f":
		return m, func() tea.Msg { return cycleFormatMsg{} }
	case "c":
		if m.output == "" {
			return m, nil
		}
		return m, func() tea.Msg { return copyOutputMsg{} }
	case "s":
		if m.output == "" {
			return m, nil
		}
		return m.openPrompt()
	}

	return m, nil
}

// openPrompt asks for a save path, suggesting the file name in the save dir.
func (m outputModel) openPrompt() (outputModel, tea.Cmd) {
	m.saving = true
	m.path.SetValue(filepath.Join(m.saveDir, sink.FileName(m.format)))
	m.path.CursorEnd()
	m.path.Focus()
	return m, textinput.Blink
}

func (m outputModel) handlePromptKey(msg tea.KeyMsg) (outputModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.saving = false
		m.path.Blur()
		return m, func() tea.Msg { return savedMsg{err: sink.ErrCanceled} }

	case tea.KeyEnter:
		m.saving = false
		m.path.Blur()
		path := m.path.Value()
		return m, func() tea.Msg { return saveOutputMsg{path: path} }
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *outputModel) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m outputModel) lines() []string {
	return strings.Split(strings.TrimSuffix(m.output, "\n"), "\n")
}

func (m outputModel) maxScroll() int {
	if m.output == "" {
		return 0
	}
	return max(len(m.lines())-m.height, 0)
}

func (m outputModel) View() string {
	status := fmt.Sprintf("%d people as %s", m.count, m.format)
	s := "\n  " + zstyle.MutedText.Render(status) + "\n\n"

	switch {
	case m.generating:
		s += "  " + zstyle.MutedText.Render("generating...") + "\n"
	case m.err != "":
		s += "  " + zstyle.StatusErr.Render(m.err) + "\n"
	default:
		lines := m.lines()
		end := min(m.scroll+m.height, len(lines))
		for _, l := range lines[m.scroll:end] {
			if m.width > 0 {
				l = runewidth.Truncate(l, m.width, "…")
			}
			s += "  " + l + "\n"
		}
		if rest := len(lines) - end; rest > 0 {
			s += "  " + zstyle.MutedText.Render(fmt.Sprintf("... %d more lines", rest)) + "\n"
		}
	}

	s += "\n"
	if m.saving {
		s += "  " + m.path.View() + "\n"
		return s
	}

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
