package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// passwordModel unlocks the encrypted prefs vault.
type passwordModel struct {
	input      textinput.Model
	firstRun   bool
	confirming bool
	firstPass  string
	errMsg     string
}

// passwordSubmitMsg carries the password to open the vault with.
type passwordSubmitMsg struct {
	password string
}

// passwordErrMsg reports a failed unlock.
type passwordErrMsg struct {
	err error
}

func newPasswordModel(firstRun bool) passwordModel {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()

	return passwordModel{input: ti, firstRun: firstRun}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (passwordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

	case passwordErrMsg:
		m.errMsg = msg.err.Error()
		m.restart()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// restart clears the input and drops any half-finished confirmation.
func (m *passwordModel) restart() {
	m.input.SetValue("")
	m.confirming = false
	m.firstPass = ""
}

func (m passwordModel) submit() (passwordModel, tea.Cmd) {
	val := m.input.Value()
	if val == "" {
		return m, nil
	}

	if m.firstRun {
		if !m.confirming {
			m.firstPass = val
			m.confirming = true
			m.input.SetValue("")
			m.errMsg = ""
			return m, nil
		}
		if val != m.firstPass {
			m.errMsg = "passwords do not match"
			m.restart()
			return m, nil
		}
	}

	m.errMsg = ""
	return m, func() tea.Msg { return passwordSubmitMsg{password: val} }
}

func (m passwordModel) prompt() string {
	switch {
	case m.firstRun && m.confirming:
		return "confirm vault password:"
	case m.firstRun:
		return "create vault password:"
	}
	return "vault password:"
}

func (m passwordModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	name := indent.Render(zstyle.MutedText.Render("zpeople"))

	s := fmt.Sprintf("\n%s\n%s\n\n  %s\n  %s\n", logo, name, m.prompt(), m.input.View())
	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg)
	}
	return s + "\n"
}
