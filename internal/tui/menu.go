package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type menuChoice int

const (
	menuGenerate menuChoice = iota
	menuFields
	menuTemplate
	menuOptions
	menuQuit
)

var menuItems = []string{
	"Generate people",
	"Choose fields",
	"Edit template",
	"Options",
	"Quit",
}

// menuModel is the main menu view.
type menuModel struct {
	cursor  int
	version string
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

func newMenuModel(version string) menuModel {
	return menuModel{version: version}
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, zstyle.KeyQuit):
			return m, tea.Quit
		case key.Matches(msg, zstyle.KeyUp):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, zstyle.KeyDown):
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case key.Matches(msg, zstyle.KeyEnter):
			return m, m.selectItem()
		case msg.String() == "g":
			return m, navigate(viewOutput)
		}
	}

	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuGenerate:
		return navigate(viewOutput)
	case menuFields:
		return navigate(viewFields)
	case menuTemplate:
		return navigate(viewTemplate)
	case menuOptions:
		return navigate(viewOptions)
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func navigate(v viewID) tea.Cmd {
	return func() tea.Msg { return navigateMsg{view: v} }
}

func (m menuModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	title := zstyle.Title.Render("zpeople")
	ver := zstyle.MutedText.Render(m.version)

	s := fmt.Sprintf("\n%s\n  %s %s\n\n", logo, title, ver)

	for i, item := range menuItems {
		s += "  " + zstyle.RenderMenuItem(zstyle.MenuItem{Label: item, Active: m.cursor == i}, accent) + "\n"
	}

	s += "\n" + zstyle.RenderFooter([]zstyle.HelpPair{
		{Key: "j/k", Desc: "navigate"},
		{Key: "enter", Desc: "select"},
		{Key: "g", Desc: "generate"},
		{Key: "q", Desc: "quit"},
	}) + "\n"
	return s
}
