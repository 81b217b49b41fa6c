package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/render"
)

// templateModel edits the custom template.
type templateModel struct {
	input     textarea.Model
	selection person.FieldSet
	flash     string
	flashErr  bool
}

// saveTemplateMsg asks the root to validate and store a template.
type saveTemplateMsg struct {
	template string
}

// resetTemplateMsg asks the root to restore the default template.
type resetTemplateMsg struct{}

func newTemplateModel(tmpl string, sel person.FieldSet) templateModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.SetValue(tmpl)
	ta.Focus()

	return templateModel{input: ta, selection: sel}
}

func (m templateModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m templateModel) Update(msg tea.Msg) (templateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m, navigate(viewMenu)
		case tea.KeyCtrlS:
			v := m.input.Value()
			return m, func() tea.Msg { return saveTemplateMsg{template: v} }
		case tea.KeyCtrlR:
			return m, func() tea.Msg { return resetTemplateMsg{} }
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// placeholderHint lists the selected fields as ready-made placeholders.
func (m templateModel) placeholderHint() string {
	fields := m.selection.Fields()
	if len(fields) == 0 {
		fields = person.DefaultFields().Fields()
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = "{{" + f.String() + "}}"
	}
	return strings.Join(parts, " ")
}

// unselected returns placeholders in the edited template that no selected
// field fills. They render empty.
func (m templateModel) unselected() ([]string, error) {
	names, err := render.Placeholders(m.input.Value())
	if err != nil {
		return nil, err
	}
	sel := m.selection
	if sel.Len() == 0 {
		sel = person.DefaultFields()
	}
	var out []string
	for _, n := range names {
		if !sel.Has(person.Field(n)) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m templateModel) View() string {
	s := "\n  " + zstyle.MutedText.Render("one block per person, {{field}} is replaced by its value") + "\n\n"
	s += m.input.View() + "\n\n"
	s += "  " + zstyle.Subtitle.Render("fields") + " " + zstyle.MutedText.Render(m.placeholderHint()) + "\n"

	switch missing, err := m.unselected(); {
	case err != nil:
		s += "  " + zstyle.StatusErr.Render(err.Error()) + "\n"
	case len(missing) > 0:
		s += "  " + zstyle.StatusWarn.Render("not selected, renders empty: "+strings.Join(missing, ", ")) + "\n"
	default:
		s += "\n"
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
