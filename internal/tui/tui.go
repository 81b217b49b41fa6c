// Package tui implements the root Bubble Tea model for zpeople.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/session"
	"github.com/zarlcorp/zpeople/internal/sink"
)

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewOutput
	viewFields
	viewTemplate
	viewOptions
)

// accent is zpeople's header and cursor color.
var accent = lipgloss.Color("#5fafd7")

// Config wires the model to its collaborators.
type Config struct {
	Version   string
	DataDir   string
	SaveDir   string
	Generator session.Generator
	Clipboard sink.Clipboard
	Logger    *slog.Logger

	// Prefs is used as is. When nil and Vault is set, the model asks for
	// the vault password and opens prefs from the encrypted store.
	Prefs    *prefs.Prefs
	Vault    bool
	FirstRun bool
}

// Model is the root TUI model.
type Model struct {
	version   string
	dataDir   string
	saveDir   string
	clipboard sink.Clipboard
	log       *slog.Logger

	store   *zstore.Store
	prefs   *prefs.Prefs
	session *session.Session

	active   viewID
	password passwordModel
	menu     menuModel
	output   outputModel
	fields   fieldsModel
	template templateModel
	options  optionsModel

	// flashSeq identifies the newest flash so stale clear ticks are ignored
	flashSeq int

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(cfg Config) Model {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	clip := cfg.Clipboard
	if clip == nil {
		clip = sink.SystemClipboard{}
	}

	m := Model{
		version:   cfg.Version,
		dataDir:   cfg.DataDir,
		saveDir:   cfg.SaveDir,
		clipboard: clip,
		log:       log,
		prefs:     cfg.Prefs,
		session:   session.New(cfg.Generator, log),
		menu:      newMenuModel(cfg.Version),
		active:    viewMenu,
	}

	if m.prefs == nil {
		if cfg.Vault {
			m.active = viewPassword
			m.password = newPasswordModel(cfg.FirstRun)
		} else {
			m.prefs = prefs.New(prefs.NewMemory(), log)
		}
	}

	return m
}

func (m Model) Init() tea.Cmd {
	if m.active == viewPassword {
		return m.password.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.output.height = outputHeight(msg.Height)
		m.output.width = outputWidth(msg.Width)
		return m, nil

	case passwordSubmitMsg:
		return m.openVault(msg.password)

	case navigateMsg:
		return m.navigate(msg.view)

	case generateMsg:
		return m.startGenerate()

	case generatedMsg:
		m.output, _ = m.output.Update(msg)
		return m, nil

	case toggleFieldMsg:
		return m.handleToggle(msg.field)

	case saveTemplateMsg:
		return m.handleSaveTemplate(msg.template)

	case resetTemplateMsg:
		return m.handleResetTemplate()

	case saveOptionsMsg:
		return m.handleSaveOptions(msg.count, msg.format)

	case cycleFormatMsg:
		return m.handleCycleFormat()

	case copyOutputMsg:
		return m.handleCopy()

	case saveOutputMsg:
		return m, m.saveCmd(msg.path)

	case savedMsg:
		return m.handleSaved(msg)

	case flashMsg:
		if msg.seq != m.flashSeq {
			return m, nil
		}
		return m.updateActive(msg)
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu draw their own logo
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	// all other views: header + separator + content + footer
	var content string
	switch m.active {
	case viewOutput:
		content = m.output.View()
	case viewFields:
		content = m.fields.View()
	case viewTemplate:
		content = m.template.View()
	case viewOptions:
		content = m.options.View()
	}

	header := zstyle.RenderHeader("zpeople", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active, m.output.saving))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewOutput:
		return "Generated People"
	case viewFields:
		return "Fields"
	case viewTemplate:
		return "Template"
	case viewOptions:
		return "Options"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID, saving bool) []zstyle.HelpPair {
	switch id {
	case viewOutput:
		if saving {
			return []zstyle.HelpPair{
				{Key: "enter", Desc: "save"},
				{Key: "esc", Desc: "cancel"},
			}
		}
		return []zstyle.HelpPair{
			{Key: "c", Desc: "copy"},
			{Key: "s", Desc: "save"},
			{Key: "f", Desc: "format"},
			{Key: "n", Desc: "new"},
			{Key: "j/k", Desc: "scroll"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewFields:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "space", Desc: "toggle"},
			{Key: "g", Desc: "generate"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewTemplate:
		return []zstyle.HelpPair{
			{Key: "ctrl+s", Desc: "save"},
			{Key: "ctrl+r", Desc: "reset"},
			{Key: "esc", Desc: "back"},
		}
	case viewOptions:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "h/l", Desc: "change"},
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewOutput:
		m.output, cmd = m.output.Update(msg)
	case viewFields:
		m.fields, cmd = m.fields.Update(msg)
	case viewTemplate:
		m.template, cmd = m.template.Update(msg)
	case viewOptions:
		m.options, cmd = m.options.Update(msg)
	}

	return m, cmd
}

func (m Model) openVault(password string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	fsys := zfilesystem.NewOSFileSystem(m.dataDir)
	key := []byte(password)
	s, err := zstore.Open(fsys, key)
	zcrypto.Erase(key)
	if err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	v, err := prefs.NewVault(s)
	if err != nil {
		s.Close()
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.store = s
	m.prefs = prefs.New(v, m.log)
	m.active = viewMenu
	return m, nil
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		m.menu = newMenuModel(m.version)
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewOutput:
		return m.startGenerate()

	case viewFields:
		sel, err := m.prefs.Fields()
		m.fields = newFieldsModel(sel)
		if err != nil {
			m.fields.flash = "load: " + err.Error()
		}
		m.active = viewFields
		return m, tea.ClearScreen

	case viewTemplate:
		tmpl, err := m.prefs.Template()
		sel, _ := m.prefs.Fields()
		m.template = newTemplateModel(tmpl, sel)
		if err != nil {
			m.template.flash = "load: " + err.Error()
			m.template.flashErr = true
		}
		m.active = viewTemplate
		return m, tea.Batch(tea.ClearScreen, m.template.Init())

	case viewOptions:
		count, _ := m.prefs.Count()
		format, _ := m.prefs.Format()
		m.options = newOptionsModel(count, format)
		m.active = viewOptions
		return m, tea.ClearScreen
	}

	return m, nil
}

// startGenerate switches to the output view and runs a generate cycle
// with the stored choices.
func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	req, err := session.RequestFromPrefs(m.prefs)

	m.output = newOutputModel(req.Format, m.saveDir)
	m.output.height = outputHeight(m.height)
	m.output.width = outputWidth(m.width)
	m.active = viewOutput

	if err != nil {
		m.output.err = err.Error()
		return m, tea.ClearScreen
	}

	m.output.generating = true
	sess := m.session
	return m, tea.Batch(tea.ClearScreen, func() tea.Msg {
		out, err := sess.Generate(context.Background(), req)
		return generatedMsg{output: out, err: err, count: req.Count}
	})
}

func (m Model) handleToggle(f person.Field) (tea.Model, tea.Cmd) {
	sel, err := m.prefs.Toggle(f)
	if err != nil {
		m.fields.flash = "save: " + err.Error()
		return m.flash(false)
	}
	m.fields.selection = sel
	return m, nil
}

func (m Model) handleSaveTemplate(tmpl string) (tea.Model, tea.Cmd) {
	if _, err := render.Placeholders(tmpl); err != nil {
		m.template.flash = err.Error()
		m.template.flashErr = true
		return m.flash(true)
	}
	if err := m.prefs.SetTemplate(tmpl); err != nil {
		m.template.flash = "save: " + err.Error()
		m.template.flashErr = true
		return m.flash(true)
	}
	m.template.flash = "saved"
	m.template.flashErr = false
	return m.flash(true)
}

func (m Model) handleResetTemplate() (tea.Model, tea.Cmd) {
	tmpl, err := m.prefs.ResetTemplate()
	if err != nil {
		m.template.flash = "reset: " + err.Error()
		m.template.flashErr = true
		return m.flash(true)
	}
	m.template.input.SetValue(tmpl)
	m.template.flash = "reset to default"
	m.template.flashErr = false
	return m.flash(true)
}

func (m Model) handleSaveOptions(count int, format render.Format) (tea.Model, tea.Cmd) {
	if err := m.prefs.SetCount(count); err != nil {
		m.options.setFlash("save: "+err.Error(), true)
		return m.flash(false)
	}
	if err := m.prefs.SetFormat(format); err != nil {
		m.options.setFlash("save: "+err.Error(), true)
		return m.flash(false)
	}
	m.options.setFlash("saved", false)
	return m.flash(false)
}

// handleCycleFormat re-renders the current records in the next format and
// remembers the choice.
func (m Model) handleCycleFormat() (tea.Model, tea.Cmd) {
	if len(m.session.Records()) == 0 {
		return m, nil
	}

	// step from the shown format so a failing custom template can be skipped
	next := m.output.format.Next()
	tmpl, err := m.prefs.Template()
	if err != nil {
		m.output.setFlash("format: "+err.Error(), true)
		return m.flash(false)
	}

	out, err := m.session.Reformat(next, tmpl)
	m.output.format = next
	if err != nil {
		m.output.output = ""
		m.output.err = err.Error()
	} else {
		m.output.output = out
		m.output.err = ""
		m.output.scroll = 0
	}

	if err := m.prefs.SetFormat(next); err != nil {
		m.log.Warn("persist format", "err", err)
	}
	return m, nil
}

func (m Model) handleCopy() (tea.Model, tea.Cmd) {
	if err := m.session.Copy(m.clipboard); err != nil {
		m.output.setFlash("copy: "+err.Error(), true)
		return m.flash(false)
	}
	m.output.setFlash("copied!", false)
	return m.flash(false)
}

func (m Model) saveCmd(path string) tea.Cmd {
	sess := m.session
	picker := sink.Picker{Pick: func(context.Context, string) (string, error) {
		return path, nil
	}}
	saver := sink.WithFallback(picker, sink.DirSaver{Dir: m.saveDir})
	return func() tea.Msg {
		p, err := sess.Save(context.Background(), saver)
		return savedMsg{path: p, err: err}
	}
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, sink.ErrCanceled) {
		m.output.setFlash("save canceled", false)
		return m.flash(false)
	}
	if msg.err != nil {
		m.output.setFlash("save: "+msg.err.Error(), true)
		return m.flash(false)
	}
	m.output.setFlash("saved "+msg.path, false)
	return m.flash(false)
}

// flash schedules clearing of the flash just set. long keeps it visible
// for longer than the copy acknowledgment.
func (m Model) flash(long bool) (tea.Model, tea.Cmd) {
	m.flashSeq++
	d := sink.AckDelay
	if long {
		d = 2 * sink.AckDelay
	}
	return m, clearFlashAfter(m.flashSeq, d)
}

func clearFlashAfter(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flashMsg{seq: seq}
	})
}

// outputHeight is the number of output lines shown for a terminal height.
func outputHeight(termHeight int) int {
	const chrome = 10
	if termHeight <= chrome {
		return defaultOutputHeight
	}
	return termHeight - chrome
}

// outputWidth is the room for output lines after the two-space indent.
// Zero means the terminal width is not known yet.
func outputWidth(termWidth int) int {
	return max(termWidth-2, 0)
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.store != nil {
		m.store.Close()
	}
}
