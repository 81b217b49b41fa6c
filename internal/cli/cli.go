// Package cli implements zpeople's command-line subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/session"
	"github.com/zarlcorp/zpeople/internal/sink"
	"golang.org/x/term"
)

// Env is what the subcommands run against.
type Env struct {
	Prefs     *prefs.Prefs
	Session   *session.Session
	Clipboard sink.Clipboard
	SaveDir   string
	Stdout    io.Writer
	Stderr    io.Writer
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("vault password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the vault has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// OpenFileStore opens the plain JSON prefs file in dir. Warnings about an
// unreadable file go to log.
func OpenFileStore(dir string, log *slog.Logger) (prefs.Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return prefs.NewFile(dir, log), nil
}

// OpenVault opens the encrypted prefs vault in dir with password.
func OpenVault(dir, password string) (*zstore.Store, prefs.Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	key := []byte(password)
	s, err := zstore.Open(zfilesystem.NewOSFileSystem(dir), key)
	zcrypto.Erase(key)
	if err != nil {
		return nil, nil, err
	}

	v, err := prefs.NewVault(s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, v, nil
}

// PromptVault asks for the vault password on stderr and opens the vault.
func PromptVault(dir string) (*zstore.Store, prefs.Store, error) {
	var pass string
	var err error
	if IsFirstRun(dir) {
		pass, err = ReadNewPassword(os.Stderr)
	} else {
		pass, err = ReadPassword("vault password: ", os.Stderr)
	}
	if err != nil {
		return nil, nil, err
	}
	return OpenVault(dir, pass)
}

// CmdGenerate generates people and prints, copies or saves the result.
// Flags override stored choices for this run only.
func CmdGenerate(ctx context.Context, env Env, args []string) error {
	req, err := session.RequestFromPrefs(env.Prefs)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	count := fs.Int("n", req.Count, fmt.Sprintf("number of people (%d-%d)", person.MinCount, person.MaxCount))
	fields := fs.String("fields", "", "comma separated fields (default: stored selection)")
	format := fs.String("format", req.Format.String(), "output format")
	tmpl := fs.String("template", req.Template, "custom template, {{field}} placeholders")
	out := fs.String("o", "", "save to this path")
	save := fs.Bool("save", false, "save to the downloads directory")
	copyOut := fs.Bool("copy", false, "copy the output to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req.Count = *count
	req.Template = *tmpl
	if req.Format, err = render.ParseFormat(*format); err != nil {
		return err
	}
	if *fields != "" {
		if req.Fields, err = person.ParseFields(*fields); err != nil {
			return err
		}
	}

	text, err := env.Session.Generate(ctx, req)
	if err != nil {
		return err
	}

	quiet := false

	if *copyOut {
		if err := env.Session.Copy(env.Clipboard); err != nil {
			return err
		}
		fmt.Fprintln(env.Stderr, "copied")
		quiet = true
	}

	if *out != "" || *save {
		saver := sink.WithFallback(pathPicker(*out), sink.DirSaver{Dir: env.SaveDir})
		path, err := env.Session.Save(ctx, saver)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "saved %s\n", path)
		quiet = true
	}

	if !quiet {
		fmt.Fprint(env.Stdout, text)
	}
	return nil
}

// pathPicker treats a path given on the command line as the user's pick.
// An empty path leaves the picker unavailable.
func pathPicker(path string) sink.Picker {
	if path == "" {
		return sink.Picker{}
	}
	return sink.Picker{Pick: func(context.Context, string) (string, error) {
		return path, nil
	}}
}

// CmdFields lists every field and marks the selected ones.
func CmdFields(env Env) error {
	sel, err := env.Prefs.Fields()
	if err != nil {
		return err
	}
	printFields(env.Stdout, sel)
	return nil
}

// CmdToggle toggles each named field in the stored selection.
func CmdToggle(env Env, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: zpeople toggle <field>...")
	}

	// parse everything first so a typo toggles nothing
	fields := make([]person.Field, 0, len(args))
	for _, a := range args {
		f, err := person.ParseField(a)
		if err != nil {
			return err
		}
		fields = append(fields, f)
	}

	var sel person.FieldSet
	for _, f := range fields {
		var err error
		if sel, err = env.Prefs.Toggle(f); err != nil {
			return err
		}
	}
	printFields(env.Stdout, sel)
	return nil
}

// CmdTemplate shows, sets or resets the custom template.
// "set -" reads the template from stdin.
func CmdTemplate(env Env, args []string, stdin io.Reader) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "show":
		t, err := env.Prefs.Template()
		if err != nil {
			return err
		}
		fmt.Fprint(env.Stdout, t)
		if !strings.HasSuffix(t, "\n") {
			fmt.Fprintln(env.Stdout)
		}
		return nil

	case "set":
		if len(args) != 2 {
			return errors.New("usage: zpeople template set <template|->")
		}
		t := args[1]
		if t == "-" {
			b, err := io.ReadAll(stdin)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			t = string(b)
		}
		if _, err := render.Placeholders(t); err != nil {
			return err
		}
		return env.Prefs.SetTemplate(t)

	case "reset":
		_, err := env.Prefs.ResetTemplate()
		return err
	}

	return fmt.Errorf("unknown template command %q", sub)
}

// CmdFormats lists output formats with their file names.
func CmdFormats(env Env) error {
	cur, err := env.Prefs.Format()
	if err != nil {
		return err
	}
	for _, f := range render.Formats() {
		mark := " "
		if f == cur {
			mark = "*"
		}
		fmt.Fprintf(env.Stdout, "%s %-10s %s\n", mark, f, sink.FileName(f))
	}
	return nil
}

func printFields(w io.Writer, sel person.FieldSet) {
	for _, f := range person.AllFields() {
		mark := "[ ]"
		if sel.Has(f) {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, f)
	}
}
