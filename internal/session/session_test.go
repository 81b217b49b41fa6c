package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/sink"
)

// fakeClipboard records the last write.
type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// failingGenerator always errors.
type failingGenerator struct{ err error }

func (g failingGenerator) Generate(context.Context, int, person.FieldSet) ([]person.Record, error) {
	return nil, g.err
}

func newSession() *Session {
	return New(person.New(person.WithSeed(1)), nil)
}

func customRequest(n int) Request {
	return Request{
		Count:    n,
		Fields:   person.NewFieldSet(person.FirstName, person.Email),
		Format:   render.Custom,
		Template: "{{firstName}} <{{email}}>\n",
	}
}

func TestStartsIdle(t *testing.T) {
	s := newSession()
	if s.State() != Idle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if s.Output() != "" || s.Err() != nil {
		t.Error("new session should have no output or error")
	}
}

func TestGenerateCustomTemplate(t *testing.T) {
	s := newSession()

	out, err := s.Generate(context.Background(), customRequest(3))
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	re := regexp.MustCompile(`^\S.* <\S+@\S+>$`)
	for _, l := range lines {
		if !re.MatchString(l) {
			t.Errorf("line %q does not look like Name <email>", l)
		}
	}

	if s.State() != Succeeded {
		t.Errorf("state = %s, want succeeded", s.State())
	}
	if s.Output() != out {
		t.Error("Output() should match the returned text")
	}
	if len(s.Records()) != 3 {
		t.Errorf("records = %d, want 3", len(s.Records()))
	}
}

func TestGenerateErrorClearsOutput(t *testing.T) {
	s := newSession()
	if _, err := s.Generate(context.Background(), customRequest(2)); err != nil {
		t.Fatal(err)
	}

	req := customRequest(0)
	out, err := s.Generate(context.Background(), req)
	if !errors.Is(err, person.ErrInvalidCount) {
		t.Fatalf("err = %v, want ErrInvalidCount", err)
	}
	if out != "" || s.Output() != "" {
		t.Error("output should be cleared on failure")
	}
	if s.State() != Failed {
		t.Errorf("state = %s, want failed", s.State())
	}
	if !errors.Is(s.Err(), person.ErrInvalidCount) {
		t.Errorf("Err() = %v", s.Err())
	}
	if len(s.Records()) != 0 {
		t.Error("records should be cleared on failure")
	}
}

func TestGeneratorErrorSurfaced(t *testing.T) {
	boom := errors.New("library exploded")
	s := New(failingGenerator{boom}, nil)

	_, err := s.Generate(context.Background(), customRequest(1))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if s.State() != Failed {
		t.Errorf("state = %s", s.State())
	}
}

func TestTemplateErrorSuppressesOutput(t *testing.T) {
	s := newSession()
	req := customRequest(2)
	req.Template = "{{firstName"

	out, err := s.Generate(context.Background(), req)
	if !errors.Is(err, render.ErrInvalidTemplate) {
		t.Fatalf("err = %v, want ErrInvalidTemplate", err)
	}
	if out != "" || s.Output() != "" {
		t.Error("no output on template error")
	}
}

func TestMissingPlaceholderRendersEmpty(t *testing.T) {
	s := newSession()
	req := customRequest(4)
	req.Template = "{{firstName}}|{{phone}}|\n"

	out, err := s.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if !strings.HasSuffix(l, "||") {
			t.Errorf("line %q: unselected phone should render empty", l)
		}
	}
}

func TestReformatKeepsValues(t *testing.T) {
	s := newSession()
	req := Request{
		Count:  5,
		Fields: person.NewFieldSet(person.FirstName, person.LastName, person.City),
		Format: render.JSON,
	}
	if _, err := s.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	before := s.Records()

	out, err := s.Reformat(render.CSV, "")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("csv lines = %d, want header + 5", len(lines))
	}
	for i, r := range before {
		if !strings.Contains(lines[i+1], r.String(person.LastName)) {
			t.Errorf("row %d %q lost last name %q", i, lines[i+1], r.String(person.LastName))
		}
	}
	if s.Request().Format != render.CSV {
		t.Errorf("request format = %s, want csv", s.Request().Format)
	}
}

func TestReformatBeforeGenerate(t *testing.T) {
	if _, err := newSession().Reformat(render.CSV, ""); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestCopyExactOutput(t *testing.T) {
	s := newSession()
	out, err := s.Generate(context.Background(), customRequest(3))
	if err != nil {
		t.Fatal(err)
	}

	cb := &fakeClipboard{}
	if err := s.Copy(cb); err != nil {
		t.Fatal(err)
	}
	if cb.text != out {
		t.Errorf("clipboard = %q, want %q", cb.text, out)
	}
}

func TestCopyWithoutOutput(t *testing.T) {
	cb := &fakeClipboard{}
	if err := newSession().Copy(cb); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err = %v, want ErrNoOutput", err)
	}
}

func TestSaveFallbackUsesFormatExtension(t *testing.T) {
	dir := t.TempDir()
	s := newSession()

	req := customRequest(2)
	req.Format = render.CSV
	out, err := s.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	saver := sink.WithFallback(sink.Picker{}, sink.DirSaver{Dir: dir})
	path, err := s.Save(context.Background(), saver)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Ext(path) != ".csv" {
		t.Errorf("path %s should end in .csv", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != out {
		t.Errorf("file content differs from output")
	}
}

func TestSaveCancelReported(t *testing.T) {
	s := newSession()
	if _, err := s.Generate(context.Background(), customRequest(1)); err != nil {
		t.Fatal(err)
	}

	picker := sink.Picker{Pick: func(context.Context, string) (string, error) { return "", sink.ErrCanceled }}
	_, err := s.Save(context.Background(), sink.WithFallback(picker, sink.DirSaver{Dir: t.TempDir()}))
	if !errors.Is(err, sink.ErrCanceled) {
		t.Errorf("err = %v, want ErrCanceled", err)
	}
	if s.State() != Succeeded {
		t.Error("a failed save should not disturb the generated output")
	}
}

func TestReset(t *testing.T) {
	s := newSession()
	if _, err := s.Generate(context.Background(), customRequest(1)); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if s.State() != Idle || s.Output() != "" {
		t.Errorf("after reset: state %s, output %q", s.State(), s.Output())
	}
}

func TestRequestFromPrefs(t *testing.T) {
	p := prefs.New(prefs.NewMemory(), nil)
	p.SetCount(7)
	p.SetFormat(render.YAML)
	p.SetTemplate("{{uuid}}\n")
	p.Toggle(person.UUID)

	req, err := RequestFromPrefs(p)
	if err != nil {
		t.Fatal(err)
	}
	if req.Count != 7 || req.Format != render.YAML || req.Template != "{{uuid}}\n" {
		t.Errorf("request = %+v", req)
	}
	if !req.Fields.Has(person.UUID) || !req.Fields.Has(person.Email) {
		t.Errorf("fields = %v", req.Fields.Fields())
	}
}
