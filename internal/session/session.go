// Package session runs one generate cycle at a time: generate records,
// format them, and hold the result (or the error) for display, copy and
// save.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/prefs"
	"github.com/zarlcorp/zpeople/internal/render"
	"github.com/zarlcorp/zpeople/internal/sink"
)

// ErrNoOutput is returned when copying or saving before a successful
// generate.
var ErrNoOutput = errors.New("nothing generated yet")

// State is the position in the generate cycle.
type State int

const (
	Idle State = iota
	Generating
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Generator produces records. *person.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, count int, fields person.FieldSet) ([]person.Record, error)
}

// Request is everything one generate cycle needs.
type Request struct {
	Count    int
	Fields   person.FieldSet
	Format   render.Format
	Template string
}

// RequestFromPrefs builds a request from persisted choices.
func RequestFromPrefs(p *prefs.Prefs) (Request, error) {
	fields, err := p.Fields()
	if err != nil {
		return Request{}, err
	}
	tmpl, err := p.Template()
	if err != nil {
		return Request{}, err
	}
	format, err := p.Format()
	if err != nil {
		return Request{}, err
	}
	count, err := p.Count()
	if err != nil {
		return Request{}, err
	}
	return Request{Count: count, Fields: fields, Format: format, Template: tmpl}, nil
}

// Session holds the latest result. It is safe for concurrent use, though
// a new Generate simply replaces whatever came before.
type Session struct {
	mu  sync.Mutex
	gen Generator
	log *slog.Logger

	state   State
	req     Request
	records []person.Record
	output  string
	err     error
}

// New creates an idle session. A nil logger uses slog.Default.
func New(gen Generator, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{gen: gen, log: log}
}

// Generate produces fresh records and renders them. On failure the
// previous output is cleared and the error is kept for display.
func (s *Session) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Generating
	s.req = req

	records, err := s.gen.Generate(ctx, req.Count, req.Fields)
	if err != nil {
		return "", s.fail(fmt.Errorf("generate: %w", err))
	}

	out, err := render.Render(req.Format, records, req.Template)
	if err != nil {
		return "", s.fail(fmt.Errorf("format: %w", err))
	}

	s.records = records
	s.output = out
	s.err = nil
	s.state = Succeeded
	s.log.Debug("generated", "count", len(records), "format", req.Format)
	return out, nil
}

// Reformat renders the last records again in another shape, so the values
// stay the same.
func (s *Session) Reformat(format render.Format, tmpl string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		return "", ErrNoOutput
	}

	out, err := render.Render(format, s.records, tmpl)
	if err != nil {
		// the records stay so the user can fix the template and retry
		s.output = ""
		s.err = fmt.Errorf("format: %w", err)
		s.state = Failed
		return "", s.err
	}

	s.req.Format = format
	s.req.Template = tmpl
	s.output = out
	s.err = nil
	s.state = Succeeded
	return out, nil
}

// fail records err and clears stale results. Callers hold mu.
func (s *Session) fail(err error) error {
	s.records = nil
	s.output = ""
	s.err = err
	s.state = Failed
	s.log.Debug("generate failed", "err", err)
	return err
}

// Reset returns to Idle, dropping the result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.records = nil
	s.output = ""
	s.err = nil
}

// Copy writes the current output to cb.
func (s *Session) Copy(cb sink.Clipboard) error {
	out, err := s.current()
	if err != nil {
		return err
	}
	return cb.WriteAll(out)
}

// Save writes the current output through saver using the file name for
// the current format.
func (s *Session) Save(ctx context.Context, saver sink.Saver) (string, error) {
	s.mu.Lock()
	out, ok := s.output, s.state == Succeeded
	name := sink.FileName(s.req.Format)
	s.mu.Unlock()

	if !ok {
		return "", ErrNoOutput
	}
	return saver.Save(ctx, out, name)
}

func (s *Session) current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Succeeded {
		return "", ErrNoOutput
	}
	return s.output, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Output returns the last rendered output, or "" when there is none.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Err returns the error from the last cycle, if it failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Records returns the records behind the current output.
func (s *Session) Records() []person.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]person.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Request returns the request behind the current output.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}
