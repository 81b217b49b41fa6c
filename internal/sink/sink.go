// Package sink gets generated text out of the program: onto the system
// clipboard or into a file.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/natefinch/atomic"
	"github.com/zarlcorp/zpeople/internal/render"
)

// AckDelay is how long a "copied" acknowledgment stays visible.
const AckDelay = 2 * time.Second

// baseName is the stem of saved file names.
const baseName = "people"

var (
	// ErrCanceled is returned when the user dismisses a save prompt.
	ErrCanceled = errors.New("save canceled")

	// ErrUnavailable is returned by a saver that cannot run here.
	ErrUnavailable = errors.New("save unavailable")
)

// FileName returns the suggested file name for output in format f.
func FileName(f render.Format) string {
	return baseName + "." + f.Extension()
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

// WriteAll writes text verbatim to the OS clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard: no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Saver writes text to a file named after name and returns the path
// written.
type Saver interface {
	Save(ctx context.Context, text, name string) (string, error)
}

// Availabler is implemented by savers that depend on an optional
// capability.
type Availabler interface {
	Available() bool
}

// PickFunc asks the user where to save, starting from the suggested name.
// It returns ErrCanceled when the user backs out.
type PickFunc func(ctx context.Context, suggested string) (string, error)

// Picker saves to a location chosen interactively.
type Picker struct {
	Pick PickFunc
}

// Available reports whether a pick function is wired.
func (p Picker) Available() bool { return p.Pick != nil }

func (p Picker) Save(ctx context.Context, text, name string) (string, error) {
	if !p.Available() {
		return "", ErrUnavailable
	}
	path, err := p.Pick(ctx, name)
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrCanceled
	}
	path, err = expandHome(path)
	if err != nil {
		return "", err
	}
	if err := writeFile(ctx, path, text); err != nil {
		return "", err
	}
	return path, nil
}

// DirSaver drops files into a fixed directory, the way a browser download
// lands in the downloads folder.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(ctx context.Context, text, name string) (string, error) {
	path := filepath.Join(d.Dir, filepath.Base(name))
	if err := writeFile(ctx, path, text); err != nil {
		return "", err
	}
	return path, nil
}

// fallback tries preferred first and falls back when it is unavailable or
// fails for a reason other than cancellation.
type fallback struct {
	preferred Saver
	fallback  Saver
}

// WithFallback combines two savers.
func WithFallback(preferred, alt Saver) Saver {
	return fallback{preferred: preferred, fallback: alt}
}

func (f fallback) Save(ctx context.Context, text, name string) (string, error) {
	if a, ok := f.preferred.(Availabler); ok && !a.Available() {
		return f.fallback.Save(ctx, text, name)
	}

	path, err := f.preferred.Save(ctx, text, name)
	if err == nil {
		return path, nil
	}
	if errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) {
		return "", err
	}

	path, ferr := f.fallback.Save(ctx, text, name)
	if ferr != nil {
		return "", errors.Join(err, ferr)
	}
	return path, nil
}

// writeFile writes text through a temp file and rename so a failed save
// leaves nothing behind.
func writeFile(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
