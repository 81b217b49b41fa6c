package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/zarlcorp/zpeople/internal/person"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// segment is either literal text or a placeholder name.
type segment struct {
	text        string
	placeholder bool
}

// parseTemplate splits tmpl into literal and placeholder segments.
// An opening delimiter without a matching close is an error.
func parseTemplate(tmpl string) ([]segment, error) {
	var segs []segment
	rest := tmpl
	offset := 0
	for {
		i := strings.Index(rest, openDelim)
		if i < 0 {
			if rest != "" {
				segs = append(segs, segment{text: rest})
			}
			return segs, nil
		}
		if i > 0 {
			segs = append(segs, segment{text: rest[:i]})
		}

		after := rest[i+len(openDelim):]
		j := strings.Index(after, closeDelim)
		if j < 0 {
			return nil, fmt.Errorf("%w: unclosed %q at offset %d", ErrInvalidTemplate, openDelim, offset+i)
		}
		segs = append(segs, segment{text: after[:j], placeholder: true})

		consumed := i + len(openDelim) + j + len(closeDelim)
		rest = rest[consumed:]
		offset += consumed
	}
}

// Placeholders returns the distinct placeholder names in tmpl in order of
// first appearance.
func Placeholders(tmpl string) ([]string, error) {
	segs, err := parseTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range segs {
		if s.placeholder && !seen[s.text] {
			seen[s.text] = true
			out = append(out, s.text)
		}
	}
	return out, nil
}

// writeTemplate writes one filled block per record. Placeholders for
// fields the record does not hold render as "".
func writeTemplate(w io.Writer, tmpl string, records []person.Record) error {
	segs, err := parseTemplate(tmpl)
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, r := range records {
		for _, s := range segs {
			if s.placeholder {
				b.WriteString(r.String(person.Field(s.text)))
				continue
			}
			b.WriteString(s.text)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}
