// Package render turns generated records into text: structured formats
// that serialize the record list directly, and a custom format that fills
// a {{field}} template once per record.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bjaus/fmter"
	"github.com/zarlcorp/zpeople/internal/person"
)

// Errors returned by ParseFormat and Write.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidTemplate   = errors.New("invalid template")
)

// Format is an output format name.
type Format string

const (
	JSON     Format = "json"
	YAML     Format = "yaml"
	CSV      Format = "csv"
	TSV      Format = "tsv"
	JSONL    Format = "jsonl"
	Markdown Format = "markdown"
	SQL      Format = "sql"
	Custom   Format = "custom"
)

// DefaultTemplate is the custom template used until the user edits it.
const DefaultTemplate = "{{firstName}} {{lastName}} <{{email}}>\n"

var formats = []Format{JSON, YAML, CSV, TSV, JSONL, Markdown, SQL, Custom}

var extensions = map[Format]string{
	JSON:     "json",
	YAML:     "yaml",
	CSV:      "csv",
	TSV:      "tsv",
	JSONL:    "jsonl",
	Markdown: "md",
	SQL:      "sql",
	Custom:   "txt",
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Extension returns the file extension, without the dot, for files
// holding output in this format.
func (f Format) Extension() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return "txt"
}

// Next returns the format after f in Formats order, wrapping around.
func (f Format) Next() Format { return f.step(1) }

// Prev returns the format before f in Formats order, wrapping around.
func (f Format) Prev() Format { return f.step(-1) }

// step moves delta places through formats. Unknown formats start at JSON.
func (f Format) step(delta int) Format {
	for i, x := range formats {
		if x == f {
			n := len(formats)
			return formats[((i+delta)%n+n)%n]
		}
	}
	return formats[0]
}

// Formats returns all supported formats.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Write renders records in format f to w. tmpl is only used by Custom.
func Write(w io.Writer, f Format, records []person.Record, tmpl string) error {
	switch f {
	case JSON:
		return fmter.Write(w, fmter.JSON, document(records))
	case YAML:
		return fmter.Write(w, fmter.YAML, document(records))
	case JSONL:
		return fmter.Write(w, fmter.JSONL, records...)
	case CSV:
		return fmter.Write(w, fmter.CSV, rows(records, nil)...)
	case TSV:
		return fmter.Write(w, fmter.TSV, rows(records, tsvEscaper)...)
	case Markdown:
		return fmter.Write(w, fmter.Markdown, rows(records, markdownEscaper)...)
	case SQL:
		return writeSQL(w, records)
	case Custom:
		return writeTemplate(w, tmpl, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Render renders records into a string. Nothing is returned on error.
func Render(f Format, records []person.Record, tmpl string) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, records, tmpl); err != nil {
		return "", err
	}
	return buf.String(), nil
}
