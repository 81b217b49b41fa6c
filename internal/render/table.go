package render

import (
	"strings"

	"github.com/zarlcorp/zpeople/internal/person"
)

// list renders as one document, so a single record is still an array.
type list []person.Record

func (list) Indent() string { return "  " }

// row adapts a record to fmter's row formats. cols comes from the first
// record so every row has the same columns.
type row struct {
	rec   person.Record
	cols  []person.Field
	clean *strings.Replacer
}

func (r row) Header() []string {
	out := make([]string, len(r.cols))
	for i, c := range r.cols {
		out[i] = c.String()
	}
	return out
}

func (r row) Row() []string {
	out := make([]string, len(r.cols))
	for i, c := range r.cols {
		v := r.rec.String(c)
		if r.clean != nil {
			v = r.clean.Replace(v)
		}
		out[i] = v
	}
	return out
}

// tsvEscaper keeps each record on one line with tab separated cells.
var tsvEscaper = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r", " ", "\n", " ")

func rows(records []person.Record, clean *strings.Replacer) []row {
	if len(records) == 0 {
		return nil
	}
	cols := records[0].Fields()
	out := make([]row, len(records))
	for i, r := range records {
		out[i] = row{rec: r, cols: cols, clean: clean}
	}
	return out
}

func document(records []person.Record) list {
	if records == nil {
		return list{}
	}
	return list(records)
}
