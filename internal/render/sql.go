package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/zarlcorp/zpeople/internal/person"
)

// sqlTable is the table name used in generated INSERT statements.
const sqlTable = "people"

func writeSQL(w io.Writer, records []person.Record) error {
	if len(records) == 0 {
		return nil
	}
	cols := records[0].Fields()

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = snakeCase(c.String())
	}
	if _, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES\n", sqlTable, strings.Join(names, ", ")); err != nil {
		return err
	}

	for i, r := range records {
		vals := make([]string, len(cols))
		for j, c := range cols {
			v, _ := r.Get(c)
			vals[j] = sqlLiteral(v)
		}
		end := ","
		if i == len(records)-1 {
			end = ";"
		}
		if _, err := fmt.Fprintf(w, "  (%s)%s\n", strings.Join(vals, ", "), end); err != nil {
			return err
		}
	}
	return nil
}

func sqlLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(v)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}

// snakeCase converts a camelCase identifier to snake_case.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
