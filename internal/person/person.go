// Package person models generated people: the attribute enum, field
// selections and the immutable records the generator produces.
package person

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownField is returned when a field identifier is not recognized.
var ErrUnknownField = errors.New("unknown field")

// Field identifies one attribute of a generated person. Identifiers are
// case-sensitive and double as template placeholder names.
type Field string

const (
	FirstName Field = "firstName"
	LastName  Field = "lastName"
	FullName  Field = "fullName"
	Gender    Field = "gender"
	Email     Field = "email"
	Username  Field = "username"
	Password  Field = "password"
	Phone     Field = "phone"
	Street    Field = "street"
	City      Field = "city"
	State     Field = "state"
	Zip       Field = "zip"
	Country   Field = "country"
	Company   Field = "company"
	JobTitle  Field = "jobTitle"
	Birthday  Field = "birthday"
	Age       Field = "age"
	UUID      Field = "uuid"
)

// allFields is the canonical field order.
var allFields = []Field{
	FirstName, LastName, FullName, Gender, Email, Username, Password, Phone,
	Street, City, State, Zip, Country, Company, JobTitle, Birthday, Age, UUID,
}

var fieldRank = func() map[Field]int {
	m := make(map[Field]int, len(allFields))
	for i, f := range allFields {
		m[f] = i
	}
	return m
}()

// String returns the field identifier.
func (f Field) String() string { return string(f) }

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	_, ok := fieldRank[f]
	return ok
}

// AllFields returns every field in canonical order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField parses a field identifier.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// FieldSet is an unordered set of fields. The zero value is empty and
// ready to use. Methods never mutate the receiver.
type FieldSet struct {
	m map[Field]struct{}
}

// NewFieldSet returns a set holding the given fields. Unknown fields are
// ignored.
func NewFieldSet(fields ...Field) FieldSet {
	s := FieldSet{m: make(map[Field]struct{}, len(fields))}
	for _, f := range fields {
		if f.Valid() {
			s.m[f] = struct{}{}
		}
	}
	return s
}

// DefaultFields is the selection used when none has been made.
func DefaultFields() FieldSet {
	return NewFieldSet(FirstName, LastName, Email)
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s.m[f]
	return ok
}

// Len returns the number of fields in the set.
func (s FieldSet) Len() int { return len(s.m) }

// Toggle returns a copy of s with f removed if present, added otherwise.
func (s FieldSet) Toggle(f Field) FieldSet {
	out := NewFieldSet(s.Fields()...)
	if out.Has(f) {
		delete(out.m, f)
		return out
	}
	if f.Valid() {
		out.m[f] = struct{}{}
	}
	return out
}

// Fields returns the members in canonical order.
func (s FieldSet) Fields() []Field {
	out := make([]Field, 0, len(s.m))
	for _, f := range allFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Equal reports whether both sets hold the same fields.
func (s FieldSet) Equal(o FieldSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for f := range s.m {
		if !o.Has(f) {
			return false
		}
	}
	return true
}

// Record is one generated person. Values are strings or ints. Records are
// immutable once built.
type Record struct {
	fields []Field
	values map[Field]any
}

// NewRecord builds a record from values, keeping only fields that have a
// value. Field order follows fields.
func NewRecord(fields []Field, values map[Field]any) Record {
	r := Record{values: make(map[Field]any, len(fields))}
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if _, dup := r.values[f]; dup {
			continue
		}
		r.fields = append(r.fields, f)
		r.values[f] = v
	}
	return r
}

// Fields returns the populated fields in record order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value for f.
func (r Record) Get(f Field) (any, bool) {
	v, ok := r.values[f]
	return v, ok
}

// String returns the value for f as text, or "" when f is absent.
func (r Record) String(f Field) string {
	v, ok := r.values[f]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// MarshalJSON encodes the record as an object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(string(f))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// MarshalYAML encodes the record as a mapping in field order. Values are
// encoded individually so strings like "01234" or "no" stay quoted.
func (r Record) MarshalYAML() (any, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.fields {
		var val yaml.Node
		if err := val.Encode(r.values[f]); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(f)}
		m.Content = append(m.Content, key, &val)
	}
	return m, nil
}
