package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/zarlcorp/zpeople/internal/person"
	"github.com/zarlcorp/zpeople/internal/render"
)

// keys under which choices are persisted.
const (
	KeyFields   = "fields"
	KeyTemplate = "template"
	KeyFormat   = "format"
	KeyCount    = "count"
)

// defaults applied when nothing is persisted.
const (
	DefaultFormat = render.JSON
	DefaultCount  = 10
)

// Prefs reads and writes generator choices through a Store.
type Prefs struct {
	store Store
	log   *slog.Logger
}

// New creates a Prefs over store. A nil logger uses slog.Default.
func New(store Store, log *slog.Logger) *Prefs {
	if log == nil {
		log = slog.Default()
	}
	return &Prefs{store: store, log: log}
}

// Fields returns the persisted selection, or person.DefaultFields when none
// is stored or the stored value cannot be parsed. Unknown identifiers are
// dropped.
func (p *Prefs) Fields() (person.FieldSet, error) {
	raw, ok, err := p.store.Get(KeyFields)
	if err != nil {
		return person.FieldSet{}, fmt.Errorf("load fields: %w", err)
	}
	if !ok {
		return person.DefaultFields(), nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		p.log.Warn("stored field selection unreadable, using defaults", "err", err)
		return person.DefaultFields(), nil
	}

	fields := make([]person.Field, 0, len(ids))
	for _, id := range ids {
		f, err := person.ParseField(id)
		if err != nil {
			p.log.Debug("dropping stored field", "field", id)
			continue
		}
		fields = append(fields, f)
	}
	return person.NewFieldSet(fields...), nil
}

// SetFields persists s.
func (p *Prefs) SetFields(s person.FieldSet) error {
	fields := s.Fields()
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.String()
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("save fields: %w", err)
	}
	if err := p.store.Set(KeyFields, string(data)); err != nil {
		return fmt.Errorf("save fields: %w", err)
	}
	return nil
}

// Toggle flips f in the persisted selection and returns the result.
func (p *Prefs) Toggle(f person.Field) (person.FieldSet, error) {
	cur, err := p.Fields()
	if err != nil {
		return person.FieldSet{}, err
	}
	next := cur.Toggle(f)
	if err := p.SetFields(next); err != nil {
		return person.FieldSet{}, err
	}
	return next, nil
}

// Template returns the stored custom template or render.DefaultTemplate.
func (p *Prefs) Template() (string, error) {
	v, ok, err := p.store.Get(KeyTemplate)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}
	if !ok {
		return render.DefaultTemplate, nil
	}
	return v, nil
}

// SetTemplate stores tmpl verbatim.
func (p *Prefs) SetTemplate(tmpl string) error {
	if err := p.store.Set(KeyTemplate, tmpl); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// ResetTemplate restores and persists render.DefaultTemplate.
func (p *Prefs) ResetTemplate() (string, error) {
	if err := p.SetTemplate(render.DefaultTemplate); err != nil {
		return "", err
	}
	return render.DefaultTemplate, nil
}

// Format returns the stored output format or DefaultFormat.
func (p *Prefs) Format() (render.Format, error) {
	v, ok, err := p.store.Get(KeyFormat)
	if err != nil {
		return "", fmt.Errorf("load format: %w", err)
	}
	if !ok {
		return DefaultFormat, nil
	}
	f, err := render.ParseFormat(v)
	if err != nil {
		p.log.Warn("stored format unknown, using default", "format", v)
		return DefaultFormat, nil
	}
	return f, nil
}

// SetFormat persists f.
func (p *Prefs) SetFormat(f render.Format) error {
	if err := p.store.Set(KeyFormat, f.String()); err != nil {
		return fmt.Errorf("save format: %w", err)
	}
	return nil
}

// Count returns the stored record count or DefaultCount. Stored values
// outside the generator's range are clamped.
func (p *Prefs) Count() (int, error) {
	v, ok, err := p.store.Get(KeyCount)
	if err != nil {
		return 0, fmt.Errorf("load count: %w", err)
	}
	if !ok {
		return DefaultCount, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.log.Warn("stored count unreadable, using default", "count", v)
		return DefaultCount, nil
	}
	return ClampCount(n), nil
}

// SetCount persists n.
func (p *Prefs) SetCount(n int) error {
	if err := p.store.Set(KeyCount, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("save count: %w", err)
	}
	return nil
}

// ClampCount limits n to the range the generator accepts.
func ClampCount(n int) int {
	return min(max(n, person.MinCount), person.MaxCount)
}
