package person

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// count bounds accepted by Generate.
const (
	MinCount = 1
	MaxCount = 100
)

const (
	minAge             = 18
	maxAge             = 90
	defaultPasswordLen = 16
)

// ErrInvalidCount is returned when the requested count is out of range.
var ErrInvalidCount = errors.New("invalid count")

// Generator produces fake people using gofakeit.
// It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes generation deterministic. A zero seed picks a random one.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.faker = gofakeit.New(seed)
	}
}

// WithClock sets the reference time for birthdays and ages.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		faker: gofakeit.New(0),
		now:   time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns exactly count records holding only the requested fields.
// An empty field set falls back to DefaultFields.
func (g *Generator) Generate(ctx context.Context, count int, fields FieldSet) ([]Record, error) {
	if count < MinCount || count > MaxCount {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidCount, count, MinCount, MaxCount)
	}
	if fields.Len() == 0 {
		fields = DefaultFields()
	}
	want := fields.Fields()

	g.mu.Lock()
	defer g.mu.Unlock()

	records := make([]Record, 0, count)
	for range count {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		r, err := g.record(want)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// record builds one person. Name and birthday are drawn once so derived
// fields agree with each other.
func (g *Generator) record(want []Field) (Record, error) {
	f := g.faker
	first, last := f.FirstName(), f.LastName()

	now := g.now()
	dob := f.DateRange(now.AddDate(-maxAge, 0, 0), now.AddDate(-minAge, 0, 0))

	values := make(map[Field]any, len(want))
	for _, field := range want {
		switch field {
		case FirstName:
			values[field] = first
		case LastName:
			values[field] = last
		case FullName:
			values[field] = first + " " + last
		case Gender:
			values[field] = f.Gender()
		case Email:
			values[field] = f.Email()
		case Username:
			values[field] = f.Username()
		case Password:
			values[field] = f.Password(true, true, true, true, false, defaultPasswordLen)
		case Phone:
			values[field] = f.Phone()
		case Street:
			values[field] = f.Street()
		case City:
			values[field] = f.City()
		case State:
			values[field] = f.State()
		case Zip:
			values[field] = f.Zip()
		case Country:
			values[field] = f.Country()
		case Company:
			values[field] = f.Company()
		case JobTitle:
			values[field] = f.JobTitle()
		case Birthday:
			values[field] = dob.Format(time.DateOnly)
		case Age:
			values[field] = ageAt(dob, now)
		case UUID:
			// read from the faker's source so seeded runs repeat
			id, err := uuid.NewRandomFromReader(f.Rand)
			if err != nil {
				return Record{}, fmt.Errorf("uuid: %w", err)
			}
			values[field] = id.String()
		default:
			return Record{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return NewRecord(want, values), nil
}

// ParseFields parses a comma separated list of field identifiers.
func ParseFields(s string) (FieldSet, error) {
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := ParseField(part)
		if err != nil {
			return FieldSet{}, err
		}
		fields = append(fields, f)
	}
	return NewFieldSet(fields...), nil
}

// ageAt returns the age in whole years at now.
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
