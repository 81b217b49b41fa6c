package person

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator(seed int64) *Generator {
	return New(WithSeed(seed), WithClock(func() time.Time { return fixedNow }))
}

func TestGenerateCount(t *testing.T) {
	g := newTestGenerator(1)

	for _, n := range []int{1, 2, 17, 100} {
		recs, err := g.Generate(context.Background(), n, DefaultFields())
		if err != nil {
			t.Fatalf("Generate(%d): %v", n, err)
		}
		if len(recs) != n {
			t.Errorf("Generate(%d) returned %d records", n, len(recs))
		}
	}
}

func TestGenerateInvalidCount(t *testing.T) {
	g := newTestGenerator(1)

	for _, n := range []int{-1, 0, 101, 1000} {
		recs, err := g.Generate(context.Background(), n, DefaultFields())
		if !errors.Is(err, ErrInvalidCount) {
			t.Errorf("Generate(%d): err = %v, want ErrInvalidCount", n, err)
		}
		if recs != nil {
			t.Errorf("Generate(%d) should return no records on error", n)
		}
	}
}

func TestGenerateOnlyRequestedFields(t *testing.T) {
	g := newTestGenerator(7)
	want := NewFieldSet(Email, FirstName)

	recs, err := g.Generate(context.Background(), 5, want)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range recs {
		got := r.Fields()
		if len(got) != 2 || got[0] != FirstName || got[1] != Email {
			t.Errorf("fields = %v, want [firstName email]", got)
		}
		if r.String(FirstName) == "" || r.String(Email) == "" {
			t.Errorf("empty value in %+v", r)
		}
		if _, ok := r.Get(LastName); ok {
			t.Error("unrequested field lastName is populated")
		}
	}
}

func TestGenerateEmptySelectionUsesDefaults(t *testing.T) {
	g := newTestGenerator(3)

	recs, err := g.Generate(context.Background(), 1, FieldSet{})
	if err != nil {
		t.Fatal(err)
	}

	got := NewFieldSet(recs[0].Fields()...)
	if !got.Equal(DefaultFields()) {
		t.Errorf("fields = %v, want defaults %v", got.Fields(), DefaultFields().Fields())
	}
}

func TestGenerateAllFields(t *testing.T) {
	g := newTestGenerator(11)

	recs, err := g.Generate(context.Background(), 20, NewFieldSet(AllFields()...))
	if err != nil {
		t.Fatal(err)
	}

	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	dateRe := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	for _, r := range recs {
		for _, f := range AllFields() {
			if r.String(f) == "" {
				t.Errorf("field %s empty", f)
			}
		}

		if got, want := r.String(FullName), r.String(FirstName)+" "+r.String(LastName); got != want {
			t.Errorf("fullName = %q, want %q", got, want)
		}
		if !strings.Contains(r.String(Email), "@") {
			t.Errorf("email %q has no @", r.String(Email))
		}
		if !uuidRe.MatchString(r.String(UUID)) {
			t.Errorf("uuid %q is not a v4 uuid", r.String(UUID))
		}
		if !dateRe.MatchString(r.String(Birthday)) {
			t.Errorf("birthday %q is not a date", r.String(Birthday))
		}

		v, _ := r.Get(Age)
		age, ok := v.(int)
		if !ok {
			t.Fatalf("age is %T, want int", v)
		}
		if age < minAge || age > maxAge {
			t.Errorf("age %d out of range", age)
		}
	}
}

func TestGenerateSeedDeterministic(t *testing.T) {
	fields := NewFieldSet(FirstName, Email, UUID, Birthday)

	a, err := newTestGenerator(42).Generate(context.Background(), 5, fields)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newTestGenerator(42).Generate(context.Background(), 5, fields)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		for _, f := range fields.Fields() {
			if a[i].String(f) != b[i].String(f) {
				t.Errorf("record %d field %s: %q != %q", i, f, a[i].String(f), b[i].String(f))
			}
		}
	}
}

func TestGenerateCanceled(t *testing.T) {
	g := newTestGenerator(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, 3, DefaultFields())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday passed", time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), 36},
		{"birthday today", time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC), 36},
		{"birthday ahead", time.Date(1990, 3, 2, 0, 0, 0, 0, time.UTC), 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ageAt(tt.dob, fixedNow); got != tt.want {
				t.Errorf("ageAt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []Field
		wantErr bool
	}{
		{"single", "email", []Field{Email}, false},
		{"canonical order", "email, firstName", []Field{FirstName, Email}, false},
		{"empty", "", []Field{}, false},
		{"duplicates", "zip,zip", []Field{Zip}, false},
		{"unknown", "email,shoeSize", nil, true},
		{"case sensitive", "FirstName", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownField) {
					t.Errorf("err = %v, want ErrUnknownField", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(NewFieldSet(tt.want...)) {
				t.Errorf("ParseFields(%q) = %v, want %v", tt.in, got.Fields(), tt.want)
			}
		})
	}
}
