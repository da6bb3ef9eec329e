package ids

import (
	"errors"
	"testing"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"api-migration", "a", "a-b-c", "onboarding"}
	for _, s := range valid {
		if err := ValidateSlug(s); err != nil {
			t.Errorf("ValidateSlug(%q) = %v, want nil", s, err)
		}
	}

	cases := []struct {
		slug string
		kind taskerr.Kind
	}{
		{"", taskerr.EmptyID},
		{"-leading", taskerr.InvalidKebabCase},
		{"trailing-", taskerr.InvalidKebabCase},
		{"Has-Upper", taskerr.InvalidKebabCase},
		{"has_underscore", taskerr.InvalidKebabCase},
		{"has space", taskerr.InvalidKebabCase},
		{"has.dot", taskerr.InvalidKebabCase},
	}
	for _, c := range cases {
		err := ValidateSlug(c.slug)
		if err == nil {
			t.Errorf("ValidateSlug(%q) = nil, want error", c.slug)
			continue
		}
		if kind, ok := taskerr.KindOf(err); !ok || kind != c.kind {
			t.Errorf("ValidateSlug(%q) kind = %v, want %v", c.slug, kind, c.kind)
		}
	}
}

func TestFormatTaskID(t *testing.T) {
	cases := []struct {
		slug   string
		number int
		want   string
	}{
		{"api-migration", 1, "api-migration:001"},
		{"api-migration", 42, "api-migration:042"},
		{"api-migration", 999, "api-migration:999"},
		{"api-migration", 1000, "api-migration:1000"},
	}
	for _, c := range cases {
		if got := FormatTaskID(c.slug, c.number); got != c.want {
			t.Errorf("FormatTaskID(%q, %d) = %q, want %q", c.slug, c.number, got, c.want)
		}
	}
}

func TestParseTaskIDInternal(t *testing.T) {
	internalID, isInternal, slug, number, err := ParseTaskID("42")
	if err != nil {
		t.Fatalf("ParseTaskID(42) error: %v", err)
	}
	if !isInternal || internalID != 42 || slug != "" || number != 0 {
		t.Errorf("ParseTaskID(42) = (%d, %v, %q, %d), want (42, true, \"\", 0)", internalID, isInternal, slug, number)
	}
}

func TestParseTaskIDExternal(t *testing.T) {
	internalID, isInternal, slug, number, err := ParseTaskID("api-migration:007")
	if err != nil {
		t.Fatalf("ParseTaskID error: %v", err)
	}
	if isInternal || internalID != 0 || slug != "api-migration" || number != 7 {
		t.Errorf("ParseTaskID(api-migration:007) = (%d, %v, %q, %d), want (0, false, \"api-migration\", 7)", internalID, isInternal, slug, number)
	}
}

func TestParseTaskIDErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind taskerr.Kind
	}{
		{"empty", "", taskerr.EmptyID},
		{"zero", "0", taskerr.InvalidTaskID},
		{"negative", "-5", taskerr.InvalidTaskID},
		{"non-numeric", "abc", taskerr.InvalidTaskID},
		{"empty slug", ":001", taskerr.InvalidTaskID},
		{"empty number", "api-migration:", taskerr.InvalidTaskID},
		{"non-decimal number", "api-migration:abc", taskerr.InvalidTaskID},
		{"zero number", "api-migration:000", taskerr.InvalidTaskID},
		{"bad slug grammar", "Has-Upper:001", taskerr.InvalidKebabCase},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, _, _, err := ParseTaskID(c.raw)
			if err == nil {
				t.Fatalf("ParseTaskID(%q) = nil, want error", c.raw)
			}
			if kind, ok := taskerr.KindOf(err); !ok || kind != c.kind {
				t.Errorf("ParseTaskID(%q) kind = %v, want %v", c.raw, kind, c.kind)
			}
			if !errors.Is(err, taskerr.Sentinel(c.kind)) {
				t.Errorf("ParseTaskID(%q) should match Sentinel(%v) via errors.Is", c.raw, c.kind)
			}
		})
	}
}

func TestParseTaskIDRoundTrip(t *testing.T) {
	external := FormatTaskID("api-migration", 12)
	_, isInternal, slug, number, err := ParseTaskID(external)
	if err != nil {
		t.Fatalf("ParseTaskID(%q) error: %v", external, err)
	}
	if isInternal || slug != "api-migration" || number != 12 {
		t.Errorf("round trip mismatch: slug=%q number=%d isInternal=%v", slug, number, isInternal)
	}
}
