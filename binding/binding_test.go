package binding

import (
	"errors"
	"testing"

	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

func newUDPLikeHeader(t *testing.T, dport uint16) (*header.Header, header.ID) {
	t.Helper()
	id := header.ID("test-udp")
	k := header.NewKind("TestUDP", id)
	k.DefineField(header.FieldDef{Name: "dport", Codec: field.Uint16BE})
	h := k.New()
	if err := h.Set("dport", dport); err != nil {
		t.Fatalf("Set(dport): %v", err)
	}
	return h, id
}

func TestResolveMoreSpecificBindingWins(t *testing.T) {
	r := NewRegistry()
	lower, lowerID := newUDPLikeHeader(t, 69)

	general := header.ID("test-general")
	specific := header.ID("test-specific")

	r.Bind(lowerID, general, AND) // zero equalities: matches everything
	r.Bind(lowerID, specific, AND, Equality{Field: "dport", Match: Equals(uint16(69))})

	got, ok, err := r.Resolve(lowerID, lower)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || got != specific {
		t.Errorf("Resolve = %q, %v; want %q, true (more specific binding should win)", got, ok, specific)
	}
}

func TestResolveAmbiguousBindingFails(t *testing.T) {
	r := NewRegistry()
	lower, lowerID := newUDPLikeHeader(t, 69)

	x := header.ID("test-x")
	y := header.ID("test-y")
	r.Bind(lowerID, x, AND, Equality{Field: "dport", Match: Equals(uint16(69))})
	r.Bind(lowerID, y, AND, Equality{Field: "dport", Match: Equals(uint16(69))})

	_, _, err := r.Resolve(lowerID, lower)
	if !errors.Is(err, packetgen.ErrAmbiguousBinding) {
		t.Fatalf("Resolve error = %v, want ErrAmbiguousBinding", err)
	}
}

func TestResolveNoMatchReturnsNotOK(t *testing.T) {
	r := NewRegistry()
	lower, lowerID := newUDPLikeHeader(t, 80)

	x := header.ID("test-x2")
	r.Bind(lowerID, x, AND, Equality{Field: "dport", Match: Equals(uint16(69))})

	_, ok, err := r.Resolve(lowerID, lower)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("Resolve: expected no match, got one")
	}
}

func TestOrBindingMatchesAnyEquality(t *testing.T) {
	r := NewRegistry()
	upper := header.ID("test-tftp-like")

	lowerID := header.ID("test-udp-or")
	k := header.NewKind("TestUDPOr", lowerID)
	k.DefineField(header.FieldDef{Name: "sport", Codec: field.Uint16BE})
	k.DefineField(header.FieldDef{Name: "dport", Codec: field.Uint16BE})

	r.Bind(lowerID, upper, OR,
		Equality{Field: "dport", Match: Equals(uint16(69))},
		Equality{Field: "sport", Match: Equals(uint16(69))},
	)

	h := k.New()
	_ = h.Set("sport", uint16(69))
	_ = h.Set("dport", uint16(12345))

	got, ok, err := r.Resolve(lowerID, h)
	if err != nil || !ok || got != upper {
		t.Fatalf("Resolve = %q, %v, %v; want %q, true, nil", got, ok, err, upper)
	}
}

func TestAllMatcherConjoinsOnOneField(t *testing.T) {
	r := NewRegistry()
	lower, lowerID := newUDPLikeHeader(t, 69)

	upper := header.ID("test-all-upper")
	r.Bind(lowerID, upper, AND, Equality{Field: "dport", Match: All(
		Equals(uint16(69)),
		ByLambda(func(h *header.Header) bool {
			v, _ := h.Get("dport")
			return v.(uint16) < 1024
		}),
	)})

	got, ok, err := r.Resolve(lowerID, lower)
	if err != nil || !ok || got != upper {
		t.Fatalf("Resolve = %q, %v, %v; want %q, true, nil", got, ok, err, upper)
	}

	defaults := r.DefaultsFor(lowerID, upper)
	if len(defaults) != 1 {
		t.Fatalf("DefaultsFor returned %d equalities, want 1", len(defaults))
	}
	if v, okSetter := defaults[0].Match.SetterValue(); !okSetter || v != uint16(69) {
		t.Errorf("All setter value = %v, %v; want 69, true (the Equals member's constant)", v, okSetter)
	}
}

func TestDefaultsForANDAppliesEveryEquality(t *testing.T) {
	r := NewRegistry()
	lowerID := header.ID("test-ip-and")
	upperID := header.ID("test-upper-and")
	r.Bind(lowerID, upperID, AND,
		Equality{Field: "protocol", Match: Equals(uint8(17))},
		Equality{Field: "flag", Match: Equals(uint8(1))},
	)

	defaults := r.DefaultsFor(lowerID, upperID)
	if len(defaults) != 2 {
		t.Fatalf("DefaultsFor returned %d equalities, want 2", len(defaults))
	}
}

func TestDefaultsForORAppliesOnlyFirstSetter(t *testing.T) {
	r := NewRegistry()
	lowerID := header.ID("test-udp-or-defaults")
	upperID := header.ID("test-tftp-or-defaults")
	r.Bind(lowerID, upperID, OR,
		Equality{Field: "dport", Match: Equals(uint16(69))},
		Equality{Field: "sport", Match: Equals(uint16(69))},
	)

	defaults := r.DefaultsFor(lowerID, upperID)
	if len(defaults) != 1 {
		t.Fatalf("DefaultsFor returned %d equalities, want 1 (OR applies only the first)", len(defaults))
	}
	if defaults[0].Field != "dport" {
		t.Errorf("DefaultsFor()[0].Field = %q, want dport", defaults[0].Field)
	}
}
