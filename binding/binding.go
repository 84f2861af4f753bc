// Package binding implements the upper-layer dispatch table (component E):
// a write-once registry of rules stating that header kind U may follow
// header kind L when some predicate over L's fields holds. It replaces the
// hand-written switch statements gopcap uses in link.go/internet.go (e.g.
// "switch e.EtherType { case ETHERTYPE_IPV4: ... }") with data a Packet can
// both evaluate at parse time and consult at build time to prefill the
// lower header's discriminator.
package binding

import (
	"fmt"
	"sort"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/header"
)

// Op combines a Binding's list of Equalities.
type Op int

const (
	// AND requires every Equality to hold (the default).
	AND Op = iota
	// OR requires at least one Equality to hold.
	OR
)

// Matcher evaluates a single field-value comparison against a lower header,
// given the field name it was bound to in an Equality, and (for the setter
// direction) supplies the constant value Packet.Add should assign when
// pre-filling that field.
type Matcher interface {
	Matches(h *header.Header, field string) bool
	// SetterValue returns the value to assign during Packet.Add, and true if
	// this matcher has one constant value to assign (Equals does; In/Any/
	// ByLambda do not and return false).
	SetterValue() (any, bool)
}

type equalsMatcher struct{ value any }

// Equals matches a field whose value is exactly v, and supplies v as the
// setter value when this binding's upper kind is added to a Packet.
func Equals(v any) Matcher { return equalsMatcher{value: v} }

func (m equalsMatcher) Matches(h *header.Header, field string) bool {
	v, ok := h.Get(field)
	return ok && v == m.value
}
func (m equalsMatcher) SetterValue() (any, bool) { return m.value, true }

type inMatcher struct{ values []any }

// In matches a field whose value is any of values. Carries no single setter
// value, since Packet.Add would have no basis to choose between them.
func In(values ...any) Matcher { return inMatcher{values: values} }

func (m inMatcher) Matches(h *header.Header, field string) bool {
	v, ok := h.Get(field)
	if !ok {
		return false
	}
	for _, want := range m.values {
		if v == want {
			return true
		}
	}
	return false
}
func (m inMatcher) SetterValue() (any, bool) { return nil, false }

type lambdaMatcher struct {
	fn func(h *header.Header) bool
}

// ByLambda matches using an arbitrary predicate over the lower header, for
// cases a simple equality can't express (e.g. MLD/MLQ disambiguation by ICMPv6
// body length). field is ignored.
func ByLambda(fn func(h *header.Header) bool) Matcher {
	return lambdaMatcher{fn: fn}
}
func (m lambdaMatcher) Matches(h *header.Header, _ string) bool { return m.fn(h) }
func (m lambdaMatcher) SetterValue() (any, bool)                { return nil, false }

type anyMatcher struct{}

// Any always matches; useful as a catch-all upper binding.
func Any() Matcher                                     { return anyMatcher{} }
func (anyMatcher) Matches(*header.Header, string) bool { return true }
func (anyMatcher) SetterValue() (any, bool)            { return nil, false }

type allMatcher struct{ ms []Matcher }

// All matches when every sub-matcher matches the same field, for stacking a
// constant equality with a lambda-style refinement in one Equality. Its
// setter value is the first sub-matcher's, since a conjunction can carry at
// most one concrete constant for the field.
func All(ms ...Matcher) Matcher { return allMatcher{ms: ms} }

func (m allMatcher) Matches(h *header.Header, field string) bool {
	for _, sub := range m.ms {
		if !sub.Matches(h, field) {
			return false
		}
	}
	return true
}

func (m allMatcher) SetterValue() (any, bool) {
	for _, sub := range m.ms {
		if v, ok := sub.SetterValue(); ok {
			return v, true
		}
	}
	return nil, false
}

// Equality is one (field, predicate) pair evaluated against the lower
// header during Resolve, and (for Equals) applied as a setter during
// Packet.Add.
type Equality struct {
	Field string
	Match Matcher
}

func (e Equality) matches(h *header.Header) bool {
	return e.Match.Matches(h, e.Field)
}

// Binding states that Upper may follow Lower in a Packet's header stack when
// Equalities (combined per Op) hold against the lower header's already-
// decoded fields.
type Binding struct {
	Lower, Upper header.ID
	Op           Op
	Equalities   []Equality
}

func (b Binding) specificity() int { return len(b.Equalities) }

func (b Binding) matches(lower *header.Header) bool {
	if len(b.Equalities) == 0 {
		return true
	}
	switch b.Op {
	case OR:
		for _, eq := range b.Equalities {
			if eq.matches(lower) {
				return true
			}
		}
		return false
	default: // AND
		for _, eq := range b.Equalities {
			if !eq.matches(lower) {
				return false
			}
		}
		return true
	}
}

// Registry is a write-once table of Bindings, populated during header-kind
// static initialization and safe for concurrent read-only use thereafter.
type Registry struct {
	bindings []Binding
	seq      int
	order    map[*Binding]int
}

// NewRegistry returns an empty, mutable Registry. Most callers share
// Default instead of creating their own.
func NewRegistry() *Registry { return &Registry{} }

// Default is the process-wide registry header kinds register themselves
// into from their package init functions, for convenience; a Packet may be
// built against any Registry, not just this one.
var Default = NewRegistry()

// Bind registers a new binding. It is intended to be called only during
// static initialization (package init); the registry is not safe for
// concurrent mutation.
func (r *Registry) Bind(lower, upper header.ID, op Op, eqs ...Equality) {
	r.bindings = append(r.bindings, Binding{Lower: lower, Upper: upper, Op: op, Equalities: eqs})
}

// candidates returns every binding registered for lowerKind, most specific
// first, ties broken by registration order.
func (r *Registry) candidates(lowerKind header.ID) []Binding {
	var out []Binding
	for _, b := range r.bindings {
		if b.Lower == lowerKind {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].specificity() > out[j].specificity()
	})
	return out
}

// Resolve returns the upper header kind that should follow lower, given its
// already-decoded fields. It returns packetgen.ErrAmbiguousBinding if two
// bindings of equal, highest specificity both match.
func (r *Registry) Resolve(lowerKind header.ID, lower *header.Header) (header.ID, bool, error) {
	candidates := r.candidates(lowerKind)
	for i := 0; i < len(candidates); i++ {
		if !candidates[i].matches(lower) {
			continue
		}
		// Check for a same-specificity tie among the remaining matches.
		spec := candidates[i].specificity()
		matchedUpper := candidates[i].Upper
		ambiguous := false
		for j := i + 1; j < len(candidates) && candidates[j].specificity() == spec; j++ {
			if candidates[j].matches(lower) && candidates[j].Upper != matchedUpper {
				ambiguous = true
				break
			}
		}
		if ambiguous {
			return "", false, errtrace.Wrap(fmt.Errorf("%w: multiple kind-%d bindings from %s match", packetgen.ErrAmbiguousBinding, spec, lowerKind))
		}
		return matchedUpper, true, nil
	}
	return "", false, nil
}

// DefaultsFor returns the field equalities that should be applied to lower
// when upper is pushed onto a Packet on top of it, i.e. the setters that
// make lower advertise upper as its next protocol. Only Equalities whose
// Matcher supplies a concrete SetterValue are returned. For an AND binding
// every such equality must hold simultaneously, so all are applied; for an
// OR binding any one suffices, so only the first with a concrete setter
// value is applied — applying all of them would needlessly overwrite
// fields a caller may already have set (e.g. forcing both source and
// destination port to the same well-known value). The result is nil only
// when no binding links lower to upper; a binding with no constant setter
// yields an empty, non-nil slice.
func (r *Registry) DefaultsFor(lower, upper header.ID) []Equality {
	var out []Equality
	for _, b := range r.bindings {
		if b.Lower != lower || b.Upper != upper {
			continue
		}
		if out == nil {
			out = []Equality{}
		}
		for _, eq := range b.Equalities {
			if _, ok := eq.Match.SetterValue(); ok {
				out = append(out, eq)
				if b.Op == OR {
					break
				}
			}
		}
	}
	return out
}
