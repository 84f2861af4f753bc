package header

import (
	"context"
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/qmuntal/stateless"
)

// Variant associates a discriminator field's value with the subkind whose
// remaining fields should be read once that value is seen. Match is
// compared to the discriminator field's decoded value with ==, so it must
// be a comparable type (the same type the discriminator's codec decodes to).
type Variant struct {
	Match any
	Kind  *Kind
}

const (
	reparseStateBase     = "base"
	reparseTriggerSelect = "select"
)

// NewDiscriminatorReparse builds a Kind.SetReparse hook for the polymorphic
// re-parse pattern: a header reads a discriminator field, then re-reads its
// remaining bytes as one of several subkinds depending on that field's
// value (e.g. TFTP's opcode selecting RRQ/WRQ/DATA/ACK/ERROR). Dispatch
// itself is a github.com/qmuntal/stateless machine with one guarded
// transition per variant, so the set of variants stays data — introspectable
// and extensible — rather than a hand-written switch.
//
// On a match, the variant's fields are decoded from rest and merged into h's
// value map, and h's Kind is switched to the variant so later Get/Set calls
// and ToBytes see the subkind's full field list (base fields first, then the
// variant's own). A discriminator value matching no variant is left as an
// opaque tail: no additional bytes are consumed and no error is returned,
// since an unrecognised discriminator is not on its own malformed input.
func NewDiscriminatorReparse(discriminatorField string, variants ...Variant) func(h *Header, rest []byte) (int, error) {
	byState := make(map[stateless.State]Variant, len(variants))
	for _, v := range variants {
		byState[v.Kind.name] = v
	}

	return func(h *Header, rest []byte) (int, error) {
		disc, ok := h.Get(discriminatorField)
		if !ok {
			return 0, fmt.Errorf("%w: discriminator field %q not found", packetgen.ErrInvalidValue, discriminatorField)
		}

		sm := stateless.NewStateMachine(stateless.State(reparseStateBase))
		cfg := sm.Configure(stateless.State(reparseStateBase))
		for _, v := range variants {
			v := v
			cfg.Permit(reparseTriggerSelect, stateless.State(v.Kind.name),
				func(_ context.Context, _ ...any) bool { return disc == v.Match })
		}

		if err := sm.FireCtx(context.Background(), reparseTriggerSelect); err != nil {
			// No variant's guard matched this discriminator value: treat the
			// remainder as an opaque, unrecognised tail rather than an error.
			return 0, nil
		}
		state, err := sm.State(context.Background())
		if err != nil {
			return 0, errtrace.Wrap(err)
		}
		variant, ok := byState[state]
		if !ok {
			return 0, nil
		}

		sub, consumed, err := variant.Kind.Read(rest)
		if err != nil {
			return 0, errtrace.Wrap(fmt.Errorf("subkind %s: %w", variant.Kind.name, err))
		}
		for name, value := range sub.values {
			h.values[name] = value
		}
		h.kind = variant.Kind.WithBase(h.kind)
		return consumed, nil
	}
}

// WithBase returns a Kind equal to k but whose field list is prefixed with
// base's fields, so ToBytes/Fields on the result emit base's fields
// (typically a discriminator like an opcode) followed by k's own — matching
// what was actually consumed from the wire during a polymorphic re-parse.
// The result keeps base's ID: a re-parsed header is still fundamentally an
// instance of the protocol it was read as (Packet.Is(base.ID()) stays
// true), merely specialized by k's fields; k's Name is kept for
// human-readable display. Catalog packages also use this directly to build
// a subkind's standalone, buildable Kind (one that includes the
// discriminator field with its own default) from a tail-only Kind used as
// a NewDiscriminatorReparse target.
func (k *Kind) WithBase(base *Kind) *Kind {
	merged := base.Clone(k.name, base.id)
	for _, def := range k.fields {
		if _, exists := merged.index[def.Name]; !exists {
			merged.DefineField(def)
		}
	}
	merged.calc = k.calc
	if k.bits != nil {
		if merged.bits == nil {
			merged.bits = map[string]bitGroup{}
		}
		for n, g := range k.bits {
			merged.bits[n] = g
		}
	}
	return merged
}
