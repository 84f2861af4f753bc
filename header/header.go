package header

import (
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/field"
)

// Header is a decoded instance of a Kind: the kind's field schema plus this
// instance's current field values. The zero Header is not usable; create
// one with Kind.New or by parsing bytes with Kind.Read.
type Header struct {
	kind   *Kind
	values map[string]any
	// tailLength is how many bytes were left over in the buffer passed to
	// Kind.Read after this header's own fields (and reparse, if any) were
	// decoded. It lets a binding predicate distinguish upper kinds by how
	// much data follows without the header itself having to declare a
	// trailing opaque field just to expose that count (see TailLength).
	tailLength int
}

// Kind returns the static descriptor this header was created from. If the
// header was subject to a polymorphic re-parse (see Kind.SetReparse), this
// returns the subkind that re-parse switched to, not the original kind Read
// was called on.
func (h *Header) Kind() *Kind { return h.kind }

// ProtocolName returns the kind's human-readable protocol name.
func (h *Header) ProtocolName() string { return h.kind.name }

// HeaderID returns the kind's stable binding-table identifier.
func (h *Header) HeaderID() ID { return h.kind.id }

// TailLength returns how many bytes remained in the buffer passed to
// Kind.Read once this header's own fields were decoded. A freshly
// constructed header (Kind.New) reports zero.
func (h *Header) TailLength() int { return h.tailLength }

// Get returns the named field's current value, satisfying field.Header so
// Builders can read already-decoded fields.
func (h *Header) Get(name string) (any, bool) {
	v, ok := h.values[name]
	return v, ok
}

// MustGet returns the named field's value, panicking if it doesn't exist.
// Intended for use inside a Kind's own Calc/Reparse hooks, where the field
// name is a compile-time constant known to exist.
func (h *Header) MustGet(name string) any {
	v, ok := h.values[name]
	if !ok {
		panic(fmt.Sprintf("header: kind %q has no field %q", h.kind.name, name))
	}
	return v
}

// Set assigns the named field's value, running it through the field's codec
// so malformed assignments (bad enum name, wrong-length address, etc.) fail
// immediately with ErrInvalidValue.
func (h *Header) Set(name string, value any) error {
	idx, ok := h.kind.index[name]
	if !ok {
		return errtrace.Wrap(fmt.Errorf("%w: kind %q has no field %q", packetgen.ErrInvalidValue, h.kind.name, name))
	}
	def := h.kind.fields[idx]
	// Round-trip through Write/Read so the stored value is always in the
	// codec's canonical decoded form, the same form Read would have
	// produced, regardless of what union member the caller assigned.
	encoded, err := def.Codec.Write(value, h.builderParam(def))
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("field %q: %w", name, err))
	}
	var decoded any
	if wr, ok := def.Codec.(field.WholeReader); ok {
		// A builder-parametrized codec can't decode through its Read here:
		// the parametrizing field (array counter, string length) may not
		// reflect the newly assigned value yet, so decode the whole encoded
		// buffer instead.
		decoded, err = wr.ReadAll(encoded)
	} else {
		decoded, _, err = def.Codec.Read(encoded, h.builderParam(def))
	}
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("field %q: %w", name, err))
	}
	h.values[name] = decoded
	return nil
}

func (h *Header) builderParam(def FieldDef) any {
	if def.Builder == nil {
		return nil
	}
	return def.Builder(h)
}

// Read decodes buf field-by-field in declared order, evaluating each
// field's Builder (if any) against the already-materialised fields, then
// invokes the kind's Reparse hook, if any. It returns the number of bytes
// consumed from buf.
func (k *Kind) Read(buf []byte) (*Header, int, error) {
	h := k.New()
	off := 0
	for _, def := range k.fields {
		param := h.builderParam(def)
		if off > len(buf) {
			return nil, 0, errtrace.Wrap(fmt.Errorf("%w: field %q of %s", packetgen.ErrTruncated, def.Name, k.name))
		}
		value, consumed, err := def.Codec.Read(buf[off:], param)
		if err != nil {
			return nil, 0, errtrace.Wrap(fmt.Errorf("field %q of %s: %w", def.Name, k.name, err))
		}
		h.values[def.Name] = value
		off += consumed
	}
	if k.reparse != nil {
		consumed, err := k.reparse(h, buf[off:])
		if err != nil {
			return nil, 0, errtrace.Wrap(fmt.Errorf("reparse of %s: %w", k.name, err))
		}
		off += consumed
	}
	h.tailLength = len(buf) - off
	return h, off, nil
}

// ToBytes serializes h in field declaration order. Calculable fields are
// not recomputed here — call Packet.Recalc first if they need to reflect
// the current packet state.
func (h *Header) ToBytes() ([]byte, error) {
	var out []byte
	for _, def := range h.kind.fields {
		param := h.builderParam(def)
		b, err := def.Codec.Write(h.values[def.Name], param)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("field %q of %s: %w", def.Name, h.kind.name, err))
		}
		out = append(out, b...)
	}
	return out, nil
}

// Recalc invokes the kind's Calc hook, if any, giving it access to the rest
// of the packet stack via ctx so it can reconcile length/checksum/counter
// fields. It is a no-op if the kind declared no Calc hook.
func (h *Header) Recalc(ctx RecalcContext) error {
	if h.kind.calc == nil {
		return nil
	}
	return errtrace.Wrap(h.kind.calc(h, ctx))
}

// Fields returns the kind's field names in declared (wire) order.
func (k *Kind) Fields() []string {
	names := make([]string, len(k.fields))
	for i, f := range k.fields {
		names[i] = f.Name
	}
	return names
}

var _ field.Header = (*Header)(nil)
