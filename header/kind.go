// Package header implements the header schema / field registry (component
// B) and bit-field packing (component C) of the packet framework: a Kind is
// the static, declaration-time descriptor of a protocol header's field
// layout; a Header is a decoded instance of one.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/picatz/packetgen/field"
)

// ID is a stable identifier for a header kind, used as the key in binding
// tables and in Packet.Is/Packet.Header. Two Kinds with the same field
// layout are still distinct if their ID differs — identity is by kind, not
// by layout, per spec.md's Header invariant.
type ID string

// FieldDef is one entry in a Kind's field list.
type FieldDef struct {
	Name       string
	Codec      field.Codec
	Default    any // overrides Codec.Default() when non-nil
	Builder    field.Builder
	Calculable bool // marks a field the kind's Calc hook reconciles; Packet.Recalc does not read the flag itself
}

// RecalcContext gives a Kind's Calc hook a view of the packet stack around
// the header being reconciled, without the header package depending on the
// packet package (which itself depends on header).
type RecalcContext interface {
	// Payload returns the bytes that will follow this header on the wire:
	// every header above it, serialized, followed by the packet's trailing
	// payload buffer.
	Payload() []byte
	// Lower returns the header directly below this one in the stack, or nil
	// if this is the outermost header.
	Lower() *Header
	// Upper returns the header directly above this one in the stack, or nil
	// if this is the innermost header.
	Upper() *Header
}

// Kind is the static descriptor for a header: an ordered, uniquely-named
// field list plus protocol metadata. Kinds are built once (normally in a
// package init) and are immutable once registered with a binding.Registry;
// DefineField and friends are declaration-time-only mutators.
type Kind struct {
	name   string
	id     ID
	endian binary.ByteOrder
	fields []FieldDef
	index  map[string]int
	bits   map[string]bitGroup // host field name -> bit-group
	calc   func(h *Header, ctx RecalcContext) error
	// reparse, when set, is consulted after the base fields have been read;
	// it may consume additional bytes and switch h's effective Kind to a
	// subkind (see header.Kind.SetReparse).
	reparse func(h *Header, rest []byte) (consumed int, err error)
}

// NewKind declares a new header kind with no fields, and registers it under
// id so packet.Parse can look up the concrete Kind a binding.Registry only
// knows by ID. name is the human-readable protocol name.
func NewKind(name string, id ID) *Kind {
	k := &Kind{name: name, id: id, endian: binary.BigEndian, index: map[string]int{}}
	registry[id] = k
	return k
}

// SetEndian changes the byte order endian-deferred integer codecs
// (field.Uint16 and friends) resolve to on this kind. New kinds default to
// network (big-endian) order; SetEndian only affects fields defined after
// the call, so it belongs at the top of a kind's declaration.
func (k *Kind) SetEndian(order binary.ByteOrder) *Kind {
	k.endian = order
	return k
}

var registry = map[ID]*Kind{}

// Lookup returns the Kind registered under id by a prior NewKind call, if
// any. Used by packet.Parse to turn a binding.Registry's resolved ID back
// into a concrete Kind to decode the next header with.
func Lookup(id ID) (*Kind, bool) {
	k, ok := registry[id]
	return k, ok
}

func (k *Kind) Name() string { return k.name }
func (k *Kind) ID() ID       { return k.id }

// DefineField appends a field to the end of the kind's schema. An
// endian-deferred integer codec (field.Uint16 and friends) is resolved
// against the kind's endian here, so the declaration doesn't repeat the
// byte order per field.
func (k *Kind) DefineField(def FieldDef) *Kind {
	if _, exists := k.index[def.Name]; exists {
		panic(fmt.Sprintf("header: field %q already defined on kind %q", def.Name, k.name))
	}
	k.index[def.Name] = len(k.fields)
	k.fields = append(k.fields, k.resolveEndian(def))
	return k
}

func (k *Kind) resolveEndian(def FieldDef) FieldDef {
	if d, ok := def.Codec.(field.EndianDeferred); ok {
		def.Codec = d.WithOrder(k.endian)
	}
	return def
}

// DefineFieldBefore inserts def immediately before the field named target.
func (k *Kind) DefineFieldBefore(target string, def FieldDef) *Kind {
	idx := k.mustIndex(target)
	k.insertAt(idx, def)
	return k
}

// DefineFieldAfter inserts def immediately after the field named target.
func (k *Kind) DefineFieldAfter(target string, def FieldDef) *Kind {
	idx := k.mustIndex(target)
	k.insertAt(idx+1, def)
	return k
}

func (k *Kind) insertAt(idx int, def FieldDef) {
	if _, exists := k.index[def.Name]; exists {
		panic(fmt.Sprintf("header: field %q already defined on kind %q", def.Name, k.name))
	}
	k.fields = append(k.fields, FieldDef{})
	copy(k.fields[idx+1:], k.fields[idx:])
	k.fields[idx] = k.resolveEndian(def)
	k.reindex()
}

// DeleteField removes the named field. Used by subkinds that replace a
// parent's trailing body with alternative fields.
func (k *Kind) DeleteField(name string) *Kind {
	idx := k.mustIndex(name)
	k.fields = append(k.fields[:idx], k.fields[idx+1:]...)
	k.reindex()
	return k
}

// UpdateField changes a field's default or the underlying codec (e.g. to
// rebind an enum's name map). attr is "default" or "codec".
func (k *Kind) UpdateField(name, attr string, value any) *Kind {
	idx := k.mustIndex(name)
	switch attr {
	case "default":
		k.fields[idx].Default = value
	case "codec":
		c, ok := value.(field.Codec)
		if !ok {
			panic("header: UpdateField codec value must be a field.Codec")
		}
		if d, ok := c.(field.EndianDeferred); ok {
			c = d.WithOrder(k.endian)
		}
		k.fields[idx].Codec = c
	default:
		panic(fmt.Sprintf("header: unknown field attribute %q", attr))
	}
	return k
}

// SetCalc installs the Kind's automatic-field reconciliation hook, invoked
// by Packet.Recalc innermost-to-outermost.
func (k *Kind) SetCalc(fn func(h *Header, ctx RecalcContext) error) *Kind {
	k.calc = fn
	return k
}

// SetReparse installs the polymorphic re-parse hook used by headers whose
// trailing layout depends on an earlier-read discriminator (e.g. TFTP's
// opcode). fn is invoked with the bytes remaining after the base fields
// have been decoded, and returns how many more bytes it consumed.
func (k *Kind) SetReparse(fn func(h *Header, rest []byte) (consumed int, err error)) *Kind {
	k.reparse = fn
	return k
}

// Clone returns a copy of k under a new name/id, for declaring a subkind
// that inherits the parent's field list before applying DeleteField/
// DefineField* of its own. The clone's field list, bit-groups and calc hook
// are copied; reparse is not (a subkind is a re-parse target, not a source).
func (k *Kind) Clone(name string, id ID) *Kind {
	clone := &Kind{
		name:   name,
		id:     id,
		endian: k.endian,
		fields: append([]FieldDef{}, k.fields...),
		index:  make(map[string]int, len(k.index)),
		calc:   k.calc,
	}
	for n, i := range k.index {
		clone.index[n] = i
	}
	if k.bits != nil {
		clone.bits = make(map[string]bitGroup, len(k.bits))
		for n, g := range k.bits {
			clone.bits[n] = g
		}
	}
	return clone
}

func (k *Kind) mustIndex(name string) int {
	idx, ok := k.index[name]
	if !ok {
		panic(fmt.Sprintf("header: kind %q has no field %q", k.name, name))
	}
	return idx
}

func (k *Kind) reindex() {
	k.index = make(map[string]int, len(k.fields))
	for i, f := range k.fields {
		k.index[f.Name] = i
	}
}

// New returns a fresh Header instance of this kind, with every field set to
// its declared (or codec) default.
func (k *Kind) New() *Header {
	h := &Header{kind: k, values: make(map[string]any, len(k.fields))}
	for _, f := range k.fields {
		if f.Default != nil {
			h.values[f.Name] = f.Default
		} else {
			h.values[f.Name] = f.Codec.Default()
		}
	}
	return h
}
