// Package packet implements the packet composition engine (component D): a
// layered stack of Headers on top of a raw payload buffer, upper-layer
// dispatch via a binding.Registry, automatic recalculation of length/
// checksum/counter fields, and round-tripping between wire bytes and the
// structured stack. It generalizes gopcap's fixed three-layer
// LinkLayer/InternetLayer/TransportLayer chain to an arbitrary-depth stack.
package packet

import (
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/header"
)

// Packet is an ordered, non-empty stack of Header instances plus a trailing
// opaque payload buffer (possibly empty).
type Packet struct {
	registry *binding.Registry
	headers  []*header.Header
	payload  []byte
}

// New returns an empty Packet bound to registry. Most callers pass
// binding.Default.
func New(registry *binding.Registry) *Packet {
	return &Packet{registry: registry}
}

// Add pushes a header of kind onto the stack, applying overrides after the
// binding registry's defaults. If the stack is non-empty, the current top's
// fields are updated per the matching binding's setters so that, on
// serialization, the lower header advertises kind as its next protocol.
// Add fails with ErrUnboundStack if no binding links the current top to kind.
func (p *Packet) Add(kind *header.Kind, overrides map[string]any) (*header.Header, error) {
	h := kind.New()
	if len(p.headers) > 0 {
		top := p.headers[len(p.headers)-1]
		defaults := p.registry.DefaultsFor(top.HeaderID(), kind.ID())
		if defaults == nil {
			if _, _, err := p.registry.Resolve(top.HeaderID(), top); err != nil {
				return nil, errtrace.Wrap(err)
			}
			return nil, errtrace.Wrap(fmt.Errorf("%w: no binding from %s to %s", packetgen.ErrUnboundStack, top.HeaderID(), kind.ID()))
		}
		for _, eq := range defaults {
			v, _ := eq.Match.SetterValue()
			if err := top.Set(eq.Field, v); err != nil {
				return nil, errtrace.Wrap(err)
			}
		}
	}
	for name, v := range overrides {
		if err := h.Set(name, v); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	p.headers = append(p.headers, h)
	return h, nil
}

// Is reports whether the stack contains a header of the given kind.
func (p *Packet) Is(id header.ID) bool {
	for _, h := range p.headers {
		if h.HeaderID() == id {
			return true
		}
	}
	return false
}

// Header returns the index-th header of the given kind (0 is the first
// occurrence, in stack order). ok is false if there aren't that many.
func (p *Packet) Header(id header.ID, index int) (*header.Header, bool) {
	n := 0
	for _, h := range p.headers {
		if h.HeaderID() == id {
			if n == index {
				return h, true
			}
			n++
		}
	}
	return nil, false
}

// Outermost returns the first (link-layer) header of the stack.
func (p *Packet) Outermost() *header.Header {
	if len(p.headers) == 0 {
		return nil
	}
	return p.headers[0]
}

// Innermost returns the last header of the stack, the one the trailing
// payload directly follows.
func (p *Packet) Innermost() *header.Header {
	if len(p.headers) == 0 {
		return nil
	}
	return p.headers[len(p.headers)-1]
}

// Payload returns the packet's trailing opaque payload, following the
// innermost header.
func (p *Packet) Payload() []byte { return p.payload }

// SetPayload replaces the packet's trailing opaque payload.
func (p *Packet) SetPayload(b []byte) { p.payload = b }

// Headers returns the header stack in wire order (outermost first).
func (p *Packet) Headers() []*header.Header {
	out := make([]*header.Header, len(p.headers))
	copy(out, p.headers)
	return out
}

// ToBytes calls Recalc, then concatenates each header's serialization
// (outermost to innermost) followed by the trailing payload.
func (p *Packet) ToBytes() ([]byte, error) {
	if err := p.Recalc(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	var out []byte
	for _, h := range p.headers {
		b, err := h.ToBytes()
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		out = append(out, b...)
	}
	return append(out, p.payload...), nil
}

// Recalc updates length, checksum and counter fields declared calculable
// per-header, innermost-to-outermost, so a checksum computed over an upper
// layer sees that layer's already-finalized bytes.
func (p *Packet) Recalc() error {
	for i := len(p.headers) - 1; i >= 0; i-- {
		ctx := &recalcContext{p: p, idx: i}
		if err := p.headers[i].Recalc(ctx); err != nil {
			return errtrace.Wrap(fmt.Errorf("header %d (%s): %w", i, p.headers[i].ProtocolName(), err))
		}
	}
	return nil
}

// Parse decodes data as a stack of headers starting with first, following
// registry's bindings to decide each subsequent header's kind from the one
// before it, until no binding matches (the remainder becomes the trailing
// payload) or a binding match is ambiguous (ErrAmbiguousBinding).
func Parse(registry *binding.Registry, data []byte, first *header.Kind) (*Packet, error) {
	p := &Packet{registry: registry}
	off := 0
	kind := first
	for kind != nil {
		h, consumed, err := kind.Read(data[off:])
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%w: %s at offset %d: %v", packetgen.ErrUnparseablePacket, kind.Name(), off, err))
		}
		p.headers = append(p.headers, h)
		off += consumed

		nextID, ok, err := registry.Resolve(h.HeaderID(), h)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		if !ok {
			break
		}
		nextKind, ok := header.Lookup(nextID)
		if !ok {
			break
		}
		kind = nextKind
	}
	p.payload = append([]byte{}, data[off:]...)
	return p, nil
}

type recalcContext struct {
	p   *Packet
	idx int
}

func (c *recalcContext) Lower() *header.Header {
	if c.idx == 0 {
		return nil
	}
	return c.p.headers[c.idx-1]
}

func (c *recalcContext) Upper() *header.Header {
	if c.idx == len(c.p.headers)-1 {
		return nil
	}
	return c.p.headers[c.idx+1]
}

func (c *recalcContext) Payload() []byte {
	var out []byte
	for i := c.idx + 1; i < len(c.p.headers); i++ {
		b, err := c.p.headers[i].ToBytes()
		if err != nil {
			// Calc hooks that need Payload() run after earlier headers have
			// already been validated by Recalc's own pass; a failure here
			// means an upper header's fields are malformed in a way ToBytes
			// alone can detect, which Recalc surfaces via its own err return
			// on that header's turn. Returning the payload gathered so far
			// keeps this method's signature simple.
			return out
		}
		out = append(out, b...)
	}
	return append(out, c.p.payload...)
}
