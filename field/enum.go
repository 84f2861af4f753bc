package field

import "strconv"

// Enum pairs a fixed-width integer codec with a bidirectional name<->value
// map. Write accepts either a name (string) or the raw integer; textual
// rendering (Render) returns the name when known, or the raw number
// otherwise.
type Enum struct {
	Base  Codec
	Names map[string]uint64
	// values is the inverse of Names, built lazily by Name.
	values map[uint64]string
}

// NewEnum returns an Enum codec wrapping base (normally one of the integer
// codecs) with the given name->value map.
func NewEnum(base Codec, names map[string]uint64) *Enum {
	return &Enum{Base: base, Names: names}
}

func (e *Enum) invert() map[uint64]string {
	if e.values == nil {
		e.values = make(map[uint64]string, len(e.Names))
		for name, v := range e.Names {
			e.values[v] = name
		}
	}
	return e.values
}

// Name returns the symbolic name for v, or false if v isn't in the map.
func (e *Enum) Name(v uint64) (string, bool) {
	name, ok := e.invert()[v]
	return name, ok
}

// Render returns the symbolic name for v, or its decimal rendering when v
// isn't in the map.
func (e *Enum) Render(v uint64) string {
	if name, ok := e.Name(v); ok {
		return name
	}
	return strconv.FormatUint(v, 10)
}

func (e *Enum) Default() any { return e.Base.Default() }

func (e *Enum) Size(value, param any) int { return e.Base.Size(value, param) }

func (e *Enum) Read(buf []byte, param any) (any, int, error) {
	return e.Base.Read(buf, param)
}

// Write accepts a string name (looked up in Names), or any integer type
// accepted by the base codec. An unknown name is ErrInvalidValue.
func (e *Enum) Write(value any, param any) ([]byte, error) {
	if name, ok := value.(string); ok {
		v, known := e.Names[name]
		if !known {
			return nil, invalid("unknown enum name %q", name)
		}
		return e.Base.Write(v, param)
	}
	return e.Base.Write(value, param)
}
