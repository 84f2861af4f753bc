package field

import "reflect"

// Array decodes N elements of Elem, where N is supplied at read time by the
// field's Builder (reading a counter field elsewhere in the header). On
// write, the array's own length is used; a Calculable counter field is
// expected to synchronize to it (see header.Kind's Calc hook).
type Array struct {
	Elem Codec
}

func (a Array) Default() any { return []any{} }

func (a Array) Size(value, param any) int {
	vs, _ := value.([]any)
	total := 0
	for _, v := range vs {
		total += a.Elem.Size(v, nil)
	}
	return total
}

func (a Array) Read(buf []byte, param any) (any, int, error) {
	n, err := asLength(param)
	if err != nil {
		return nil, 0, err
	}
	out := make([]any, 0, n)
	off := 0
	for i := 0; i < n; i++ {
		v, consumed, err := a.Elem.Read(buf[off:], nil)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
		off += consumed
	}
	return out, off, nil
}

// ReadAll decodes whole elements until buf is exhausted, for callers that
// know the buffer's extent but not the element count.
func (a Array) ReadAll(buf []byte) (any, error) {
	out := []any{}
	off := 0
	for off < len(buf) {
		v, consumed, err := a.Elem.Read(buf[off:], nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		off += consumed
	}
	return out, nil
}

func (a Array) Write(value any, _ any) ([]byte, error) {
	vs, err := asSlice(value)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, v := range vs {
		b, err := a.Elem.Write(v, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// asSlice accepts either []any or any other slice type via reflection, so
// callers can assign a concrete []string/[]uint16/etc. to an Array field.
func asSlice(value any) ([]any, error) {
	if vs, ok := value.([]any); ok {
		return vs, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, invalid("cannot assign %T to an array field", value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Opaque consumes the remaining bytes of a header (or a caller-bounded
// subrange via param, an int length). It is typically the last field in a
// Kind's schema and stands in for a header's trailing payload.
type Opaque struct{}

func (Opaque) Default() any { return []byte{} }

func (Opaque) Size(value, _ any) int {
	b, _ := value.([]byte)
	return len(b)
}

func (Opaque) Read(buf []byte, param any) (any, int, error) {
	n := len(buf)
	if param != nil {
		var err error
		n, err = asLength(param)
		if err != nil {
			return nil, 0, err
		}
		if n > len(buf) {
			return nil, 0, truncated(n, len(buf))
		}
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, n, nil
}

func (Opaque) Write(value any, _ any) ([]byte, error) {
	return asBytes(value)
}

func (Opaque) ReadAll(buf []byte) (any, error) {
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}
