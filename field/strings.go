package field

import "bytes"

// FixedBytes is a fixed-size byte string codec of n bytes.
type FixedBytes struct{ N int }

func (f FixedBytes) Default() any { return make([]byte, f.N) }

func (f FixedBytes) Size(value, _ any) int { return f.N }

func (f FixedBytes) Read(buf []byte, _ any) (any, int, error) {
	if len(buf) < f.N {
		return nil, 0, truncated(f.N, len(buf))
	}
	out := make([]byte, f.N)
	copy(out, buf[:f.N])
	return out, f.N, nil
}

func (f FixedBytes) Write(value any, _ any) ([]byte, error) {
	b, err := asBytes(value)
	if err != nil {
		return nil, err
	}
	if len(b) != f.N {
		return nil, invalid("fixed byte string must be exactly %d bytes, got %d", f.N, len(b))
	}
	out := make([]byte, f.N)
	copy(out, b)
	return out, nil
}

// CString is a null-terminated string codec: reads bytes up to and
// including the first zero byte (the terminator isn't part of the decoded
// string); writes append a trailing zero.
type CString struct{}

func (CString) Default() any { return "" }

func (CString) Size(value, _ any) int {
	s, _ := value.(string)
	return len(s) + 1
}

func (CString) Read(buf []byte, _ any) (any, int, error) {
	idx := bytes.IndexByte(buf, 0)
	if idx < 0 {
		return nil, 0, truncated(len(buf)+1, len(buf))
	}
	return string(buf[:idx]), idx + 1, nil
}

func (CString) Write(value any, _ any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, invalid("cannot assign %T to a string field", value)
	}
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return nil, invalid("string contains embedded zero byte")
	}
	out := make([]byte, len(s)+1)
	copy(out, s)
	return out, nil
}

// LengthString is a length-prefixed string codec. The length itself is a
// separate field elsewhere in the header; on read, param must be the int
// length supplied by that field's value via the consuming field's Builder.
// On write, param is ignored — the encoded length is len(value) and the
// caller is expected to have a Calculable counter field that synchronizes
// to it (see header.FieldDef's Calculable flag and the kind's Calc hook).
type LengthString struct{}

func (LengthString) Default() any { return "" }

func (LengthString) Size(value, _ any) int {
	s, _ := value.(string)
	return len(s)
}

func (LengthString) Read(buf []byte, param any) (any, int, error) {
	n, err := asLength(param)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < n {
		return nil, 0, truncated(n, len(buf))
	}
	return string(buf[:n]), n, nil
}

func (LengthString) Write(value any, _ any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, invalid("cannot assign %T to a string field", value)
	}
	return []byte(s), nil
}

func (LengthString) ReadAll(buf []byte) (any, error) { return string(buf), nil }

func asLength(param any) (int, error) {
	switch v := param.(type) {
	case int:
		return v, nil
	case uint64:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint8:
		return int(v), nil
	default:
		return 0, invalid("builder returned non-integer length parameter %T", param)
	}
}

func asBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, invalid("cannot assign %T to a byte-string field", value)
	}
}
