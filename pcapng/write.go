package pcapng

import (
	"fmt"
	"os"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
)

// ToBytes serializes every section in order — SHB, then IDBs, then packet
// blocks in insertion order, then unknown blocks — per spec.md §4.6's
// write algorithm.
func (f *File) ToBytes() ([]byte, error) {
	var out []byte
	for _, s := range f.Sections {
		out = append(out, s.SHB.bytes()...)
		order := s.SHB.Endian
		for _, idb := range s.Interfaces {
			out = append(out, idb.bytes(order)...)
		}
		for _, b := range s.Blocks {
			if b.Simple {
				out = append(out, b.SPB.bytes(order)...)
			} else {
				out = append(out, b.EPB.bytes(order)...)
			}
		}
		for _, u := range s.Unknown {
			out = append(out, u.bytes(order)...)
		}
	}
	return out, nil
}

// WriteFile serializes f and writes it to path, truncating any existing
// file unless appendTo is true, in which case the bytes are appended to
// whatever is already there.
func (f *File) WriteFile(path string, appendTo bool) error {
	data, err := f.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	fh, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("%w: %v", packetgen.ErrIO, err))
	}
	defer fh.Close()
	if _, err := fh.Write(data); err != nil {
		return errtrace.Wrap(fmt.Errorf("%w: %v", packetgen.ErrIO, err))
	}
	return nil
}
