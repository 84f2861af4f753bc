package pcapng

import "encoding/binary"

// Entry is one element of the array SynthesizeFile turns into a File,
// generalizing the source library's array_to_file element shape (a bare
// byte string, or a {timestamp: bytes} pair) into a Go struct: Data is
// always required, Timestamp is nil when the caller wants it derived from
// Seed/Increment instead of supplied per-entry.
type Entry struct {
	Data      []byte
	Timestamp *uint64
}

// SynthesizeOptions configures SynthesizeFile. Seed is the first packet's
// timestamp in ticks (at the interface's default resolution, microseconds:
// the synthesized IDB carries no if_tsresol option); Increment is added per subsequent
// packet whose Entry.Timestamp is nil, defaulting to 1 if zero. LinkType is
// the single interface's link-layer type (linktype.Ethernet, etc.).
type SynthesizeOptions struct {
	Seed      uint64
	Increment uint64
	LinkType  uint16
}

// SynthesizeFile builds a single-section File — one SHB, one IDB, and one
// EPB per entry, in order — the Go-shaped equivalent of array_to_file: a
// quick way to turn a slice of captured (or hand-built) frames into a
// loadable capture file without hand-assembling blocks. Per the strict vs.
// truthy Append semantics question (see DESIGN.md), a caller wanting to
// append to an existing file writes the synthesized bytes with
// File.WriteFile(path, true) rather than this function taking an Append
// flag itself.
func SynthesizeFile(entries []Entry, opts SynthesizeOptions) *File {
	inc := opts.Increment
	if inc == 0 {
		inc = 1
	}
	order := binary.LittleEndian
	shb := SHB{
		Endian:        order,
		MajorVersion:  1,
		MinorVersion:  0,
		SectionLength: UnknownSectionLength,
	}
	idb := IDB{LinkType: opts.LinkType}

	section := &Section{SHB: shb, Interfaces: []IDB{idb}}

	ts := opts.Seed
	for _, e := range entries {
		tick := ts
		if e.Timestamp != nil {
			tick = *e.Timestamp
		}
		ts = tick + inc

		high, low := SplitTimestamp(tick)
		data := append([]byte{}, e.Data...)
		section.Blocks = append(section.Blocks, PacketBlock{
			EPB: EPB{
				InterfaceID:   0,
				TimestampHigh: high,
				TimestampLow:  low,
				CapturedLen:   uint32(len(data)),
				OriginalLen:   uint32(len(data)),
				Data:          data,
			},
		})
	}

	return &File{Sections: []*Section{section}}
}
