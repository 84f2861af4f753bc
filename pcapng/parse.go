package pcapng

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/internal/logging"
	"github.com/qmuntal/stateless"
)

const (
	stateAwaitingSHB = "awaiting-shb"
	stateInSection   = "in-section"
	triggerBlock     = "block"
)

// classify advances a two-state machine — AwaitingSHB / InSection, the
// shape SPEC_FULL's section-parser description calls for — one block at a
// time: seeing an SHB while AwaitingSHB opens the first section; seeing any
// block while InSection stays there (a subsequent SHB simply starts
// reconciling a new section in the caller, without leaving InSection).
// Firing the trigger while AwaitingSHB with a non-SHB block has no
// permitted transition, which is how a stream that doesn't open with an
// SHB is caught.
func classify(state stateless.State, isSHB bool) (stateless.State, error) {
	sm := stateless.NewStateMachine(state)
	sm.Configure(stateless.State(stateAwaitingSHB)).
		Permit(triggerBlock, stateless.State(stateInSection), func(context.Context, ...any) bool { return isSHB })
	sm.Configure(stateless.State(stateInSection)).
		PermitReentry(triggerBlock, func(context.Context, ...any) bool { return true })

	if err := sm.FireCtx(context.Background(), triggerBlock); err != nil {
		return "", errtrace.Wrap(err)
	}
	return sm.State(context.Background())
}

// Read parses data as a sequence of PCAP-NG blocks and appends the
// resulting Sections to f (it does not clear f first; see ReadFresh).
func (f *File) Read(data []byte) error {
	state := stateless.State(stateAwaitingSHB)
	var cur *Section
	var order binary.ByteOrder
	var sectionEnd int // absolute offset where the current bounded section ends, 0 if unbounded

	off := 0
	for off < len(data) {
		if len(data[off:]) < 12 {
			return errtrace.Wrap(fmt.Errorf("%w: trailing bytes too short for a block", packetgen.ErrMalformedBlock))
		}
		blockType := binary.BigEndian.Uint32(data[off : off+4])
		isSHB := blockType == BlockTypeSHB

		if sectionEnd != 0 && off >= sectionEnd && !isSHB {
			return errtrace.Wrap(fmt.Errorf("%w: block past declared section length", packetgen.ErrMalformedBlock))
		}

		next, err := classify(state, isSHB)
		if err != nil {
			return errtrace.Wrap(fmt.Errorf("%w: stream does not open with a section header block", packetgen.ErrInvalidFile))
		}
		state = next

		if isSHB {
			shb, totalLen, err := readSHBFrame(data[off:])
			if err != nil {
				return errtrace.Wrap(err)
			}
			logging.Default().Debug("section header block",
				"offset", off, "endian", orderLabel(shb.Endian), "section_length", shb.SectionLength)
			order = shb.Endian
			cur = &Section{SHB: shb}
			f.Sections = append(f.Sections, cur)
			off += int(totalLen)
			if shb.SectionLength == UnknownSectionLength {
				sectionEnd = 0
			} else {
				sectionEnd = off + int(shb.SectionLength)
			}
			continue
		}

		blockType, body, rest, err := splitFrame(data[off:], order)
		if err != nil {
			return errtrace.Wrap(err)
		}
		consumed := len(data[off:]) - len(rest)

		switch blockType {
		case BlockTypeIDB:
			idb, err := readIDB(body, order)
			if err != nil {
				return errtrace.Wrap(err)
			}
			cur.Interfaces = append(cur.Interfaces, idb)
		case BlockTypeEPB:
			epb, err := readEPB(body, order)
			if err != nil {
				return errtrace.Wrap(err)
			}
			cur.Blocks = append(cur.Blocks, PacketBlock{EPB: epb})
		case BlockTypeSPB:
			spb, err := readSPB(body, order)
			if err != nil {
				return errtrace.Wrap(err)
			}
			cur.Blocks = append(cur.Blocks, PacketBlock{Simple: true, SPB: spb})
		default:
			logging.Default().Debug("preserving unknown block",
				"offset", off, "block_type", fmt.Sprintf("%#08x", blockType), "body_len", len(body))
			rawBody := make([]byte, len(body))
			copy(rawBody, body)
			cur.Unknown = append(cur.Unknown, UnknownBlock{Type: blockType, Body: rawBody})
		}
		off += consumed
	}
	return nil
}

func orderLabel(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big"
	}
	return "little"
}

// ReadFresh clears f and then parses data into it.
func (f *File) ReadFresh(data []byte) error {
	f.Sections = nil
	return errtrace.Wrap(f.Read(data))
}

// ReadFile reads the whole file at path and parses it as a fresh File.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%w: %v", packetgen.ErrIO, err))
	}
	f := &File{}
	if err := f.ReadFresh(data); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return f, nil
}

// ReadPacketBytes returns the raw captured-packet payloads of every EPB/SPB
// in path, across every section, in file order.
func ReadPacketBytes(path string) ([][]byte, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	var out [][]byte
	for _, s := range f.Sections {
		for _, b := range s.Blocks {
			out = append(out, b.Data())
		}
	}
	return out, nil
}
