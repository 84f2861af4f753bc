package pcapng

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleSection(order binary.ByteOrder) *Section {
	return &Section{
		SHB: SHB{
			Endian:        order,
			MajorVersion:  1,
			MinorVersion:  0,
			SectionLength: UnknownSectionLength,
			Options:       []Option{{Code: OptComment, Value: []byte("test section")}},
		},
		Interfaces: []IDB{
			{LinkType: 1, SnapLen: 65535, Options: []Option{{Code: OptIfName, Value: []byte("eth0")}}},
		},
		Blocks: []PacketBlock{
			{EPB: EPB{InterfaceID: 0, TimestampHigh: 1, TimestampLow: 2, CapturedLen: 3, OriginalLen: 3, Data: []byte{0xAA, 0xBB, 0xCC}}},
			{Simple: true, SPB: SPB{OriginalLen: 2, Data: []byte{0xDD, 0xEE}}},
		},
		Unknown: []UnknownBlock{
			{Type: 0xDEADBEEF, Body: []byte{1, 2, 3, 4}},
		},
	}
}

func TestFileRoundTripBothEndians(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(orderName(order), func(t *testing.T) {
			section := sampleSection(order)
			f := &File{Sections: []*Section{section}}

			data, err := f.ToBytes()
			require.NoError(t, err)

			got := &File{}
			require.NoError(t, got.Read(data))
			require.Len(t, got.Sections, 1)

			want := section
			gotSection := got.Sections[0]

			if diff := cmp.Diff(want.SHB.MajorVersion, gotSection.SHB.MajorVersion); diff != "" {
				t.Errorf("major version mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want.Interfaces, gotSection.Interfaces); diff != "" {
				t.Errorf("interfaces mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want.Blocks, gotSection.Blocks); diff != "" {
				t.Errorf("packet blocks mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want.Unknown, gotSection.Unknown); diff != "" {
				t.Errorf("unknown blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func orderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

func TestReadSHBFrameDetectsSwappedEndian(t *testing.T) {
	section := sampleSection(binary.BigEndian)
	data := section.SHB.bytes()

	shb, totalLen, err := readSHBFrame(data)
	require.NoError(t, err)
	require.Equal(t, binary.BigEndian, shb.Endian)
	require.Equal(t, uint32(len(data)), totalLen)

	section2 := sampleSection(binary.LittleEndian)
	data2 := section2.SHB.bytes()

	shb2, _, err := readSHBFrame(data2)
	require.NoError(t, err)
	require.Equal(t, binary.LittleEndian, shb2.Endian)
}

func TestReadSPBStripsAlignmentPadding(t *testing.T) {
	order := binary.LittleEndian
	spb := SPB{OriginalLen: 2, Data: []byte{0xDD, 0xEE}}

	_, body, _, err := splitFrame(spb.bytes(order), order)
	require.NoError(t, err)

	got, err := readSPB(body, order)
	require.NoError(t, err)
	require.Equal(t, spb.Data, got.Data, "pad bytes must not leak into the packet data")
	require.Equal(t, spb.OriginalLen, got.OriginalLen)
}

func TestReadSPBKeepsSnaplenTruncatedData(t *testing.T) {
	order := binary.LittleEndian
	// original_len beyond the captured bytes: the data extent stays what the
	// block actually holds.
	spb := SPB{OriginalLen: 100, Data: []byte{1, 2, 3, 4}}

	_, body, _, err := splitFrame(spb.bytes(order), order)
	require.NoError(t, err)

	got, err := readSPB(body, order)
	require.NoError(t, err)
	require.Equal(t, spb.Data, got.Data)
	require.Equal(t, uint32(100), got.OriginalLen)
}

func TestSplitFrameRejectsMismatchedTrailer(t *testing.T) {
	section := sampleSection(binary.LittleEndian)
	buf := section.Blocks[0].EPB.bytes(binary.LittleEndian)

	// Corrupt the trailing length field.
	corrupted := append([]byte{}, buf...)
	binary.LittleEndian.PutUint32(corrupted[len(corrupted)-4:], uint32(len(corrupted)+4))

	_, _, _, err := splitFrame(corrupted, binary.LittleEndian)
	require.Error(t, err)
}

func TestParseOptionsStopsAtEndOfOpt(t *testing.T) {
	order := binary.LittleEndian
	opts := []Option{
		{Code: OptComment, Value: []byte("hi")},
		{Code: OptIfName, Value: []byte("abc")},
	}
	buf := writeOptions(opts, order)

	got, err := parseOptions(buf, order)
	require.NoError(t, err)

	if diff := cmp.Diff(opts, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptionsMalformedLength(t *testing.T) {
	order := binary.LittleEndian
	buf := make([]byte, 4)
	order.PutUint16(buf[0:2], OptComment)
	order.PutUint16(buf[2:4], 100) // claims 100 bytes of value that aren't there

	_, err := parseOptions(buf, order)
	require.Error(t, err)
}
