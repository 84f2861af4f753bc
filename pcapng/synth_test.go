package pcapng

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picatz/packetgen/linktype"
)

func TestSynthesizeFileSeedsAndIncrements(t *testing.T) {
	entries := []Entry{
		{Data: []byte("one")},
		{Data: []byte("two")},
		{Data: []byte("three")},
	}
	f := SynthesizeFile(entries, SynthesizeOptions{
		Seed:      1000,
		Increment: 10,
		LinkType:  uint16(linktype.Ethernet),
	})

	require.Len(t, f.Sections, 1)
	section := f.Sections[0]
	require.Len(t, section.Interfaces, 1)
	require.Equal(t, uint16(linktype.Ethernet), section.Interfaces[0].LinkType)
	require.Len(t, section.Blocks, 3)

	wantTicks := []uint64{1000, 1010, 1020}
	for i, b := range section.Blocks {
		require.Equal(t, wantTicks[i], b.EPB.Timestamp())
		require.Equal(t, entries[i].Data, b.Data())
	}
}

func TestSynthesizeFileExplicitTimestampOverridesSeed(t *testing.T) {
	explicit := uint64(99999)
	entries := []Entry{
		{Data: []byte("a")},
		{Data: []byte("b"), Timestamp: &explicit},
		{Data: []byte("c")},
	}
	f := SynthesizeFile(entries, SynthesizeOptions{Seed: 0, Increment: 1})
	blocks := f.Sections[0].Blocks

	require.Equal(t, uint64(0), blocks[0].EPB.Timestamp())
	require.Equal(t, explicit, blocks[1].EPB.Timestamp())
	// The running seed resumes from the overridden entry's own value, not
	// from where it would've been had entry 1 used the default sequence.
	require.Equal(t, explicit+1, blocks[2].EPB.Timestamp())
}

func TestSynthesizeFileDefaultIncrementIsOne(t *testing.T) {
	entries := []Entry{{Data: []byte("x")}, {Data: []byte("y")}}
	f := SynthesizeFile(entries, SynthesizeOptions{Seed: 5})
	blocks := f.Sections[0].Blocks
	require.Equal(t, uint64(5), blocks[0].EPB.Timestamp())
	require.Equal(t, uint64(6), blocks[1].EPB.Timestamp())
}

func TestSynthesizeFileProducesReadableBytes(t *testing.T) {
	f := SynthesizeFile([]Entry{{Data: []byte{1, 2, 3, 4}}}, SynthesizeOptions{Seed: 1})
	data, err := f.ToBytes()
	require.NoError(t, err)

	got := &File{}
	require.NoError(t, got.Read(data))
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Blocks, 1)
	require.Equal(t, []byte{1, 2, 3, 4}, got.Sections[0].Blocks[0].Data())
}
