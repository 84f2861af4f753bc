package pcapng

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/linktype"
	"github.com/picatz/packetgen/packet"
	"github.com/picatz/packetgen/protocols/ethernet"
	"github.com/picatz/packetgen/protocols/ipv4"
	"github.com/picatz/packetgen/protocols/udp"

	_ "github.com/picatz/packetgen/protocols"
)

func buildEthernetIPv4UDP(t *testing.T) []byte {
	t.Helper()
	p := packet.New(binding.Default)

	_, err := p.Add(ethernet.Kind, map[string]any{
		"destination": [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		"source":      [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
	})
	require.NoError(t, err)

	_, err = p.Add(ipv4.Kind, map[string]any{
		"source":      [4]byte{10, 0, 0, 1},
		"destination": [4]byte{10, 0, 0, 2},
	})
	require.NoError(t, err)

	_, err = p.Add(udp.Kind, map[string]any{
		"sport": uint16(12345),
		"dport": uint16(53),
	})
	require.NoError(t, err)

	p.SetPayload([]byte("hello"))

	data, err := p.ToBytes()
	require.NoError(t, err)
	return data
}

func TestReadPacketsDispatchesByInterfaceLinkType(t *testing.T) {
	frame := buildEthernetIPv4UDP(t)

	entry := Entry{Data: frame}
	f := SynthesizeFile([]Entry{entry}, SynthesizeOptions{
		Seed:     1_600_000_000_000_000,
		LinkType: uint16(linktype.Ethernet),
	})

	packets, err := ReadPackets(f, binding.Default)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	got := packets[0]
	require.True(t, got.Is(ethernet.ID))
	require.True(t, got.Is(ipv4.ID))
	require.True(t, got.Is(udp.ID))
	require.Equal(t, []byte("hello"), got.Payload())
}

func TestReadPacketsFallsBackForUnknownLinkType(t *testing.T) {
	frame := buildEthernetIPv4UDP(t)

	f := SynthesizeFile([]Entry{{Data: frame}}, SynthesizeOptions{
		Seed:     0,
		LinkType: 9999, // not in the catalog's table
	})

	packets, err := ReadPackets(f, binding.Default)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	require.True(t, packets[0].Is(ethernet.ID))
}

func TestReadPacketsFuncToleratesPerPacketFailures(t *testing.T) {
	good := buildEthernetIPv4UDP(t)

	f := SynthesizeFile([]Entry{
		{Data: good},
		{Data: []byte{0x01, 0x02}}, // too short for any fallback kind
	}, SynthesizeOptions{LinkType: 9998}) // unknown: forces the fallback path

	var parsed, failed int
	err := ReadPacketsFunc(f, binding.Default, func(p *packet.Packet, err error) error {
		if err != nil {
			failed++
			return nil
		}
		parsed++
		require.True(t, p.Is(ethernet.ID))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, parsed)
	require.Equal(t, 1, failed)

	// ReadPackets has no per-packet tolerance: the same file surfaces the
	// failure at the failing block instead.
	_, err = ReadPackets(f, binding.Default)
	require.Error(t, err)
}

func TestReadPacketsRoundTripsThroughBytes(t *testing.T) {
	frame := buildEthernetIPv4UDP(t)

	f := SynthesizeFile([]Entry{{Data: frame}}, SynthesizeOptions{
		Seed:      100,
		Increment: 5,
		LinkType:  uint16(linktype.Ethernet),
	})

	data, err := f.ToBytes()
	require.NoError(t, err)

	got := &File{}
	require.NoError(t, got.Read(data))

	packets, err := ReadPackets(got, binding.Default)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	require.True(t, packets[0].Is(udp.ID))

	require.Equal(t, uint64(100), got.Sections[0].Blocks[0].EPB.Timestamp())
}
