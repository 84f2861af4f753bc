package protocols_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/packet"
	"github.com/picatz/packetgen/protocols/icmpv6"
	"github.com/picatz/packetgen/protocols/mld"
	"github.com/picatz/packetgen/protocols/mlq"
	"github.com/picatz/packetgen/protocols/tftp"

	_ "github.com/picatz/packetgen/protocols"
)

// TestTFTPRRQRoundTrip is spec.md §8 scenario 1: a raw RRQ for "file" in
// octet mode decodes its opcode/filename/mode and serializes back
// byte-for-byte.
func TestTFTPRRQRoundTrip(t *testing.T) {
	wire := []byte{
		0x00, 0x01, // opcode = RRQ
		'f', 'i', 'l', 'e', 0x00,
		'o', 'c', 't', 'e', 't', 0x00,
	}

	h, consumed, err := tftp.Kind.Read(wire)
	require.NoError(t, err)
	require.Equal(t, len(wire), consumed)

	opcode, _ := h.Get("opcode")
	require.Equal(t, uint16(tftp.OpRRQ), opcode)

	filename, _ := h.Get("filename")
	require.Equal(t, "file", filename)

	mode, _ := h.Get("mode")
	require.Equal(t, "octet", mode)

	out, err := h.ToBytes()
	require.NoError(t, err)
	require.True(t, bytes.Equal(wire, out))
}

// TestMLQSourceCountSyncsOnBuild checks the build direction of the MLQ
// source list: assigning sources and serializing reconciles num_sources to
// the list's length without the caller counting by hand.
func TestMLQSourceCountSyncsOnBuild(t *testing.T) {
	p := packet.New(binding.Default)
	h, err := p.Add(mlq.Kind, map[string]any{
		"multicast_address": "ff02::1",
		"sources":           [][16]byte{{0xFE, 0x80}, {0xFE, 0x80, 0x01}},
	})
	require.NoError(t, err)

	data, err := p.ToBytes()
	require.NoError(t, err)

	n, _ := h.Get("num_sources")
	require.Equal(t, uint16(2), n)
	require.Len(t, data, 24+2*16)

	// And the wire form parses back to the same two-element list.
	got, consumed, err := mlq.Kind.Read(data)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	sources, _ := got.Get("sources")
	require.Len(t, sources.([]any), 2)
}

// TestMLDvsMLQDisambiguation is spec.md §8 scenario 5: ICMPv6 type 130
// messages dispatch to MLD when the tail is the fixed 20-byte body, and to
// MLQ once it's long enough to hold the fixed MLQ fields (a source count of
// zero still runs 24 bytes, one longer than MLD's body).
func TestMLDvsMLQDisambiguation(t *testing.T) {
	icmpv6Header := []byte{
		icmpv6.TypeMulticastListener, // type
		0x00,                         // code
		0x00, 0x00,                   // checksum (not verified by this test)
	}

	mldBody := make([]byte, 20) // max_response_delay + reserved + multicast_address
	mldWire := append(append([]byte{}, icmpv6Header...), mldBody...)

	got, err := packet.Parse(binding.Default, mldWire, icmpv6.Kind)
	require.NoError(t, err)
	require.True(t, got.Is(mld.ID))
	require.False(t, got.Is(mlq.ID))

	mlqBody := make([]byte, 24) // fixed MLQ fields with num_sources = 0
	mlqWire := append(append([]byte{}, icmpv6Header...), mlqBody...)

	got, err = packet.Parse(binding.Default, mlqWire, icmpv6.Kind)
	require.NoError(t, err)
	require.True(t, got.Is(mlq.ID))
	require.False(t, got.Is(mld.ID))
}
