package packet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/packet"
	"github.com/picatz/packetgen/protocols/ethernet"
	"github.com/picatz/packetgen/protocols/ipv4"
	"github.com/picatz/packetgen/protocols/tftp"
	"github.com/picatz/packetgen/protocols/udp"

	_ "github.com/picatz/packetgen/protocols"
)

// TestBuildIPUDPTFTPAck is spec.md §8 scenario 2: compose IP -> UDP ->
// TFTP::ACK(block_num=3); the lower headers should pick up their
// discriminator fields from the binding registry's defaults.
func TestBuildIPUDPTFTPAck(t *testing.T) {
	p := packet.New(binding.Default)

	ip, err := p.Add(ipv4.Kind, map[string]any{
		"source":      "10.0.0.1",
		"destination": "10.0.0.2",
	})
	require.NoError(t, err)

	udpHdr, err := p.Add(udp.Kind, map[string]any{
		"sport": uint16(54321),
	})
	require.NoError(t, err)

	_, err = p.Add(tftp.AckKind, map[string]any{
		"block_num": uint16(3),
	})
	require.NoError(t, err)

	protocol, _ := ip.Get("protocol")
	require.Equal(t, uint8(udp.Protocol), protocol, "IP.protocol should be set to UDP's protocol number by the binding registry")

	dport, _ := udpHdr.Get("dport")
	require.Equal(t, uint16(69), dport, "UDP.dport should be set to 69 by the udp->tftp binding's defaults")

	opcode, _ := p.Innermost().Get("opcode")
	require.Equal(t, uint16(tftp.OpACK), opcode)

	data, err := p.ToBytes()
	require.NoError(t, err)
	require.True(t, len(data) >= 4)
	require.Equal(t, []byte{0x00, 0x04, 0x00, 0x03}, data[len(data)-4:], "serialized payload should end with opcode=ACK, block_num=3")
}

// TestParseBuildDuality is spec.md §8's build/parse duality property:
// Packet.Parse(p.ToBytes(), first=outermost kind) reproduces the same
// fields.
func TestParseBuildDuality(t *testing.T) {
	p := packet.New(binding.Default)
	_, err := p.Add(ethernet.Kind, map[string]any{
		"destination": "00:11:22:33:44:55",
		"source":      "aa:bb:cc:dd:ee:ff",
	})
	require.NoError(t, err)
	_, err = p.Add(ipv4.Kind, map[string]any{
		"source":      "10.0.0.1",
		"destination": "10.0.0.2",
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

	got, err := packet.Parse(binding.Default, data, ethernet.Kind)
	require.NoError(t, err)

	require.True(t, got.Is(ethernet.ID))
	require.True(t, got.Is(ipv4.ID))
	require.True(t, got.Is(udp.ID))
	require.Equal(t, []byte("hello"), got.Payload())

	wantIP, _ := p.Header(ipv4.ID, 0)
	gotIP, _ := got.Header(ipv4.ID, 0)
	wantSrc, _ := wantIP.Get("source")
	gotSrc, _ := gotIP.Get("source")
	require.Equal(t, wantSrc, gotSrc)
}

// TestRecalcIsIdempotent is spec.md §8's calc idempotence property.
func TestRecalcIsIdempotent(t *testing.T) {
	p := packet.New(binding.Default)
	_, err := p.Add(ipv4.Kind, map[string]any{
		"source":      "10.0.0.1",
		"destination": "10.0.0.2",
	})
	require.NoError(t, err)
	_, err = p.Add(udp.Kind, map[string]any{
		"sport": uint16(1),
		"dport": uint16(2),
	})
	require.NoError(t, err)
	p.SetPayload([]byte("payload"))

	a, err := p.ToBytes()
	require.NoError(t, err)
	b, err := p.ToBytes()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestAddFailsOnUnboundStack(t *testing.T) {
	p := packet.New(binding.Default)
	_, err := p.Add(tftp.AckKind, nil)
	require.NoError(t, err) // first header on an empty stack never fails

	_, err = p.Add(ethernet.Kind, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, packetgen.ErrUnboundStack)
}

func TestAmbiguousBindingRejected(t *testing.T) {
	r := binding.NewRegistry()

	lowerID := header.ID("test-ambiguous-udp")
	xID := header.ID("test-ambiguous-x")
	yID := header.ID("test-ambiguous-y")

	lower := header.NewKind("TestAmbiguousUDP", lowerID)
	lower.DefineField(header.FieldDef{Name: "dport", Codec: field.Uint16BE})

	header.NewKind("TestAmbiguousX", xID)
	header.NewKind("TestAmbiguousY", yID)

	r.Bind(lowerID, xID, binding.AND, binding.Equality{Field: "dport", Match: binding.Equals(uint16(69))})
	r.Bind(lowerID, yID, binding.AND, binding.Equality{Field: "dport", Match: binding.Equals(uint16(69))})

	wire := []byte{0x00, 0x45} // dport=69
	_, err := packet.Parse(r, wire, lower)
	require.Error(t, err)
	require.True(t, errors.Is(err, packetgen.ErrAmbiguousBinding))
}
