package pcapng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimestampSplitCombineRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 1_000_000, 1 << 40, 0xFFFFFFFFFFFFFFFF}
	for _, ticks := range cases {
		high, low := SplitTimestamp(ticks)
		got := CombineTimestamp(high, low)
		require.Equal(t, ticks, got)
	}
}

func TestTicksFromSecondsRoundTrip(t *testing.T) {
	const unitsPerSecond = 1_000_000 // microsecond resolution
	seconds := 12.5
	ticks := TicksFromSeconds(seconds, unitsPerSecond)
	require.Equal(t, uint64(12_500_000), ticks)

	back := SecondsFromTicks(ticks, unitsPerSecond)
	require.InDelta(t, seconds, back, 1e-6)
}

func TestTSResolUnitsPerSecondDefault(t *testing.T) {
	require.Equal(t, DefaultTSResolUnitsPerSecond, tsResolUnitsPerSecond(nil))
}

func TestTSResolUnitsPerSecondDecimal(t *testing.T) {
	// if_tsresol = 9 (high bit clear) means 10^9 ticks/second, nanosecond
	// resolution.
	opts := []Option{{Code: OptIfTSResol, Value: []byte{9}}}
	require.Equal(t, uint64(1_000_000_000), tsResolUnitsPerSecond(opts))
}

func TestTSResolUnitsPerSecondBinary(t *testing.T) {
	// high bit set, low bits 16 -> 2^16 ticks/second.
	opts := []Option{{Code: OptIfTSResol, Value: []byte{0x80 | 16}}}
	require.Equal(t, uint64(1)<<16, tsResolUnitsPerSecond(opts))
}

func TestIDBTimestampResolution(t *testing.T) {
	idb := IDB{Options: []Option{{Code: OptIfTSResol, Value: []byte{6}}}}
	require.Equal(t, uint64(1_000_000), idb.TimestampResolution())

	bare := IDB{}
	require.Equal(t, DefaultTSResolUnitsPerSecond, bare.TimestampResolution())
}

func TestAlign4(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 2: 4, 3: 4, 4: 4, 5: 8}
	for in, want := range cases {
		require.Equal(t, want, align4(in), "align4(%d)", in)
	}
}
