package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAddressAreas(t *testing.T) {
	cases := []struct {
		name string
		addr uint32
		area Area
	}{
		{"P0 low", 0x00001000, AreaP0},
		{"P0 high", 0x7FFFFFFF, AreaP0},
		{"P1", 0x80001000, AreaP1},
		{"P2", 0xA0001000, AreaP2},
		{"P3", 0xC0001000, AreaP3},
		{"P4", 0xF0000000, AreaP4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			route, err := DecodeAddress(tc.addr, AccessRead, false, false, false)
			require.NoError(t, err)
			assert.Equal(t, tc.area, route.Area)
		})
	}
}

func TestDecodeAddressP4RegisterWindow(t *testing.T) {
	route, err := DecodeAddress(0xFF00001C, AccessRead, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, TargetRegisterWindow, route.Target)
	assert.Equal(t, uint32(0x1C), route.Phys)
}

func TestDecodeAddressUserModePrivilegedAreaFails(t *testing.T) {
	_, err := DecodeAddress(0x80000000, AccessRead, false, true, false)
	require.Error(t, err)

	_, err = DecodeAddress(0x00000000, AccessRead, false, true, false)
	assert.NoError(t, err, "user mode may access P0")
}

func TestDecodeAddressORAWindow(t *testing.T) {
	addr := uint32(0x7C000010) // inside P1 passthrough, inside the OC-RAM window
	route, err := DecodeAddress(addr, AccessRead, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, TargetCacheRAM, route.Target)

	route, err = DecodeAddress(addr, AccessRead, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, TargetExternal, route.Target, "ORA disabled must fall through to external memory")
}

func TestCheckAlignment(t *testing.T) {
	assert.NoError(t, CheckAlignment(0x1000, 4))
	assert.Error(t, CheckAlignment(0x1001, 4))
	assert.Error(t, CheckAlignment(0x1002, 4))
	assert.NoError(t, CheckAlignment(0x1002, 2))
	assert.Error(t, CheckAlignment(0x1001, 2))
}
