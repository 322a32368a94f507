package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcacheFetchFillsOnMiss(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var ic Icache
	require.NoError(t, ext.WritePhys([]byte{0x34, 0x12}, 0x8000))

	v, err := ic.FetchInstruction(ext, 0x8000, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestIcacheFetchHitsWithoutReReading(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var ic Icache
	require.NoError(t, ext.WritePhys([]byte{0x34, 0x12}, 0x8000))

	_, err := ic.FetchInstruction(ext, 0x8000, false)
	require.NoError(t, err)

	// Mutate backing memory without invalidating: the cached value must
	// still be returned on a hit.
	require.NoError(t, ext.WritePhys([]byte{0xFF, 0xFF}, 0x8000))
	v, err := ic.FetchInstruction(ext, 0x8000, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v, "a cache hit must not re-read backing memory")
}

func TestIcacheInvalidateForcesReload(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var ic Icache
	require.NoError(t, ext.WritePhys([]byte{0x34, 0x12}, 0x8000))
	_, err := ic.FetchInstruction(ext, 0x8000, false)
	require.NoError(t, err)

	require.NoError(t, ext.WritePhys([]byte{0xFF, 0xFF}, 0x8000))
	ic.Invalidate(0x8000, false)

	v, err := ic.FetchInstruction(ext, 0x8000, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), v)
}

func TestIcacheInvalidateAll(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var ic Icache
	require.NoError(t, ext.WritePhys([]byte{0x01, 0x00}, 0x9000))
	_, err := ic.FetchInstruction(ext, 0x9000, false)
	require.NoError(t, err)

	ic.InvalidateAll()
	for _, k := range ic.keys {
		assert.Zero(t, k&IcacheKeyValidBit)
	}
}
