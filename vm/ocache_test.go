package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOcacheReadMiss(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache
	require.NoError(t, ext.WritePhys([]byte{0x11, 0x22, 0x33, 0x44}, 0x1000))

	v, err := oc.Read(ext, 0x1000, 4, false, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x44332211), v)
}

func TestOcacheWriteBackOnEviction(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache

	// Two addresses that alias to the same line (same bits 13..5) but
	// different tags force an eviction of the first on the second access.
	addrA := uint32(0x1000)
	addrB := addrA + (1 << 19) // same selector bits, different tag

	require.NoError(t, oc.Write(ext, addrA, 4, 0xCAFEBABE, CopyBack, false, false))

	raw, err := ext.span(addrA, 4)
	require.NoError(t, err)
	assert.NotEqual(t, []byte{0xBE, 0xBA, 0xFE, 0xCA}, raw, "copy-back write must not hit memory immediately")

	// Second address evicts the dirty line, forcing a write-back of addrA.
	_, err = oc.Read(ext, addrB, 4, false, false)
	require.NoError(t, err)

	raw, err = ext.span(addrA, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBE, 0xBA, 0xFE, 0xCA}, raw, "eviction must have written the dirty line back")
}

func TestOcacheWriteThroughHitsMemoryImmediately(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache

	require.NoError(t, oc.Write(ext, 0x2000, 4, 0xDEADBEEF, WriteThrough, false, false))
	raw, err := ext.span(0x2000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, raw)
}

func TestOcacheInvalidateDropsWithoutWriteBack(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache

	require.NoError(t, oc.Write(ext, 0x3000, 4, 0x12345678, CopyBack, false, false))
	oc.Invalidate(0x3000, false, false)

	raw, err := ext.span(0x3000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, raw, "invalidate must discard the dirty line, not flush it")
}

func TestOcachePurgeWritesBackThenInvalidates(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache

	require.NoError(t, oc.Write(ext, 0x4000, 4, 0xAABBCCDD, CopyBack, false, false))
	require.NoError(t, oc.Purge(ext, 0x4000, false, false))

	raw, err := ext.span(0x4000, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA}, raw)
}

func TestOcacheAsRAMBypassesBackingMemory(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache
	ramAddr := OcRamAreaVal | 0x10

	require.NoError(t, oc.Write(ext, ramAddr, 4, 0x99887766, CopyBack, false, true))
	v, err := oc.Read(ext, ramAddr, 4, false, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x99887766), v)

	raw, err := ext.span(ramAddr&PhysMask29, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, raw, "cache-as-RAM traffic must never touch backing memory")
}

func TestOcacheUnalignedAccessFallsBackToByteLoop(t *testing.T) {
	ext := NewExternalMemory(1 << 20)
	var oc Ocache

	require.NoError(t, oc.Write(ext, 0x5001, 2, 0xBEEF, CopyBack, false, false))
	v, err := oc.Read(ext, 0x5001, 2, false, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xBEEF), v)
}
