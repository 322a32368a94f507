package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteDataRoundTrip(t *testing.T) {
	mem := NewMemory(1 << 20)
	require.NoError(t, mem.WriteData(0x1000, 4, 0xDEADBEEF, false))
	v, err := mem.ReadData(0x1000, 4, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEF), v)
}

func TestMemoryReadInstRoutesThroughIcacheWhenEnabled(t *testing.T) {
	mem := NewMemory(1 << 20)
	require.NoError(t, mem.External.WritePhys([]byte{0x09, 0x00}, 0x1000)) // NOP
	mem.CCR.SetUint32(1 << CCRBitICE)

	op, err := mem.ReadInst(0x1000, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0009), op)
}

func TestMemoryCCRWriteThroughRegisterWindowInvalidatesIC(t *testing.T) {
	mem := NewMemory(1 << 20)
	require.NoError(t, mem.External.WritePhys([]byte{0x09, 0x00}, 0x1000))
	mem.CCR.SetUint32(1 << CCRBitICE)
	_, err := mem.ReadInst(0x1000, false)
	require.NoError(t, err)

	require.NoError(t, mem.WriteData(0xFF00001C, 4, 0, false)) // CCR := 0, disables IC
	assert.False(t, mem.CCR.ICE())
}

func TestMemoryUserModeCannotReachP4(t *testing.T) {
	mem := NewMemory(1 << 20)
	_, err := mem.ReadData(0xFF00001C, 4, true)
	assert.Error(t, err)
}

func TestMemoryWriteDataThroughOperandCache(t *testing.T) {
	mem := NewMemory(1 << 20)
	mem.CCR.SetUint32(1 << CCRBitOCE) // OCE, copy-back default

	require.NoError(t, mem.WriteData(0x2000, 4, 0xCAFEF00D, false))
	raw, err := mem.External.span(0x2000, 4)
	require.NoError(t, err)
	assert.NotEqual(t, []byte{0x0D, 0xF0, 0xFE, 0xCA}, raw, "copy-back through Memory must not hit RAM immediately")

	v, err := mem.ReadData(0x2000, 4, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xCAFEF00D), v)
}
