package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenRegBanking(t *testing.T) {
	cpu := NewCPU()
	cpu.SetGenReg(R0, 0xAAAA)
	cpu.SR.SetRB(true)
	cpu.SetGenReg(R0, 0xBBBB)

	cpu.SR.SetRB(false)
	assert.Equal(t, uint32(0xAAAA), cpu.GenReg(R0), "bank0 R0 should be unaffected by the bank1 write")

	cpu.SR.SetRB(true)
	assert.Equal(t, uint32(0xBBBB), cpu.GenReg(R0))
}

func TestGenRegUnbankedAboveR7(t *testing.T) {
	cpu := NewCPU()
	cpu.SetGenReg(R8, 0x1234)
	cpu.SR.SetRB(true)
	assert.Equal(t, uint32(0x1234), cpu.GenReg(R8), "R8-R15 must not be affected by SR.RB")
}

func TestBankRegTargetsInactiveBank(t *testing.T) {
	cpu := NewCPU()
	cpu.SR.SetRB(false)
	cpu.SetGenReg(R3, 0x1111) // bank0
	cpu.SetBankReg(R3, 0x2222) // should land in bank1, the "other" bank

	cpu.SR.SetRB(true)
	assert.Equal(t, uint32(0x2222), cpu.GenReg(R3))
}

func TestStatusRegisterBitAccessors(t *testing.T) {
	var sr StatusRegister
	sr.SetT(true)
	sr.SetQ(true)
	sr.SetIMask(0xA)

	require.True(t, sr.T())
	require.True(t, sr.Q())
	assert.False(t, sr.M())
	assert.Equal(t, uint32(0xA), sr.IMask())

	sr.SetT(false)
	assert.False(t, sr.T())
	assert.True(t, sr.Q(), "clearing T must not disturb Q")
}

func TestOnHardResetArchitecturalState(t *testing.T) {
	mem := NewMemory(4096)
	cpu := NewCPU()
	cpu.PC = 0x12345678
	cpu.OnHardReset(mem)

	assert.Equal(t, uint32(ResetVectorPC), cpu.PC)
	assert.True(t, cpu.SR.MD())
	assert.True(t, cpu.SR.BL())
	assert.True(t, cpu.SR.RB())
	assert.Equal(t, uint32(0xF), cpu.SR.IMask())
}
