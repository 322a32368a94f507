package vm

// ExceptionCode enumerates the EXPEVT values the interpreter assigns when
// it converts a memory-access-layer failure or a TRAPA into an
// architectural exception.
type ExceptionCode uint32

const (
	ExceptionNone              ExceptionCode = 0
	ExceptionAddressErrorRead  ExceptionCode = 0x0E0
	ExceptionAddressErrorWrite ExceptionCode = 0x100
	ExceptionIllegalInstruction ExceptionCode = 0x180
	ExceptionTRAPA             ExceptionCode = 0x160
	ExceptionGeneralIO         ExceptionCode = 0x1E0
)

// EXPEVT/TRA are exposed on CPU so a debugger can inspect the most recent
// architectural exception without the interpreter needing a separate
// "fault" channel.
type ExceptionState struct {
	EXPEVT ExceptionCode
	TRA    uint32
}

// Raise transfers control to the VBR-based handler: SPC <- PC+2 (the
// instruction after the one that faulted), SSR <- SR, SR.{BL,MD,RB} <- 1,
// PC <- VBR + 0x100 (the general exception entry), and records EXPEVT/TRA
// for the host. A pending delayed branch is discarded: a branch instruction
// placed inside another branch's delay slot is undefined behavior on real
// silicon, and this CORE suppresses raising it as a fault rather than
// simulating the undefined case; TRAPA and address errors are a separate,
// simpler path that this CORE does implement fully.
func (c *CPU) Raise(code ExceptionCode, tra uint32) error {
	c.SPC = c.PC + InstructionSize
	c.SSR = c.SR.Uint32()
	c.SGR = c.R[c.GenRegIdx(15)]
	c.SR.SetBL(true)
	c.SR.SetMD(true)
	c.SR.SetRB(true)
	c.Exception.EXPEVT = code
	c.Exception.TRA = tra
	c.PC = c.VBR + 0x100
	c.DelayedPending = false
	return nil
}

// OnHardReset zeroes the caches and register file, then puts PC/SR into
// their architectural reset values:
// PC = reset vector, SR = { MD=1, BL=1, IMASK=0xF, RB=1 }, FPU disabled,
// caches disabled.
func (c *CPU) OnHardReset(mem *Memory) {
	c.Reset()
	c.PC = ResetVectorPC
	c.SR.SetUint32(ResetSR)
	c.SR.SetFD(true)
	c.FPU.FPSCR = FPSCRMaskDN // FPU starts with denormals treated as zero, round-to-nearest
	mem.OC.Reset()
	mem.IC.Reset()
	mem.CCR.SetUint32(0)
}
