package vm

import (
	"encoding/json"
	"fmt"
)

// CPU holds the SH-4 register file and the delayed-branch bookkeeping the
// interpreter needs between Step calls. General registers are a single
// 24-slot array, per the design note against modeling "the current bank" as
// its own view: GenRegIdx/BankRegIdx translate (name, SR.RB) into an index
// into R, and that's the only place banking logic lives.
type CPU struct {
	// R0-R7 bank0, R0-R7 bank1, R8-R15 (unbanked), in that order.
	R [GeneralRegisterSlots]uint32

	SR   StatusRegister
	GBR  uint32
	VBR  uint32
	SSR  uint32
	SPC  uint32
	SGR  uint32
	DBR  uint32
	MACH uint32
	MACL uint32
	PR   uint32
	PC   uint32

	FPU FPU

	// Delayed-branch state: set by a delayed branch,
	// consumed after the delay-slot instruction completes.
	DelayedPending bool
	DelayedTarget  uint32

	// EXPEVT / architectural exception state.
	Halted      bool
	Diagnostics []string
	Exception   ExceptionState
}

// StatusRegister is SR, accessed through named bit methods rather than raw
// shifts everywhere else in the interpreter, following a ToUint32/FromUint32
// pattern adapted to the SH-4 bit layout.
type StatusRegister struct {
	raw uint32
}

func NewStatusRegister(v uint32) StatusRegister { return StatusRegister{raw: v} }

func (s StatusRegister) Uint32() uint32 { return s.raw }
func (s *StatusRegister) SetUint32(v uint32) { s.raw = v }

func (s StatusRegister) T() bool { return s.raw&SRMaskT != 0 }
func (s *StatusRegister) SetT(v bool) { s.setBit(SRMaskT, v) }

func (s StatusRegister) SBit() bool { return s.raw&SRMaskS != 0 }
func (s *StatusRegister) SetSBit(v bool) { s.setBit(SRMaskS, v) }

func (s StatusRegister) Q() bool { return s.raw&SRMaskQ != 0 }
func (s *StatusRegister) SetQ(v bool) { s.setBit(SRMaskQ, v) }

func (s StatusRegister) M() bool { return s.raw&SRMaskM != 0 }
func (s *StatusRegister) SetM(v bool) { s.setBit(SRMaskM, v) }

func (s StatusRegister) FD() bool { return s.raw&SRMaskFD != 0 }
func (s *StatusRegister) SetFD(v bool) { s.setBit(SRMaskFD, v) }

func (s StatusRegister) BL() bool { return s.raw&SRMaskBL != 0 }
func (s *StatusRegister) SetBL(v bool) { s.setBit(SRMaskBL, v) }

func (s StatusRegister) RB() bool { return s.raw&SRMaskRB != 0 }
func (s *StatusRegister) SetRB(v bool) { s.setBit(SRMaskRB, v) }

func (s StatusRegister) MD() bool { return s.raw&SRMaskMD != 0 }
func (s *StatusRegister) SetMD(v bool) { s.setBit(SRMaskMD, v) }

func (s StatusRegister) IMask() uint32 { return (s.raw & SRMaskIMASK) >> SRBitIMASK }
func (s *StatusRegister) SetIMask(v uint32) {
	s.raw = (s.raw &^ uint32(SRMaskIMASK)) | ((v & 0xF) << SRBitIMASK)
}

// MarshalJSON exposes the decoded condition bits rather than the unexported
// raw word, so FlagTrace's JSON export (and API responses) carry T/S/Q/M
// instead of an opaque number.
func (s StatusRegister) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Raw uint32 `json:"raw"`
		T   bool   `json:"t"`
		S   bool   `json:"s"`
		Q   bool   `json:"q"`
		M   bool   `json:"m"`
	}{
		Raw: s.raw,
		T:   s.T(),
		S:   s.SBit(),
		Q:   s.Q(),
		M:   s.M(),
	})
}

func (s *StatusRegister) setBit(mask uint32, v bool) {
	if v {
		s.raw |= mask
	} else {
		s.raw &^= mask
	}
}

// NewCPU creates a CPU with all state zeroed, matching the architectural
// state produced by construction (before OnHardReset runs).
func NewCPU() *CPU {
	return &CPU{}
}

// Reset zeroes every register. OnHardReset (in exception.go) additionally
// puts SR/PC into their architectural reset values; Reset alone is the raw
// "all zero" state assigned to construction.
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.SR = StatusRegister{}
	c.GBR, c.VBR, c.SSR, c.SPC, c.SGR, c.DBR = 0, 0, 0, 0, 0, 0
	c.MACH, c.MACL, c.PR, c.PC = 0, 0, 0, 0
	c.FPU = FPU{}
	c.DelayedPending = false
	c.DelayedTarget = 0
	c.Halted = false
	c.Diagnostics = nil
}

// GenRegIdx maps a general-register name (0-15) to its slot in R, taking
// SR.RB bank selection into account for R0-R7.
func (c *CPU) GenRegIdx(name int) int {
	if name < 0 || name > 15 {
		return 0
	}
	if name <= 7 {
		if c.SR.RB() {
			return BankedRegisterCount + name // bank1: slots 8-15
		}
		return name // bank0: slots 0-7
	}
	return BankedRegisterCount*2 + (name - 8) // R8-R15: slots 16-23
}

// BankRegIdx maps a register name (0-7) to the slot in the *other* bank from
// the one SR.RB currently selects — used by bank-register accessor forms
// (LDC/STC Rn_BANK) which always name the inactive bank.
func (c *CPU) BankRegIdx(name int) int {
	if name < 0 || name > 7 {
		return 0
	}
	if c.SR.RB() {
		return name // bank0 is the "other" bank
	}
	return BankedRegisterCount + name // bank1 is the "other" bank
}

// GenReg returns the current value of general register name (0-15).
func (c *CPU) GenReg(name int) uint32 { return c.R[c.GenRegIdx(name)] }

// SetGenReg sets general register name (0-15).
func (c *CPU) SetGenReg(name int, v uint32) { c.R[c.GenRegIdx(name)] = v }

// BankReg returns the value of the inactive bank's copy of register name.
func (c *CPU) BankReg(name int) uint32 { return c.R[c.BankRegIdx(name)] }

// SetBankReg sets the inactive bank's copy of register name.
func (c *CPU) SetBankReg(name int, v uint32) { c.R[c.BankRegIdx(name)] = v }

// IncrementPC advances the program counter by one instruction width.
func (c *CPU) IncrementPC() { c.PC += InstructionSize }

// ScheduleDelayedBranch arms the delayed-branch flag; the interpreter's step
// loop clears it and performs the jump after executing the delay slot.
func (c *CPU) ScheduleDelayedBranch(target uint32) {
	c.DelayedPending = true
	c.DelayedTarget = target
}

// note records a non-fatal diagnostic: branch-in-delay-slot and similar
// corner cases surface here instead of failing silently.
func (c *CPU) note(format string, args ...interface{}) {
	c.Diagnostics = append(c.Diagnostics, fmt.Sprintf(format, args...))
}
