package vm

// This file implements the CPU-facing operations the CORE exposes to the
// surrounding emulator that have no natural home next to a single
// instruction family: Enter, GetRegs/SetRegs, GetFPU/SetFPU, plus the
// flat register-name and byte/word memory accessors the debugger and API
// packages drive the CORE through. None of this changes execution
// semantics; it is the snapshot/inspection surface a debugger or test
// harness needs on top of Step/RunUntil.

// ExecutionState reports what RunUntilHalt-style callers should do next:
// keep stepping, stop because a breakpoint fired, stop because the CPU
// halted (SLEEP), or stop because Step returned an error.
type ExecutionState int

const (
	StateHalted ExecutionState = iota
	StateRunning
	StateBreakpoint
	StateError
)

func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	default:
		return "halted"
	}
}

// Enter synchronizes host state with FPSCR before a batch of Step calls.
// Go has no portable way to reprogram the host FPU's hardware
// rounding mode, so this records nothing and exists only as the documented
// hook point. No FPU op reads FPSCR.RM: arithmetic and conversions round
// to nearest as Go's float operations do, and FTRC truncates.
func (vm *VM) Enter() {}

// RegSnapshot is a flat copy of the general and control/system registers,
// used by GetRegs/SetRegs and by the debugger/API packages for display and
// scripted modification.
type RegSnapshot struct {
	R    [GeneralRegisterSlots]uint32
	SR   uint32
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
}

// GetRegs snapshots the register file.
func (vm *VM) GetRegs() RegSnapshot {
	c := vm.CPU
	return RegSnapshot{
		R: c.R, SR: c.SR.Uint32(), GBR: c.GBR, VBR: c.VBR, SSR: c.SSR,
		SPC: c.SPC, SGR: c.SGR, DBR: c.DBR, MACH: c.MACH, MACL: c.MACL,
		PR: c.PR, PC: c.PC,
	}
}

// SetRegs restores a register snapshot, e.g. for a debugger "set" command or
// test-harness fixture.
func (vm *VM) SetRegs(s RegSnapshot) {
	c := vm.CPU
	c.R = s.R
	c.SR.SetUint32(s.SR)
	c.GBR, c.VBR, c.SSR = s.GBR, s.VBR, s.SSR
	c.SPC, c.SGR, c.DBR = s.SPC, s.SGR, s.DBR
	c.MACH, c.MACL = s.MACH, s.MACL
	c.PR, c.PC = s.PR, s.PC
}

// FPUSnapshot is a flat copy of FPSCR, FPUL, and the raw bit patterns of
// both FPU banks (16 single-precision words each; double/vector views
// reinterpret the same storage, see fpu.go).
type FPUSnapshot struct {
	FPSCR uint32
	FPUL  uint32
	Bank0 [FloatRegCount]uint32
	Bank1 [FloatRegCount]uint32
}

// Raw returns the bank's 16 words as raw bit patterns.
func (b *FpuBank) Raw() [FloatRegCount]uint32 {
	var out [FloatRegCount]uint32
	for i := range out {
		out[i] = b.readU32(i)
	}
	return out
}

// SetRaw loads 16 raw bit-pattern words into the bank.
func (b *FpuBank) SetRaw(words [FloatRegCount]uint32) {
	for i, w := range words {
		b.writeU32(i, w)
	}
}

// GetFPU snapshots the FPU.
func (vm *VM) GetFPU() FPUSnapshot {
	f := &vm.CPU.FPU
	return FPUSnapshot{FPSCR: f.FPSCR, FPUL: f.FPUL, Bank0: f.Bank0.Raw(), Bank1: f.Bank1.Raw()}
}

// SetFPU restores an FPU snapshot.
func (vm *VM) SetFPU(s FPUSnapshot) {
	f := &vm.CPU.FPU
	f.FPSCR, f.FPUL = s.FPSCR, s.FPUL
	f.Bank0.SetRaw(s.Bank0)
	f.Bank1.SetRaw(s.Bank1)
}

// GetRegister and SetRegister give debugger/API callers a flat 0-15 general
// register name space rather than the bank-aware split GenReg/BankReg
// expose; they are a thin pass-through to GenReg/SetGenReg; no second
// banking implementation lives here.
func (c *CPU) GetRegister(name int) uint32    { return c.GenReg(name) }
func (c *CPU) SetRegister(name int, v uint32) { c.SetGenReg(name, v) }

// SP and SetSP address R15 by the software calling convention the loader
// and debugger use to set up a stack for assembled test programs; SH-4 has
// no hardware stack-pointer register, so this is ABI convention only, not
// an architectural accessor.
func (c *CPU) SP() uint32           { return c.GenReg(R15) }
func (c *CPU) SetSP(v uint32) error { c.SetGenReg(R15, v); return nil }

// ReadByteAt, ReadHalfword, ReadWord and their write counterparts are
// fixed-width convenience wrappers over ReadData/WriteData for debugger and
// API callers that want byte/halfword/word granularity without repeating
// the width argument. All access privileged (userMode=false), since
// debugger and test-harness access always runs privileged.
func (m *Memory) ReadByteAt(addr uint32) (byte, error) {
	v, err := m.ReadData(addr, 1, false)
	return byte(v), err
}

func (m *Memory) ReadByte(addr uint32) (byte, error) { return m.ReadByteAt(addr) }

func (m *Memory) ReadHalfword(addr uint32) (uint16, error) {
	v, err := m.ReadData(addr, 2, false)
	return uint16(v), err
}

func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	v, err := m.ReadData(addr, 4, false)
	return uint32(v), err
}

func (m *Memory) WriteByte(addr uint32, v byte) error {
	return m.WriteData(addr, 1, uint64(v), false)
}

func (m *Memory) WriteHalfword(addr uint32, v uint16) error {
	return m.WriteData(addr, 2, uint64(v), false)
}

func (m *Memory) WriteWord(addr uint32, v uint32) error {
	return m.WriteData(addr, 4, uint64(v), false)
}

// Reset restores architectural reset state and zeroes external RAM, caches,
// and the FPU: a hard reset alone only zeroes the register file and
// caches, but a debugger "reset" command additionally wants fresh RAM.
func (vm *VM) Reset() {
	vm.Mem.External.RAM.Data = make([]byte, len(vm.Mem.External.RAM.Data))
	vm.Mem.OC.Reset()
	vm.Mem.IC.Reset()
	vm.Mem.CCR.SetUint32(0)
	vm.CPU.OnHardReset(vm.Mem)
	vm.StepCount = 0
	vm.State = StateHalted
}

// ResetRegisters restores architectural reset state without touching RAM,
// then moves PC to EntryPoint so a debugger's "restart" command resumes the
// currently loaded program rather than the SH-4 reset vector.
func (vm *VM) ResetRegisters() error {
	vm.CPU.OnHardReset(vm.Mem)
	vm.CPU.PC = vm.EntryPoint
	vm.StepCount = 0
	vm.State = StateHalted
	return nil
}
