package service

import "github.com/sh4emu/sh4-emulator/vm"

// RegisterState is a serializable snapshot of the register file, built from
// vm.RegSnapshot for the TUI/API layers (which want JSON-friendly fields,
// not the raw SR bit-accessor type).
type RegisterState struct {
	R      [16]uint32 `json:"r"` // flat R0-R15 view (SetRegister/GetRegister numbering)
	SR     uint32     `json:"sr"`
	Flags  FlagState  `json:"flags"`
	GBR    uint32     `json:"gbr"`
	VBR    uint32     `json:"vbr"`
	MACH   uint32     `json:"mach"`
	MACL   uint32     `json:"macl"`
	PR     uint32     `json:"pr"`
	PC     uint32     `json:"pc"`
	Cycles uint64     `json:"cycles"`
}

// FlagState decodes SR's condition/control bits for display, replacing the
// N/Z/C/V view an ARM debugger would show with SH-4's T/S/Q/M plus the
// privilege-mode bits RB/BL/MD/FD.
type FlagState struct {
	T  bool // Test/carry-borrow result of CMP/, TST, ADDC, SUBC, DIV1...
	S  bool // Saturation mode for MAC.W/MAC.L
	Q  bool // DIV1 quotient-estimation state
	M  bool // DIV1 divisor-sign state
	RB bool // General register bank select
	BL bool // Exception/interrupt block
	MD bool // Privileged mode
	FD bool // FPU disable
}

// BreakpointInfo represents a breakpoint for UI display
type BreakpointInfo struct {
	Address   uint32 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition"` // Expression that must evaluate to true
}

// WatchpointInfo represents a watchpoint for UI display
type WatchpointInfo struct {
	ID      int    `json:"id"`
	Address uint32 `json:"address"`
	Type    string `json:"type"` // "read", "write", "readwrite"
	Enabled bool   `json:"enabled"`
}

// MemoryRegion represents a contiguous memory region
type MemoryRegion struct {
	Address uint32
	Data    []byte
	Size    uint32
}

// ExecutionState represents the current state of execution
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts vm.ExecutionState to service.ExecutionState
func VMStateToExecution(state vm.ExecutionState) ExecutionState {
	switch state {
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateBreakpoint:
		return StateBreakpoint
	case vm.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// DisassemblyLine represents a single disassembled instruction. Opcode is
// 16 bits wide, not 32 - every SH-4 instruction is a fixed-width halfword.
type DisassemblyLine struct {
	Address  uint32 `json:"address"`
	Opcode   uint16 `json:"opcode"`
	Mnemonic string `json:"mnemonic"`
	Symbol   string `json:"symbol"` // Symbol at this address, if any
}

// StackEntry represents a single stack location
type StackEntry struct {
	Address uint32 `json:"address"`
	Value   uint32 `json:"value"`
	Symbol  string `json:"symbol"` // If value points to a symbol
}
