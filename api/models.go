package api

import (
	"time"

	"github.com/sh4emu/sh4-emulator/service"
)

// SessionCreateRequest represents a request to create a new session
type SessionCreateRequest struct {
	MemorySize uint32 `json:"memorySize,omitempty"` // RAM size in bytes (default: 1MB)
}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	PC        uint32 `json:"pc"`
	Cycles    uint64 `json:"cycles"`
	Error     string `json:"error,omitempty"`
}

// LoadProgramRequest represents a request to load a program
type LoadProgramRequest struct {
	Source string `json:"source"` // Assembly source code
}

// LoadProgramResponse represents the response from loading a program
type LoadProgramResponse struct {
	Success bool              `json:"success"`
	Errors  []string          `json:"errors,omitempty"`
	Symbols map[string]uint32 `json:"symbols,omitempty"`
}

// RegistersResponse represents the current register state
type RegistersResponse struct {
	R      [16]uint32 `json:"r"` // R0-R15, R15 is SP by software convention
	SR     uint32     `json:"sr"`
	Flags  FlagsInfo  `json:"flags"`
	GBR    uint32     `json:"gbr"`
	VBR    uint32     `json:"vbr"`
	MACH   uint32     `json:"mach"`
	MACL   uint32     `json:"macl"`
	PR     uint32     `json:"pr"`
	PC     uint32     `json:"pc"`
	Cycles uint64     `json:"cycles"`
}

// FlagsInfo represents the decoded SR condition/control bits
type FlagsInfo struct {
	T  bool `json:"t"`
	S  bool `json:"s"`
	Q  bool `json:"q"`
	M  bool `json:"m"`
	RB bool `json:"rb"`
	BL bool `json:"bl"`
	MD bool `json:"md"`
	FD bool `json:"fd"`
}

// MemoryRequest represents a request for memory data
type MemoryRequest struct {
	Address uint32 `json:"address"`
	Length  uint32 `json:"length"`
}

// MemoryResponse represents memory data
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
	Length  uint32 `json:"length"`
}

// DisassemblyRequest represents a request for disassembly
type DisassemblyRequest struct {
	Address uint32 `json:"address"`
	Count   uint32 `json:"count"`
}

// DisassemblyResponse represents disassembled instructions
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo represents a disassembled instruction
type InstructionInfo struct {
	Address     uint32 `json:"address"`
	Opcode      uint16 `json:"opcode"`
	Disassembly string `json:"disassembly"`
	Symbol      string `json:"symbol,omitempty"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []uint32 `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint
type WatchpointRequest struct {
	Address uint32 `json:"address"`
	Type    string `json:"type"` // "read", "write", "readwrite"
}

// WatchpointResponse represents a newly created watchpoint
type WatchpointResponse struct {
	ID      int    `json:"id"`
	Address uint32 `json:"address"`
	Type    string `json:"type"`
}

// WatchpointsResponse represents a list of watchpoints
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// EvaluateRequest represents a request to evaluate a debugger expression
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse represents the result of evaluating an expression
type EvaluateResponse struct {
	Value uint32 `json:"value"`
}

// SourceMapResponse represents the address-to-source-line mapping
type SourceMapResponse struct {
	Entries []service.SourceMapEntry `json:"entries"`
}

// FlagTraceEntryInfo represents one SR flag-change event
type FlagTraceEntryInfo struct {
	Sequence    uint64    `json:"sequence"`
	PC          uint32    `json:"pc"`
	Instruction string    `json:"instruction"`
	Flags       FlagsInfo `json:"flags"`
}

// FlagTraceDataResponse represents recorded flag-trace entries
type FlagTraceDataResponse struct {
	Entries []FlagTraceEntryInfo `json:"entries"`
	Count   int                  `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event
type StateEvent struct {
	State     string     `json:"state"`
	PC        uint32     `json:"pc"`
	Registers [16]uint32 `json:"registers"`
	Flags     FlagsInfo  `json:"flags"`
	Cycles    uint64     `json:"cycles"`
}

// ExecutionEvent represents execution events like breakpoints
type ExecutionEvent struct {
	Event   string `json:"event"` // "breakpoint_hit", "error", "halted"
	Address uint32 `json:"address,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Message string `json:"message,omitempty"`
}

// ExecutionConfig mirrors the execution-relevant fields of config.Config
type ExecutionConfig struct {
	MaxCycles    uint64 `json:"maxCycles"`
	StackSize    uint32 `json:"stackSize"`
	DefaultEntry string `json:"defaultEntry"`
}

// CacheConfig mirrors config.Config.Cache
type CacheConfig struct {
	OCE bool `json:"oce"`
	ICE bool `json:"ice"`
	CB  bool `json:"cb"`
	WT  bool `json:"wt"`
	ORA bool `json:"ora"`
	OIX bool `json:"oix"`
	IIX bool `json:"iix"`
}

// DebuggerConfig mirrors config.Config.Debugger
type DebuggerConfig struct {
	HistorySize    int  `json:"historySize"`
	AutoSaveBreaks bool `json:"autoSaveBreaks"`
	ShowSource     bool `json:"showSource"`
	ShowRegisters  bool `json:"showRegisters"`
}

// ConfigResponse represents the emulator's current configuration
type ConfigResponse struct {
	Execution ExecutionConfig `json:"execution"`
	Cache     CacheConfig     `json:"cache"`
	Debugger  DebuggerConfig  `json:"debugger"`
}

// ExampleInfo describes an example assembly program
type ExampleInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ExamplesResponse lists available example programs
type ExamplesResponse struct {
	Examples []ExampleInfo `json:"examples"`
	Count    int           `json:"count"`
}

// ExampleContentResponse returns the source of a single example program
type ExampleContentResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
}

// ToRegisterResponse converts service.RegisterState to API response
func ToRegisterResponse(regs *service.RegisterState) *RegistersResponse {
	return &RegistersResponse{
		R:  regs.R,
		SR: regs.SR,
		Flags: FlagsInfo{
			T: regs.Flags.T, S: regs.Flags.S, Q: regs.Flags.Q, M: regs.Flags.M,
			RB: regs.Flags.RB, BL: regs.Flags.BL, MD: regs.Flags.MD, FD: regs.Flags.FD,
		},
		GBR:    regs.GBR,
		VBR:    regs.VBR,
		MACH:   regs.MACH,
		MACL:   regs.MACL,
		PR:     regs.PR,
		PC:     regs.PC,
		Cycles: regs.Cycles,
	}
}

// ToInstructionInfo converts service.DisassemblyLine to API response
func ToInstructionInfo(line *service.DisassemblyLine) InstructionInfo {
	return InstructionInfo{
		Address:     line.Address,
		Opcode:      line.Opcode,
		Disassembly: line.Mnemonic,
		Symbol:      line.Symbol,
	}
}
