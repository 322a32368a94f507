package service

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sh4emu/sh4-emulator/debugger"
	"github.com/sh4emu/sh4-emulator/encoder"
	"github.com/sh4emu/sh4-emulator/loader"
	"github.com/sh4emu/sh4-emulator/parser"
	"github.com/sh4emu/sh4-emulator/vm"
)

const (
	// Validator limits for API safety
	maxDisassemblyCount = 1000   // Maximum number of instructions to disassemble
	maxStackCount       = 1000   // Maximum number of stack entries to return
	maxStackOffset      = 100000 // Maximum stack offset to prevent wraparound attacks
	stepsBeforeYield    = 1000   // Yield every N steps during execution
)

var serviceLog *log.Logger

func init() {
	// Check if debug logging is enabled via environment variable
	if os.Getenv("SH4_EMULATOR_DEBUG") != "" {
		// Create debug log file.
		// Note: File handle intentionally not closed - kept open for process lifetime.
		// This is acceptable for debug logging; the OS cleans up on process exit.
		logPath := filepath.Join(os.TempDir(), "sh4-emulator-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		// Disable logging by default
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// DebuggerService provides a thread-safe interface to debugger functionality.
// This service is shared by the TUI and the HTTP API layer.
//
// Lock Ordering:
// The service uses its own sync.RWMutex (s.mu) to protect all field access,
// including access to the debugger. When calling Debugger methods that have
// their own internal mutex (like ShouldBreak), the lock order is:
// s.mu -> debugger.mu
//
// This is safe because:
// - The TUI uses the Debugger's internal mutex directly (no service mutex)
// - The service always acquires s.mu before any Debugger method that uses d.mu
// - The API only accesses debugger state through the service
//
// Do NOT acquire locks in the reverse order (debugger.mu -> s.mu) as this
// would create a deadlock risk.
type DebuggerService struct {
	mu              sync.RWMutex
	vm              *vm.VM
	debugger        *debugger.Debugger
	symbols         map[string]uint32
	sourceMap       []SourceMapEntry  // Address to source line mapping with line numbers
	sourceMapByAddr map[uint32]string // Quick lookup by address (for debugger)
	program         *parser.Program
	entryPoint      uint32
}

// SourceMapEntry pairs an address with the source line it was assembled
// from, keeping line numbers for TUI display.
type SourceMapEntry struct {
	Address    uint32
	LineNumber int
	Line       string
}

// NewDebuggerService creates a new debugger service
func NewDebuggerService(machine *vm.VM) *DebuggerService {
	return &DebuggerService{
		vm:              machine,
		debugger:        debugger.NewDebugger(machine),
		symbols:         make(map[string]uint32),
		sourceMap:       nil,
		sourceMapByAddr: make(map[uint32]string),
	}
}

// GetVM returns the underlying VM (for testing)
func (s *DebuggerService) GetVM() *vm.VM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm
}

// LoadProgram loads and initializes a parsed program
func (s *DebuggerService) LoadProgram(program *parser.Program, entryPoint uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.program = program
	s.entryPoint = entryPoint

	// Extract symbols
	s.symbols = make(map[string]uint32)
	for name, symbol := range program.SymbolTable.GetAllSymbols() {
		if symbol.Type == parser.SymbolLabel {
			s.symbols[name] = symbol.Value
		}
	}

	// Build source map with line numbers
	s.sourceMap = nil
	s.sourceMapByAddr = make(map[uint32]string)
	for _, inst := range program.Instructions {
		entry := SourceMapEntry{
			Address:    inst.Address,
			LineNumber: inst.Pos.Line,
			Line:       inst.RawLine,
		}
		s.sourceMap = append(s.sourceMap, entry)
		s.sourceMapByAddr[inst.Address] = inst.RawLine
	}
	// Note: Data directives are excluded from breakpoint-valid locations
	// but kept in sourceMapByAddr for debugger display
	for _, dir := range program.Directives {
		if dir.Name == ".word" || dir.Name == ".byte" || dir.Name == ".ascii" ||
			dir.Name == ".asciz" || dir.Name == ".space" {
			s.sourceMapByAddr[dir.Address] = "[DATA]" + dir.RawLine
		}
	}

	// Load into debugger
	s.debugger.LoadSymbols(s.symbols)
	s.debugger.LoadSourceMap(s.sourceMapByAddr)

	// Load into VM memory
	if err := loader.LoadProgramIntoVM(s.vm, program, entryPoint); err != nil {
		return err
	}
	s.vm.EntryPoint = entryPoint

	// Initialize stack pointer by the software convention, unless a caller
	// already set R15 (preserve an explicit SetSP from before LoadProgram).
	if s.vm.CPU.SP() == 0 {
		if err := s.vm.CPU.SetSP(vm.StackSegmentStart + vm.StackSegmentSize); err != nil {
			return fmt.Errorf("failed to initialize stack pointer: %w", err)
		}
	}

	// Reset execution state to halted (not running until execution begins)
	s.vm.State = vm.StateHalted
	s.debugger.Running = false

	return nil
}

// GetRegisterState returns current register state (thread-safe)
func (s *DebuggerService) GetRegisterState() RegisterState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regs := s.vm.GetRegs()
	var flat [16]uint32
	for i := 0; i <= 15; i++ {
		flat[i] = s.vm.CPU.GetRegister(i)
	}

	sr := s.vm.CPU.SR
	return RegisterState{
		R:  flat,
		SR: regs.SR,
		Flags: FlagState{
			T: sr.T(), S: sr.SBit(), Q: sr.Q(), M: sr.M(),
			RB: sr.RB(), BL: sr.BL(), MD: sr.MD(), FD: sr.FD(),
		},
		GBR:    regs.GBR,
		VBR:    regs.VBR,
		MACH:   regs.MACH,
		MACL:   regs.MACL,
		PR:     regs.PR,
		PC:     regs.PC,
		Cycles: s.vm.StepCount,
	}
}

// Step executes a single instruction
func (s *DebuggerService) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.vm.Step()
}

// Continue runs until breakpoint or halt
func (s *DebuggerService) Continue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.debugger.Running = true
	s.debugger.StepMode = debugger.StepNone

	return nil
}

// Pause pauses execution and sets VM state to halted
func (s *DebuggerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Running = false
	s.vm.State = vm.StateHalted
}

// Reset performs a complete reset to initial state
// This clears the loaded program, all breakpoints, and resets the VM to pristine state
// Use ResetToEntryPoint() if you want to restart the current program instead
func (s *DebuggerService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Full VM reset: clears all registers, memory, caches, and execution state
	s.vm.Reset()

	// Clear loaded program and associated metadata
	s.program = nil
	s.entryPoint = 0
	s.vm.EntryPoint = 0
	s.symbols = make(map[string]uint32)
	s.sourceMap = nil
	s.sourceMapByAddr = make(map[uint32]string)

	// Clear all breakpoints and watchpoints
	s.debugger.Breakpoints.Clear()
	s.debugger.Watchpoints.Clear()

	// Reset execution control
	s.debugger.Running = false
	s.vm.State = vm.StateHalted

	return nil
}

// ResetToEntryPoint resets VM to program entry point without clearing the loaded program
// This is useful for restarting execution of the current program
func (s *DebuggerService) ResetToEntryPoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		// No program loaded, perform full reset
		s.vm.Reset()
		s.vm.State = vm.StateHalted
		s.debugger.Running = false
		return nil
	}

	// Reset registers and execution state but preserve memory contents
	if err := s.vm.ResetRegisters(); err != nil {
		return fmt.Errorf("failed to reset registers: %w", err)
	}
	s.debugger.Running = false

	return nil
}

// GetExecutionState returns current execution state
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VMStateToExecution(s.vm.State)
}

// AddBreakpoint adds a breakpoint at the specified address
func (s *DebuggerService) AddBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate that the address corresponds to actual code (not data)
	// Use sourceMapByAddr which contains both code and data entries
	line, exists := s.sourceMapByAddr[address]
	if !exists {
		return fmt.Errorf("invalid breakpoint address: 0x%X does not correspond to executable code", address)
	}
	// Reject data locations (prefixed with [DATA])
	if len(line) >= 6 && line[:6] == "[DATA]" {
		return fmt.Errorf("invalid breakpoint address: 0x%X is a data location, not executable code", address)
	}

	s.debugger.Breakpoints.AddBreakpoint(address, false, "")
	return nil
}

// RemoveBreakpoint removes a breakpoint
func (s *DebuggerService) RemoveBreakpoint(address uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Breakpoints.DeleteBreakpointAt(address)
}

// GetBreakpoints returns all breakpoints
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bps := s.debugger.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = BreakpointInfo{
			Address: bp.Address,
			Enabled: bp.Enabled,
		}
	}
	return result
}

// ClearAllBreakpoints removes all breakpoints
func (s *DebuggerService) ClearAllBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Breakpoints.Clear()
}

// GetMemory returns memory contents for a region
func (s *DebuggerService) GetMemory(address uint32, size uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	serviceLog.Printf("GetMemory: address=0x%08X, size=%d", address, size)
	data := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		b, err := s.vm.Mem.ReadByteAt(address + i)
		if err != nil {
			serviceLog.Printf("GetMemory: ReadByteAt failed at offset %d: %v", i, err)
			// Return 0 for unmapped or unreadable memory instead of failing the whole request
			// This allows the memory view to show partial results at segment boundaries
			data[i] = 0
			continue
		}
		data[i] = b
	}
	serviceLog.Printf("GetMemory: success, returning %d bytes", len(data))
	return data, nil
}

// GetSourceLine returns the source line for an address
func (s *DebuggerService) GetSourceLine(address uint32) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceMapByAddr[address]
}

// GetSourceMap returns the source map entries with line numbers
func (s *DebuggerService) GetSourceMap() []SourceMapEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return copy of source map to prevent external modification
	result := make([]SourceMapEntry, len(s.sourceMap))
	copy(result, s.sourceMap)
	return result
}

// GetSourceMapByAddr returns address-to-line lookup (for debugger display)
func (s *DebuggerService) GetSourceMapByAddr() map[uint32]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return copy to prevent external modification
	result := make(map[uint32]string, len(s.sourceMapByAddr))
	for addr, line := range s.sourceMapByAddr {
		result[addr] = line
	}
	return result
}

// GetSymbols returns all symbols
func (s *DebuggerService) GetSymbols() map[string]uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to prevent external modification
	symbols := make(map[string]uint32, len(s.symbols))
	for k, v := range s.symbols {
		symbols[k] = v
	}
	return symbols
}

// GetSymbolForAddress resolves an address to a symbol name
func (s *DebuggerService) GetSymbolForAddress(addr uint32) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSymbolForAddressUnsafe(addr)
}

// RunUntilHalt runs program until halt or breakpoint
// If Running is already false (e.g., paused before goroutine started), returns immediately.
// This handles the race where Pause() is called between Continue() setting Running=true
// and this function starting execution.
func (s *DebuggerService) RunUntilHalt() error {
	serviceLog.Println("RunUntilHalt() called")
	s.mu.Lock()
	// Check if already paused before we started (handles race with Pause())
	if !s.debugger.Running {
		serviceLog.Println("RunUntilHalt() - already paused, exiting early")
		s.mu.Unlock()
		return nil
	}

	s.vm.State = vm.StateRunning
	s.mu.Unlock()

	stepCount := 0

	for {
		s.mu.Lock()
		if !s.debugger.Running || s.vm.State != vm.StateRunning {
			serviceLog.Printf("Exiting loop: Running=%v, State=%v", s.debugger.Running, s.vm.State)
			s.mu.Unlock()
			break
		}

		// Check breakpoints
		if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
			serviceLog.Println("Breakpoint hit")
			s.debugger.Running = false
			s.vm.State = vm.StateBreakpoint
			s.mu.Unlock()
			break
		}

		pc := s.vm.CPU.PC
		err := s.vm.Step()
		halted := s.vm.CPU.Halted

		if stepCount == 0 {
			serviceLog.Printf("Executing at PC=0x%08X", pc)
		}

		if err != nil {
			serviceLog.Printf("Step error: %v", err)
			s.debugger.Running = false
			s.vm.State = vm.StateError
			s.mu.Unlock()
			return err
		}

		if halted {
			serviceLog.Println("VM halted")
			s.debugger.Running = false
			s.vm.State = vm.StateHalted
			s.mu.Unlock()
			break
		}
		s.mu.Unlock()

		// Periodically yield to allow other goroutines (API handlers) to query state
		stepCount++
		if stepCount >= stepsBeforeYield {
			serviceLog.Printf("Yielding after %d steps", stepCount)
			stepCount = 0
			time.Sleep(1 * time.Millisecond)
		}
	}

	serviceLog.Println("RunUntilHalt() completed")
	return nil
}

// IsRunning returns whether execution is in progress
func (s *DebuggerService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugger.Running
}

// SetRunning sets the running state synchronously
// Used by async execution methods to set state before launching goroutines
func (s *DebuggerService) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Running = running
	if running {
		s.vm.State = vm.StateRunning
	} else {
		// Don't override other states (halted, error, breakpoint)
		if s.vm.State == vm.StateRunning {
			s.vm.State = vm.StateHalted
		}
	}
}

// GetDisassembly returns disassembled instructions starting at address.
// Returns an empty slice if inputs are invalid or memory reads fail.
// Truncates the result if memory errors occur before count is reached.
//
// Parameters:
//   - startAddr: must be 2-byte aligned (every SH-4 instruction is a fixed-width halfword)
//   - count: must be positive and <= maxDisassemblyCount
func (s *DebuggerService) GetDisassembly(startAddr uint32, count int) []DisassemblyLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxDisassemblyCount {
		return []DisassemblyLine{}
	}
	if startAddr&0x1 != 0 {
		return []DisassemblyLine{}
	}

	if s.vm == nil {
		return []DisassemblyLine{}
	}

	lines := make([]DisassemblyLine, 0, count)
	addr := startAddr
	// Clamp to first mapped code address to avoid empty results when startAddr is below code segment
	if addr < vm.CodeSegmentStart {
		addr = vm.CodeSegmentStart
	}

	for i := 0; i < count; i++ {
		opcode, err := s.vm.Mem.ReadHalfword(addr)
		if err != nil {
			// Memory read error - return what we have so far (truncated result)
			break
		}

		symbol := s.getSymbolForAddressUnsafe(addr)

		mnemonic := fmt.Sprintf("0x%04X", opcode)
		if inst, decErr := vm.Decode(opcode); decErr == nil {
			mnemonic = encoder.Disassemble(inst)
		}

		lines = append(lines, DisassemblyLine{
			Address:  addr,
			Opcode:   opcode,
			Mnemonic: mnemonic,
			Symbol:   symbol,
		})

		addr += 2
	}

	return lines
}

// GetStack returns stack contents from SP+offset.
// Returns an empty slice if inputs are invalid or memory reads fail.
//
// Parameters:
//   - offset: stack offset in words (multiplied by 4 for byte offset).
//     Must be in range [-maxStackOffset, maxStackOffset] to prevent wraparound attacks.
//   - count: number of stack entries to read. Must be positive and <= maxStackCount.
//
// The function performs safe arithmetic with overflow detection to prevent
// integer wraparound vulnerabilities.
func (s *DebuggerService) GetStack(offset int, count int) []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > maxStackCount {
		return []StackEntry{}
	}

	if offset < -maxStackOffset || offset > maxStackOffset {
		return []StackEntry{}
	}

	if s.vm == nil {
		return []StackEntry{}
	}

	sp := s.vm.CPU.SP()

	offsetBytes := int64(offset) * 4
	newAddr := int64(sp) + offsetBytes

	if newAddr < 0 || newAddr > 0xFFFFFFFF {
		return []StackEntry{}
	}

	startAddr := uint32(newAddr)
	entries := make([]StackEntry, 0, count)

	for i := 0; i < count; i++ {
		addrOffset := int64(i) * 4
		nextAddr := int64(startAddr) + addrOffset

		if nextAddr < 0 || nextAddr > 0xFFFFFFFF {
			break
		}

		addr := uint32(nextAddr)

		value, err := s.vm.Mem.ReadWord(addr)
		if err != nil {
			break
		}

		symbol := s.getSymbolForAddressUnsafe(value)

		entries = append(entries, StackEntry{
			Address: addr,
			Value:   value,
			Symbol:  symbol,
		})
	}

	return entries
}

// getSymbolForAddressUnsafe is the internal version without locking
func (s *DebuggerService) getSymbolForAddressUnsafe(addr uint32) string {
	for name, symbolAddr := range s.symbols {
		if symbolAddr == addr {
			return name
		}
	}
	return ""
}

// StepOver executes one instruction, stepping over function calls
func (s *DebuggerService) StepOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil || s.program == nil {
		return fmt.Errorf("no program loaded")
	}

	s.debugger.SetStepOver()

	for s.debugger.Running {
		if s.debugger.StepMode != debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}

		if err := s.vm.Step(); err != nil {
			s.debugger.Running = false
			return err
		}

		if s.debugger.StepMode == debugger.StepSingle {
			if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
				s.debugger.Running = false
				break
			}
		}
	}

	return nil
}

// StepOut executes until the current function returns
func (s *DebuggerService) StepOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil || s.program == nil {
		return fmt.Errorf("no program loaded")
	}

	s.debugger.SetStepOut()

	return nil
}

// AddWatchpoint adds a watchpoint at the specified address
func (s *DebuggerService) AddWatchpoint(address uint32, watchType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil {
		return fmt.Errorf("no program loaded")
	}

	var wpType debugger.WatchType
	switch watchType {
	case "read":
		wpType = debugger.WatchRead
	case "write":
		wpType = debugger.WatchWrite
	case "readwrite":
		wpType = debugger.WatchReadWrite
	default:
		return fmt.Errorf("invalid watchpoint type: %s", watchType)
	}

	expression := fmt.Sprintf("[0x%08X]", address)
	s.debugger.Watchpoints.AddWatchpoint(wpType, expression, address, false, 0)

	return nil
}

// RemoveWatchpoint removes a watchpoint by ID
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil {
		return fmt.Errorf("no program loaded")
	}

	return s.debugger.Watchpoints.DeleteWatchpoint(id)
}

// GetWatchpoints returns all watchpoints
func (s *DebuggerService) GetWatchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.debugger == nil {
		return []WatchpointInfo{}
	}

	wps := s.debugger.Watchpoints.GetAllWatchpoints()
	result := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		var wpType string
		switch wp.Type {
		case debugger.WatchRead:
			wpType = "read"
		case debugger.WatchWrite:
			wpType = "write"
		case debugger.WatchReadWrite:
			wpType = "readwrite"
		}

		result[i] = WatchpointInfo{
			ID:      wp.ID,
			Address: wp.Address,
			Type:    wpType,
			Enabled: wp.Enabled,
		}
	}
	return result
}

// ExecuteCommand executes a debugger command and returns output
func (s *DebuggerService) ExecuteCommand(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil {
		return "", fmt.Errorf("no program loaded")
	}

	err := s.debugger.ExecuteCommand(command)
	output := s.debugger.GetOutput()

	return output, err
}

// EvaluateExpression evaluates an expression and returns the result
func (s *DebuggerService) EvaluateExpression(expr string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debugger == nil || s.debugger.Evaluator == nil {
		return 0, fmt.Errorf("no program loaded")
	}

	return s.debugger.Evaluator.EvaluateExpression(expr, s.vm, s.symbols)
}

// EnableFlagTrace enables SR flag-change tracing, writing entries in memory
// (no file) for API/TUI retrieval via GetFlagTraceData.
func (s *DebuggerService) EnableFlagTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm.FlagTrace == nil {
		s.vm.FlagTrace = vm.NewFlagTrace(io.Discard)
		if len(s.symbols) > 0 {
			s.vm.FlagTrace.LoadSymbols(s.symbols)
		}
	}

	s.vm.FlagTrace.Enabled = true
	s.vm.FlagTrace.Start(s.vm.CPU.SR)
}

// DisableFlagTrace disables SR flag-change tracing
func (s *DebuggerService) DisableFlagTrace() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm.FlagTrace != nil {
		s.vm.FlagTrace.Enabled = false
	}
}

// GetFlagTraceData returns recorded flag-change entries
func (s *DebuggerService) GetFlagTraceData() []vm.FlagChangeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vm.FlagTrace == nil {
		return []vm.FlagChangeEntry{}
	}

	return s.vm.FlagTrace.GetEntries()
}
