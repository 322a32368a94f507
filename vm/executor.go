package vm

import "fmt"

// VM ties a CPU to a Memory and drives the fetch-decode-execute loop, plus
// the associated delayed-branch bookkeeping. It is the interpreter API:
// Step/RunUntil and the register/FPU accessors a debugger or test harness
// drives the CORE through.
type VM struct {
	CPU *CPU
	Mem *Memory

	// UserMode governs the privilege checks DecodeAddress applies; false
	// (privileged) matches the architectural reset state.
	UserMode bool

	// StepCount counts completed Step calls, used by RunUntil's runaway
	// guard and exposed for tests/debuggers that want an instruction
	// counter without installing their own.
	StepCount uint64

	// EntryPoint records where the currently loaded program starts, so a
	// debugger can restart it (ResetToEntryPoint) without reloading.
	EntryPoint uint32

	// FlagTrace, when non-nil, records every change to SR's T/S/Q/M bits.
	// Left nil (the zero value) costs Step nothing beyond the nil check.
	FlagTrace *FlagTrace

	// State mirrors cpu.Halted plus breakpoint/error conditions the step
	// loop itself has no notion of; a debugger or API driver updates this
	// as it calls Step in a loop. The CORE's own Step/RunUntil never read
	// or write it.
	State ExecutionState
}

// NewVM builds a VM with size bytes of external RAM and puts the CPU
// through a hard reset.
func NewVM(size uint32) *VM {
	mem := NewMemory(size)
	cpu := NewCPU()
	cpu.OnHardReset(mem)
	return &VM{CPU: cpu, Mem: mem}
}

// isBranchOp reports whether op transfers control, used to flag the
// branch-in-delay-slot corner case: real hardware's behavior here is
// undefined, so the CORE surfaces it as a diagnostic rather than either
// silently executing it or refusing to.
func isBranchOp(op Op) bool {
	switch op {
	case OpBT, OpBF, OpBTS, OpBFS, OpBRA, OpBSR, OpBRAF, OpBSRF, OpJMP, OpJSR, OpRTS, OpRTE:
		return true
	default:
		return false
	}
}

// exceptionFor maps a CoreError's Kind to the EXPEVT code Step raises when
// an exec function's memory access fails mid-instruction. The mapping is a
// deliberate simplification: TRAPA and the cache paths are exercised
// directly rather than exact EXPEVT values for generic load/store faults,
// so ErrAddress collapses to the write-error code and everything else to
// the general I/O code.
func exceptionFor(ce *CoreError) ExceptionCode {
	switch ce.Kind {
	case ErrAddress:
		return ExceptionAddressErrorWrite
	default:
		return ExceptionGeneralIO
	}
}

// Step fetches, decodes, and executes exactly one instruction. Delayed
// branches never move PC directly: ScheduleDelayedBranch records the
// target, and Step applies it only once the delay-slot instruction (the
// one at PC+2) has itself completed — matching real hardware's rule that
// the target is not in effect during the delay slot.
func (vm *VM) Step() error {
	cpu, mem := vm.CPU, vm.Mem
	if cpu.Halted {
		return nil
	}

	opcode, err := mem.ReadInst(cpu.PC, vm.UserMode)
	if err != nil {
		return cpu.Raise(ExceptionAddressErrorRead, 0)
	}

	inst, err := Decode(opcode)
	if err != nil {
		return cpu.Raise(ExceptionIllegalInstruction, 0)
	}

	wasDelaySlot := cpu.DelayedPending
	if wasDelaySlot {
		cpu.DelayedPending = false
		if isBranchOp(inst.Op) {
			cpu.note("branch opcode 0x%04X decoded in a delay slot at PC=0x%08X; architectural behavior is undefined here", opcode, cpu.PC)
		}
	}

	pcAtFetch := cpu.PC
	execErr := vm.dispatch(inst)

	if vm.FlagTrace != nil {
		vm.FlagTrace.RecordFlags(vm.StepCount, pcAtFetch, fmt.Sprintf("op#%d (0x%04X)", inst.Op, inst.Raw), cpu.SR)
	}

	switch {
	case execErr == errBranchTaken:
		vm.StepCount++
		return nil // PC already set by execBT/execBF
	case execErr != nil:
		if ce, ok := execErr.(*CoreError); ok {
			return cpu.Raise(exceptionFor(ce), 0)
		}
		return execErr
	case wasDelaySlot:
		cpu.PC = cpu.DelayedTarget
	default:
		cpu.IncrementPC()
	}
	vm.StepCount++
	return nil
}

// RunUntil steps the CPU until PC equals target, the CPU halts (SLEEP), or
// maxSteps instructions have executed — the last of which exists purely as
// a runaway guard for callers (tests, a debugger's "run" command) that
// don't want a wayward program to spin forever.
func (vm *VM) RunUntil(target uint32, maxSteps uint64) error {
	for i := uint64(0); i < maxSteps; i++ {
		if vm.CPU.Halted || vm.CPU.PC == target {
			return nil
		}
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return NewError(ErrOverflow, "RunUntil exceeded %d steps without reaching 0x%08X", maxSteps, target)
}

// dispatch executes inst against cpu/mem, returning whatever the
// instruction's exec function returns (nil, errBranchTaken, or a
// *CoreError from a failed memory access).
func (vm *VM) dispatch(inst Instruction) error {
	cpu, mem := vm.CPU, vm.Mem
	switch inst.Op {
	// Moves
	case OpMOV:
		return execMOV(cpu, inst)
	case OpMOVImm:
		return execMOVImm(cpu, inst)
	case OpMOVWPC:
		return execMOVWPC(cpu, mem, inst)
	case OpMOVLPC:
		return execMOVLPC(cpu, mem, inst)
	case OpMOVBStoreInd:
		return execMOVBStoreInd(cpu, mem, inst)
	case OpMOVWStoreInd:
		return execMOVWStoreInd(cpu, mem, inst)
	case OpMOVLStoreInd:
		return execMOVLStoreInd(cpu, mem, inst)
	case OpMOVBLoadInd:
		return execMOVBLoadInd(cpu, mem, inst)
	case OpMOVWLoadInd:
		return execMOVWLoadInd(cpu, mem, inst)
	case OpMOVLLoadInd:
		return execMOVLLoadInd(cpu, mem, inst)
	case OpMOVBStorePreDec:
		return execMOVBStorePreDec(cpu, mem, inst)
	case OpMOVWStorePreDec:
		return execMOVWStorePreDec(cpu, mem, inst)
	case OpMOVLStorePreDec:
		return execMOVLStorePreDec(cpu, mem, inst)
	case OpMOVBLoadPostInc:
		return execMOVBLoadPostInc(cpu, mem, inst)
	case OpMOVWLoadPostInc:
		return execMOVWLoadPostInc(cpu, mem, inst)
	case OpMOVLLoadPostInc:
		return execMOVLLoadPostInc(cpu, mem, inst)
	case OpMOVBStoreR0Idx:
		return execMOVBStoreR0Idx(cpu, mem, inst)
	case OpMOVWStoreR0Idx:
		return execMOVWStoreR0Idx(cpu, mem, inst)
	case OpMOVLStoreR0Idx:
		return execMOVLStoreR0Idx(cpu, mem, inst)
	case OpMOVBLoadR0Idx:
		return execMOVBLoadR0Idx(cpu, mem, inst)
	case OpMOVWLoadR0Idx:
		return execMOVWLoadR0Idx(cpu, mem, inst)
	case OpMOVLLoadR0Idx:
		return execMOVLLoadR0Idx(cpu, mem, inst)
	case OpMOVBStoreDisp:
		return execMOVBStoreDisp(cpu, mem, inst)
	case OpMOVWStoreDisp:
		return execMOVWStoreDisp(cpu, mem, inst)
	case OpMOVLStoreDisp:
		return execMOVLStoreDisp(cpu, mem, inst)
	case OpMOVBLoadDisp:
		return execMOVBLoadDisp(cpu, mem, inst)
	case OpMOVWLoadDisp:
		return execMOVWLoadDisp(cpu, mem, inst)
	case OpMOVLLoadDisp:
		return execMOVLLoadDisp(cpu, mem, inst)
	case OpMOVBStoreGBR:
		return execMOVBStoreGBR(cpu, mem, inst)
	case OpMOVWStoreGBR:
		return execMOVWStoreGBR(cpu, mem, inst)
	case OpMOVLStoreGBR:
		return execMOVLStoreGBR(cpu, mem, inst)
	case OpMOVBLoadGBR:
		return execMOVBLoadGBR(cpu, mem, inst)
	case OpMOVWLoadGBR:
		return execMOVWLoadGBR(cpu, mem, inst)
	case OpMOVLLoadGBR:
		return execMOVLLoadGBR(cpu, mem, inst)
	case OpMOVA:
		return execMOVA(cpu, inst)
	case OpMOVT:
		return execMOVT(cpu, inst)
	case OpSWAPB:
		return execSWAPB(cpu, inst)
	case OpSWAPW:
		return execSWAPW(cpu, inst)
	case OpXTRCT:
		return execXTRCT(cpu, inst)

	// Arithmetic
	case OpADD:
		return execADD(cpu, inst)
	case OpADDImm:
		return execADDImm(cpu, inst)
	case OpADDC:
		return execADDC(cpu, inst)
	case OpADDV:
		return execADDV(cpu, inst)
	case OpCMPEQ:
		return execCMPEQ(cpu, inst)
	case OpCMPEQImm:
		return execCMPEQImm(cpu, inst)
	case OpCMPHS:
		return execCMPHS(cpu, inst)
	case OpCMPGE:
		return execCMPGE(cpu, inst)
	case OpCMPHI:
		return execCMPHI(cpu, inst)
	case OpCMPGT:
		return execCMPGT(cpu, inst)
	case OpCMPPL:
		return execCMPPL(cpu, inst)
	case OpCMPPZ:
		return execCMPPZ(cpu, inst)
	case OpCMPSTR:
		return execCMPSTR(cpu, inst)
	case OpDIV0S:
		return execDIV0S(cpu, inst)
	case OpDIV0U:
		return execDIV0U(cpu)
	case OpDIV1:
		return execDIV1(cpu, inst)
	case OpDMULS:
		return execDMULS(cpu, inst)
	case OpDMULU:
		return execDMULU(cpu, inst)
	case OpDT:
		return execDT(cpu, inst)
	case OpEXTSB:
		return execEXTSB(cpu, inst)
	case OpEXTSW:
		return execEXTSW(cpu, inst)
	case OpEXTUB:
		return execEXTUB(cpu, inst)
	case OpEXTUW:
		return execEXTUW(cpu, inst)
	case OpMACL:
		return execMACL(cpu, mem, inst)
	case OpMACW:
		return execMACW(cpu, mem, inst)
	case OpMULL:
		return execMULL(cpu, inst)
	case OpMULSW:
		return execMULSW(cpu, inst)
	case OpMULUW:
		return execMULUW(cpu, inst)
	case OpNEG:
		return execNEG(cpu, inst)
	case OpNEGC:
		return execNEGC(cpu, inst)
	case OpSUB:
		return execSUB(cpu, inst)
	case OpSUBC:
		return execSUBC(cpu, inst)
	case OpSUBV:
		return execSUBV(cpu, inst)

	// Logical / shifts
	case OpAND:
		return execAND(cpu, inst)
	case OpANDImm:
		return execANDImm(cpu, inst)
	case OpANDB:
		return execANDB(cpu, mem, inst)
	case OpOR:
		return execOR(cpu, inst)
	case OpORImm:
		return execORImm(cpu, inst)
	case OpORB:
		return execORB(cpu, mem, inst)
	case OpXOR:
		return execXOR(cpu, inst)
	case OpXORImm:
		return execXORImm(cpu, inst)
	case OpXORB:
		return execXORB(cpu, mem, inst)
	case OpNOT:
		return execNOT(cpu, inst)
	case OpTST:
		return execTST(cpu, inst)
	case OpTSTImm:
		return execTSTImm(cpu, inst)
	case OpTSTB:
		return execTSTB(cpu, mem, inst)
	case OpTASB:
		return execTASB(cpu, mem, inst)
	case OpROTL:
		return execROTL(cpu, inst)
	case OpROTR:
		return execROTR(cpu, inst)
	case OpROTCL:
		return execROTCL(cpu, inst)
	case OpROTCR:
		return execROTCR(cpu, inst)
	case OpSHAD:
		return execSHAD(cpu, inst)
	case OpSHLD:
		return execSHLD(cpu, inst)
	case OpSHAL:
		return execSHAL(cpu, inst)
	case OpSHAR:
		return execSHAR(cpu, inst)
	case OpSHLL:
		return execSHLL(cpu, inst)
	case OpSHLR:
		return execSHLR(cpu, inst)
	case OpSHLL2:
		return execSHLL2(cpu, inst)
	case OpSHLR2:
		return execSHLR2(cpu, inst)
	case OpSHLL8:
		return execSHLL8(cpu, inst)
	case OpSHLR8:
		return execSHLR8(cpu, inst)
	case OpSHLL16:
		return execSHLL16(cpu, inst)
	case OpSHLR16:
		return execSHLR16(cpu, inst)

	// Branches
	case OpBT:
		return execBT(cpu, inst)
	case OpBF:
		return execBF(cpu, inst)
	case OpBTS:
		return execBTS(cpu, inst)
	case OpBFS:
		return execBFS(cpu, inst)
	case OpBRA:
		return execBRA(cpu, inst)
	case OpBSR:
		return execBSR(cpu, inst)
	case OpBRAF:
		return execBRAF(cpu, inst)
	case OpBSRF:
		return execBSRF(cpu, inst)
	case OpJMP:
		return execJMP(cpu, inst)
	case OpJSR:
		return execJSR(cpu, inst)
	case OpRTS:
		return execRTS(cpu)
	case OpRTE:
		return execRTE(cpu)

	// System / control
	case OpLDC:
		return execLDC(cpu, inst)
	case OpLDCBank:
		return execLDCBank(cpu, inst)
	case OpLDCL:
		return execLDCL(cpu, mem, inst)
	case OpLDCLBank:
		return execLDCLBank(cpu, mem, inst)
	case OpSTC:
		return execSTC(cpu, inst)
	case OpSTCBank:
		return execSTCBank(cpu, inst)
	case OpSTCL:
		return execSTCL(cpu, mem, inst)
	case OpSTCLBank:
		return execSTCLBank(cpu, mem, inst)
	case OpLDS:
		return execLDS(cpu, inst)
	case OpLDSL:
		return execLDSL(cpu, mem, inst)
	case OpSTS:
		return execSTS(cpu, inst)
	case OpSTSL:
		return execSTSL(cpu, mem, inst)
	case OpCLRMAC:
		return execCLRMAC(cpu)
	case OpCLRS:
		return execCLRS(cpu)
	case OpCLRT:
		return execCLRT(cpu)
	case OpSETS:
		return execSETS(cpu)
	case OpSETT:
		return execSETT(cpu)
	case OpFRCHG:
		return execFRCHG(cpu)
	case OpFSCHG:
		return execFSCHG(cpu)

	// FPU
	case OpFMOV:
		return execFMOV(cpu, inst)
	case OpFMOVSLoadIdx:
		return execFMOVSLoadIdx(cpu, mem, inst)
	case OpFMOVSStoreIdx:
		return execFMOVSStoreIdx(cpu, mem, inst)
	case OpFMOVSLoad:
		return execFMOVSLoad(cpu, mem, inst)
	case OpFMOVSLoadInc:
		return execFMOVSLoadInc(cpu, mem, inst)
	case OpFMOVSStore:
		return execFMOVSStore(cpu, mem, inst)
	case OpFMOVSStoreDec:
		return execFMOVSStoreDec(cpu, mem, inst)
	case OpFADD:
		return execFADD(cpu, inst)
	case OpFSUB:
		return execFSUB(cpu, inst)
	case OpFMUL:
		return execFMUL(cpu, inst)
	case OpFDIV:
		return execFDIV(cpu, inst)
	case OpFCMPEQ:
		return execFCMPEQ(cpu, inst)
	case OpFCMPGT:
		return execFCMPGT(cpu, inst)
	case OpFMAC:
		return execFMAC(cpu, inst)
	case OpFABS:
		return execFABS(cpu, inst)
	case OpFNEG:
		return execFNEG(cpu, inst)
	case OpFSQRT:
		return execFSQRT(cpu, inst)
	case OpFSRRA:
		return execFSRRA(cpu, inst)
	case OpFLDI0:
		return execFLDI0(cpu, inst)
	case OpFLDI1:
		return execFLDI1(cpu, inst)
	case OpFLDS:
		return execFLDS(cpu, inst)
	case OpFSTS:
		return execFSTS(cpu, inst)
	case OpFLOAT:
		return execFLOAT(cpu, inst)
	case OpFTRC:
		return execFTRC(cpu, inst)
	case OpFCNVDS:
		return execFCNVDS(cpu, inst)
	case OpFCNVSD:
		return execFCNVSD(cpu, inst)
	case OpFIPR:
		return execFIPR(cpu, inst)
	case OpFTRV:
		return execFTRV(cpu, inst)

	// Caches
	case OpMOVCAL:
		return execMOVCAL(cpu, mem, inst)
	case OpOCBI:
		return execOCBI(cpu, mem, inst)
	case OpOCBP:
		return execOCBP(cpu, mem, inst)
	case OpOCBWB:
		return execOCBWB(cpu, mem, inst)
	case OpPREF:
		return execPREF(cpu, mem, inst)

	// Misc
	case OpNOP:
		return execNOP(cpu)
	case OpSLEEP:
		return execSLEEP(cpu)
	case OpLDTLB:
		return execLDTLB(cpu)
	case OpTRAPA:
		return execTRAPA(cpu, inst)

	default:
		return NewError(ErrUnrecognizedPattern, "no dispatch entry for decoded op %d (raw 0x%04X)", inst.Op, inst.Raw)
	}
}
