package vm

// Misc implements the handful of ops that don't fit any other category:
// NOP and SLEEP. LDTLB and TRAPA live in system.go alongside the rest of
// the control-register/exception machinery they share code with.

func execNOP(cpu *CPU) error {
	return nil
}

// execSLEEP halts the CPU until an external event clears Halted; the step
// loop (executor.go) checks Halted before fetching the next instruction.
func execSLEEP(cpu *CPU) error {
	cpu.Halted = true
	return nil
}
