package vm

// Cache implements the explicit cache-maintenance instructions:
// the operand-cache block ops (OCBI/OCBP/OCBWB), PREF, and MOVCA.L. Each
// resolves Rn to a physical address through the same DecodeAddress path
// ReadData/WriteData use, then calls straight into Memory.OC.

func ocacheAddr(mem *Memory, cpu *CPU, n int) (uint32, error) {
	route, err := mem.route(cpu.GenReg(n), AccessRead, false)
	if err != nil {
		return 0, err
	}
	return route.Phys, nil
}

func execOCBI(cpu *CPU, mem *Memory, inst Instruction) error {
	phys, err := ocacheAddr(mem, cpu, inst.N)
	if err != nil {
		return err
	}
	mem.OC.Invalidate(phys, mem.CCR.OIX(), mem.CCR.ORA())
	return nil
}

func execOCBP(cpu *CPU, mem *Memory, inst Instruction) error {
	phys, err := ocacheAddr(mem, cpu, inst.N)
	if err != nil {
		return err
	}
	return mem.OC.Purge(mem.External, phys, mem.CCR.OIX(), mem.CCR.ORA())
}

func execOCBWB(cpu *CPU, mem *Memory, inst Instruction) error {
	phys, err := ocacheAddr(mem, cpu, inst.N)
	if err != nil {
		return err
	}
	return mem.OC.WriteBack(mem.External, phys, mem.CCR.OIX(), mem.CCR.ORA())
}

// execPREF loads the line containing Rn into the operand cache without
// returning any data to the register file.
func execPREF(cpu *CPU, mem *Memory, inst Instruction) error {
	phys, err := ocacheAddr(mem, cpu, inst.N)
	if err != nil {
		return err
	}
	return mem.OC.Prefetch(mem.External, phys, mem.CCR.OIX(), mem.CCR.ORA())
}

// execMOVCAL stores R0 to the address in Rn, allocating the destination
// line in the operand cache without first reading its old contents —
// the cache-as-RAM fast path.
func execMOVCAL(cpu *CPU, mem *Memory, inst Instruction) error {
	phys, err := ocacheAddr(mem, cpu, inst.N)
	if err != nil {
		return err
	}
	if err := mem.OC.Alloc(mem.External, phys, mem.CCR.OIX(), mem.CCR.ORA()); err != nil {
		return err
	}
	return mem.WriteData(cpu.GenReg(inst.N), 4, uint64(cpu.GenReg(0)), false)
}
