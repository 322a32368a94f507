package vm

// System implements the System/FPU-control instruction category and TRAPA path:
// LDC/STC and LDS/STS (register, memory post-increment, and memory
// pre-decrement forms), the single-bit flag instructions, FRCHG/FSCHG,
// and TRAPA.

// ctrlReg returns the control/system register named by a STC/LDC M index
// (SR=0,GBR=1,VBR=2,SSR=3,SPC=4,SGR=5,DBR=6).
func ctrlReg(cpu *CPU, idx int) uint32 {
	switch idx {
	case 0:
		return cpu.SR.Uint32()
	case 1:
		return cpu.GBR
	case 2:
		return cpu.VBR
	case 3:
		return cpu.SSR
	case 4:
		return cpu.SPC
	case 5:
		return cpu.SGR
	default:
		return cpu.DBR
	}
}

func setCtrlReg(cpu *CPU, idx int, v uint32) {
	switch idx {
	case 0:
		cpu.SR.SetUint32(v)
	case 1:
		cpu.GBR = v
	case 2:
		cpu.VBR = v
	case 3:
		cpu.SSR = v
	case 4:
		cpu.SPC = v
	case 5:
		cpu.SGR = v
	default:
		cpu.DBR = v
	}
}

// sysReg returns the register named by a STS/LDS M index (MACH=0,MACL=1,
// PR=2,FPUL=3,FPSCR=4).
func sysReg(cpu *CPU, idx int) uint32 {
	switch idx {
	case 0:
		return cpu.MACH
	case 1:
		return cpu.MACL
	case 2:
		return cpu.PR
	case 3:
		return cpu.FPU.FPUL
	default:
		return cpu.FPU.FPSCR
	}
}

func setSysReg(cpu *CPU, idx int, v uint32) {
	switch idx {
	case 0:
		cpu.MACH = v
	case 1:
		cpu.MACL = v
	case 2:
		cpu.PR = v
	case 3:
		cpu.FPU.FPUL = v
	default:
		cpu.FPU.FPSCR = v
	}
}

func execSTC(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, ctrlReg(cpu, inst.M))
	return nil
}

func execSTCBank(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.BankReg(inst.M))
	return nil
}

func execLDC(cpu *CPU, inst Instruction) error {
	setCtrlReg(cpu, inst.M, cpu.GenReg(inst.N))
	return nil
}

func execLDCBank(cpu *CPU, inst Instruction) error {
	cpu.SetBankReg(inst.M, cpu.GenReg(inst.N))
	return nil
}

func execSTCL(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 4
	if err := mem.WriteData(addr, 4, uint64(ctrlReg(cpu, inst.M)), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execSTCLBank(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 4
	if err := mem.WriteData(addr, 4, uint64(cpu.BankReg(inst.M)), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execLDCL(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N)
	v, err := mem.ReadData(addr, 4, false)
	if err != nil {
		return err
	}
	setCtrlReg(cpu, inst.M, uint32(v))
	cpu.SetGenReg(inst.N, addr+4)
	return nil
}

func execLDCLBank(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N)
	v, err := mem.ReadData(addr, 4, false)
	if err != nil {
		return err
	}
	cpu.SetBankReg(inst.M, uint32(v))
	cpu.SetGenReg(inst.N, addr+4)
	return nil
}

func execSTS(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, sysReg(cpu, inst.M))
	return nil
}

func execLDS(cpu *CPU, inst Instruction) error {
	setSysReg(cpu, inst.M, cpu.GenReg(inst.N))
	return nil
}

func execSTSL(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 4
	if err := mem.WriteData(addr, 4, uint64(sysReg(cpu, inst.M)), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execLDSL(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N)
	v, err := mem.ReadData(addr, 4, false)
	if err != nil {
		return err
	}
	setSysReg(cpu, inst.M, uint32(v))
	cpu.SetGenReg(inst.N, addr+4)
	return nil
}

func execCLRMAC(cpu *CPU) error {
	cpu.MACH, cpu.MACL = 0, 0
	return nil
}

func execCLRS(cpu *CPU) error {
	cpu.SR.SetSBit(false)
	return nil
}

func execCLRT(cpu *CPU) error {
	cpu.SR.SetT(false)
	return nil
}

func execSETS(cpu *CPU) error {
	cpu.SR.SetSBit(true)
	return nil
}

func execSETT(cpu *CPU) error {
	cpu.SR.SetT(true)
	return nil
}

func execFRCHG(cpu *CPU) error {
	cpu.FPU.ToggleBank()
	return nil
}

func execFSCHG(cpu *CPU) error {
	cpu.FPU.ToggleTransferSize()
	return nil
}

// execTRAPA raises a software exception: it behaves like any other
// architectural exception (exception.go's Raise), with EXPEVT's TRAPA code
// and TRA holding imm*4.
func execTRAPA(cpu *CPU, inst Instruction) error {
	return cpu.Raise(ExceptionTRAPA, uint32(inst.Imm)*4)
}

// execLDTLB loads a UTLB entry from PTEH/PTEL. The CORE's MMU subset
// does not materialize a TLB, so this is a no-op recorded as a diagnostic
// rather than silently dropped.
func execLDTLB(cpu *CPU) error {
	cpu.note("LDTLB executed; no UTLB is modeled in this CORE")
	return nil
}
