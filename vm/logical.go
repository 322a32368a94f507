package vm

// Logical implements the Logical and Bit-test instruction categories:
// AND/OR/XOR/NOT/TST in register, R0-immediate, and GBR-indexed-byte
// forms, plus the atomic TAS.B.

func execAND(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)&cpu.GenReg(inst.M))
	return nil
}

func execANDImm(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(0, cpu.GenReg(0)&uint32(inst.Imm))
	return nil
}

func execANDB(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GBR + cpu.GenReg(0)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	return mem.WriteData(addr, 1, v&uint64(inst.Imm), false)
}

func execOR(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)|cpu.GenReg(inst.M))
	return nil
}

func execORImm(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(0, cpu.GenReg(0)|uint32(inst.Imm))
	return nil
}

func execORB(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GBR + cpu.GenReg(0)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	return mem.WriteData(addr, 1, v|uint64(inst.Imm), false)
}

func execXOR(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)^cpu.GenReg(inst.M))
	return nil
}

func execXORImm(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(0, cpu.GenReg(0)^uint32(inst.Imm))
	return nil
}

func execXORB(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GBR + cpu.GenReg(0)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	return mem.WriteData(addr, 1, v^uint64(inst.Imm), false)
}

func execNOT(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, ^cpu.GenReg(inst.M))
	return nil
}

func execTST(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(cpu.GenReg(inst.N)&cpu.GenReg(inst.M) == 0)
	return nil
}

func execTSTImm(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(cpu.GenReg(0)&uint32(inst.Imm) == 0)
	return nil
}

func execTSTB(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GBR + cpu.GenReg(0)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	cpu.SR.SetT(uint32(v)&uint32(inst.Imm) == 0)
	return nil
}

// execTASB implements TAS.B @Rn: an atomic (from the program's point of
// view) read-test-set — read the byte, T = (byte == 0), then write the
// byte back with its top bit forced to 1.
func execTASB(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	cpu.SR.SetT(v == 0)
	return mem.WriteData(addr, 1, v|0x80, false)
}
