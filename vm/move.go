package vm

// Move implements the Moves instruction category: register-to-register,
// immediate, PC-relative loads, the post-increment/pre-decrement and
// indexed/displacement addressing forms, and their GBR-relative siblings.
// Byte and word loads sign-extend to 32 bits; width-suffixed stores
// truncate.

func execMOV(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.M))
	return nil
}

func execMOVImm(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, uint32(inst.Imm))
	return nil
}

// execMOVWPC loads a sign-extended word from PC (masked to 4-byte
// alignment) plus a scaled displacement.
func execMOVWPC(cpu *CPU, mem *Memory, inst Instruction) error {
	base := (cpu.PC + 4) &^ 3
	v, err := mem.ReadData(base+uint32(inst.Imm), 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int16(uint16(v)))))
	return nil
}

func execMOVLPC(cpu *CPU, mem *Memory, inst Instruction) error {
	base := (cpu.PC + 4) &^ 3
	v, err := mem.ReadData(base+uint32(inst.Imm), 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(v))
	return nil
}

func execMOVA(cpu *CPU, inst Instruction) error {
	base := (cpu.PC + 4) &^ 3
	cpu.SetGenReg(0, base+uint32(inst.Imm))
	return nil
}

func execMOVT(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, boolToUint32(cpu.SR.T()))
	return nil
}

func execSWAPB(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.M)
	cpu.SetGenReg(inst.N, (v&0xFFFF0000)|(v&0xFF)<<8|(v>>8)&0xFF)
	return nil
}

func execSWAPW(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.M)
	cpu.SetGenReg(inst.N, v<<16|v>>16)
	return nil
}

func execXTRCT(cpu *CPU, inst Instruction) error {
	rn, rm := cpu.GenReg(inst.N), cpu.GenReg(inst.M)
	cpu.SetGenReg(inst.N, (rn>>16)|(rm<<16))
	return nil
}

// --- @Rn indirect store/load ---

func execMOVBStoreInd(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N), 1, uint64(cpu.GenReg(inst.M)&0xFF), false)
}

func execMOVWStoreInd(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N), 2, uint64(cpu.GenReg(inst.M)&0xFFFF), false)
}

func execMOVLStoreInd(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N), 4, uint64(cpu.GenReg(inst.M)), false)
}

func execMOVBLoadInd(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M), 1, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int8(uint8(v)))))
	return nil
}

func execMOVWLoadInd(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M), 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int16(uint16(v)))))
	return nil
}

func execMOVLLoadInd(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M), 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(v))
	return nil
}

// --- @-Rn pre-decrement store ---

func execMOVBStorePreDec(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 1
	if err := mem.WriteData(addr, 1, uint64(cpu.GenReg(inst.M)&0xFF), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execMOVWStorePreDec(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 2
	if err := mem.WriteData(addr, 2, uint64(cpu.GenReg(inst.M)&0xFFFF), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execMOVLStorePreDec(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.N) - 4
	if err := mem.WriteData(addr, 4, uint64(cpu.GenReg(inst.M)), false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

// --- @Rm+ post-increment load ---

func execMOVBLoadPostInc(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.M)
	v, err := mem.ReadData(addr, 1, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int8(uint8(v)))))
	if inst.N != inst.M {
		cpu.SetGenReg(inst.M, addr+1)
	}
	return nil
}

func execMOVWLoadPostInc(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.M)
	v, err := mem.ReadData(addr, 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int16(uint16(v)))))
	if inst.N != inst.M {
		cpu.SetGenReg(inst.M, addr+2)
	}
	return nil
}

func execMOVLLoadPostInc(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.M)
	v, err := mem.ReadData(addr, 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(v))
	if inst.N != inst.M {
		cpu.SetGenReg(inst.M, addr+4)
	}
	return nil
}

// --- @(R0,Rm) indexed ---

func execMOVBStoreR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+cpu.GenReg(0), 1, uint64(cpu.GenReg(inst.M)&0xFF), false)
}

func execMOVWStoreR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+cpu.GenReg(0), 2, uint64(cpu.GenReg(inst.M)&0xFFFF), false)
}

func execMOVLStoreR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+cpu.GenReg(0), 4, uint64(cpu.GenReg(inst.M)), false)
}

func execMOVBLoadR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+cpu.GenReg(0), 1, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int8(uint8(v)))))
	return nil
}

func execMOVWLoadR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+cpu.GenReg(0), 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(int32(int16(uint16(v)))))
	return nil
}

func execMOVLLoadR0Idx(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+cpu.GenReg(0), 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(v))
	return nil
}

// --- @(disp,Rn) displacement, scaled by width, unsigned ---

// execMOVBStoreDisp: MOV.B R0,@(disp,Rn) — inst.N carries the base
// register (decode.go places the "m" field of the hardware encoding there
// for this byte/word form since only R0 is ever the source).
func execMOVBStoreDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+uint32(inst.Imm), 1, uint64(cpu.GenReg(0)&0xFF), false)
}

func execMOVWStoreDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+uint32(inst.Imm), 2, uint64(cpu.GenReg(0)&0xFFFF), false)
}

func execMOVLStoreDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GenReg(inst.N)+uint32(inst.Imm), 4, uint64(cpu.GenReg(inst.M)), false)
}

func execMOVBLoadDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+uint32(inst.Imm), 1, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(0, uint32(int32(int8(uint8(v)))))
	return nil
}

func execMOVWLoadDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+uint32(inst.Imm), 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(0, uint32(int32(int16(uint16(v)))))
	return nil
}

func execMOVLLoadDisp(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GenReg(inst.M)+uint32(inst.Imm), 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, uint32(v))
	return nil
}

// --- @(disp,GBR) ---

func execMOVBStoreGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GBR+uint32(inst.Imm), 1, uint64(cpu.GenReg(0)&0xFF), false)
}

func execMOVWStoreGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GBR+uint32(inst.Imm), 2, uint64(cpu.GenReg(0)&0xFFFF), false)
}

func execMOVLStoreGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	return mem.WriteData(cpu.GBR+uint32(inst.Imm), 4, uint64(cpu.GenReg(0)), false)
}

func execMOVBLoadGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GBR+uint32(inst.Imm), 1, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(0, uint32(int32(int8(uint8(v)))))
	return nil
}

func execMOVWLoadGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GBR+uint32(inst.Imm), 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(0, uint32(int32(int16(uint16(v)))))
	return nil
}

func execMOVLLoadGBR(cpu *CPU, mem *Memory, inst Instruction) error {
	v, err := mem.ReadData(cpu.GBR+uint32(inst.Imm), 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(0, uint32(v))
	return nil
}
