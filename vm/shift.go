package vm

// Shift implements the shift/rotate instruction family: the fixed SHLL/SHLR
// (and their 2/8/16 siblings), the arithmetic/logical variable-count
// SHAD/SHLD, SHAL/SHAR, and the four rotate forms.

func execROTL(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	t := v>>31 != 0
	cpu.SetGenReg(inst.N, v<<1|boolToUint32(t))
	cpu.SR.SetT(t)
	return nil
}

func execROTR(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	t := v&1 != 0
	cpu.SetGenReg(inst.N, v>>1|(boolToUint32(t)<<31))
	cpu.SR.SetT(t)
	return nil
}

func execROTCL(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	newT := v>>31 != 0
	cpu.SetGenReg(inst.N, v<<1|boolToUint32(cpu.SR.T()))
	cpu.SR.SetT(newT)
	return nil
}

func execROTCR(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	newT := v&1 != 0
	cpu.SetGenReg(inst.N, v>>1|(boolToUint32(cpu.SR.T())<<31))
	cpu.SR.SetT(newT)
	return nil
}

func execSHAL(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	cpu.SR.SetT(v>>31 != 0)
	cpu.SetGenReg(inst.N, v<<1)
	return nil
}

func execSHAR(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	cpu.SR.SetT(v&1 != 0)
	cpu.SetGenReg(inst.N, uint32(int32(v)>>1))
	return nil
}

func execSHLL(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	cpu.SR.SetT(v>>31 != 0)
	cpu.SetGenReg(inst.N, v<<1)
	return nil
}

func execSHLR(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N)
	cpu.SR.SetT(v&1 != 0)
	cpu.SetGenReg(inst.N, v>>1)
	return nil
}

func execSHLL2(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)<<2)
	return nil
}

func execSHLR2(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)>>2)
	return nil
}

func execSHLL8(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)<<8)
	return nil
}

func execSHLR8(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)>>8)
	return nil
}

func execSHLL16(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)<<16)
	return nil
}

func execSHLR16(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)>>16)
	return nil
}

// signExtend5 sign-extends the low 5 bits of v as SHAD/SHLD's shift count.
func signExtend5(v uint32) int32 {
	b := uint8(v&0x1F) << 3
	return int32(int8(b) >> 3)
}

// execSHAD shifts Rn by the signed 5-bit count in Rm: positive shifts
// left, negative shifts right (arithmetic, sign-extending); a count whose
// magnitude is >=32 saturates to all-0 or all-sign-bit.
func execSHAD(cpu *CPU, inst Instruction) error {
	rn := int32(cpu.GenReg(inst.N))
	count := signExtend5(cpu.GenReg(inst.M))
	switch {
	case count >= 0:
		if count >= 32 {
			cpu.SetGenReg(inst.N, 0)
		} else {
			cpu.SetGenReg(inst.N, uint32(rn<<uint(count)))
		}
	default:
		n := -count
		if n >= 32 {
			if rn < 0 {
				cpu.SetGenReg(inst.N, 0xFFFFFFFF)
			} else {
				cpu.SetGenReg(inst.N, 0)
			}
		} else {
			cpu.SetGenReg(inst.N, uint32(rn>>uint(n)))
		}
	}
	return nil
}

// execSHLD is SHAD's logical counterpart: right shifts zero-fill instead
// of sign-extending.
func execSHLD(cpu *CPU, inst Instruction) error {
	rn := cpu.GenReg(inst.N)
	count := signExtend5(cpu.GenReg(inst.M))
	switch {
	case count >= 0:
		if count >= 32 {
			cpu.SetGenReg(inst.N, 0)
		} else {
			cpu.SetGenReg(inst.N, rn<<uint(count))
		}
	default:
		n := -count
		if n >= 32 {
			cpu.SetGenReg(inst.N, 0)
		} else {
			cpu.SetGenReg(inst.N, rn>>uint(n))
		}
	}
	return nil
}
