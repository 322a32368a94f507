package vm

// Arithmetic implements the arithmetic instruction category: ADD family,
// CMP family, the multiply/MAC family (with 48-bit and 32-bit saturation),
// DT, and the DIV0U/DIV0S/DIV1 restoring-division primitives.

func execADD(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)+cpu.GenReg(inst.M))
	return nil
}

func execADDImm(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)+uint32(inst.Imm))
	return nil
}

func execADDC(cpu *CPU, inst Instruction) error {
	rn, rm := cpu.GenReg(inst.N), cpu.GenReg(inst.M)
	carryIn := uint32(0)
	if cpu.SR.T() {
		carryIn = 1
	}
	sum := uint64(rn) + uint64(rm) + uint64(carryIn)
	cpu.SetGenReg(inst.N, uint32(sum))
	cpu.SR.SetT(sum > 0xFFFFFFFF)
	return nil
}

func execADDV(cpu *CPU, inst Instruction) error {
	rn, rm := cpu.GenReg(inst.N), cpu.GenReg(inst.M)
	result := rn + rm
	signRn, signRm, signResult := rn>>31, rm>>31, result>>31
	overflow := signRn == signRm && signResult != signRn
	cpu.SetGenReg(inst.N, result)
	cpu.SR.SetT(overflow)
	return nil
}

func execSUB(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.N)-cpu.GenReg(inst.M))
	return nil
}

func execSUBC(cpu *CPU, inst Instruction) error {
	rn, rm := cpu.GenReg(inst.N), cpu.GenReg(inst.M)
	borrowIn := uint64(0)
	if cpu.SR.T() {
		borrowIn = 1
	}
	diff := uint64(rn) - uint64(rm) - borrowIn
	cpu.SetGenReg(inst.N, uint32(diff))
	cpu.SR.SetT(uint64(rn) < uint64(rm)+borrowIn)
	return nil
}

func execSUBV(cpu *CPU, inst Instruction) error {
	rn, rm := cpu.GenReg(inst.N), cpu.GenReg(inst.M)
	result := rn - rm
	signRn, signRm, signResult := rn>>31, rm>>31, result>>31
	overflow := signRn != signRm && signResult != signRn
	cpu.SetGenReg(inst.N, result)
	cpu.SR.SetT(overflow)
	return nil
}

func execNEG(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, 0-cpu.GenReg(inst.M))
	return nil
}

func execNEGC(cpu *CPU, inst Instruction) error {
	rm := cpu.GenReg(inst.M)
	borrowIn := uint64(0)
	if cpu.SR.T() {
		borrowIn = 1
	}
	diff := uint64(0) - uint64(rm) - borrowIn
	cpu.SetGenReg(inst.N, uint32(diff))
	cpu.SR.SetT(uint64(rm)+borrowIn > 0)
	return nil
}

func execDT(cpu *CPU, inst Instruction) error {
	v := cpu.GenReg(inst.N) - 1
	cpu.SetGenReg(inst.N, v)
	cpu.SR.SetT(v == 0)
	return nil
}

func execCMPEQ(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(cpu.GenReg(inst.N) == cpu.GenReg(inst.M))
	return nil
}

func execCMPEQImm(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(int32(cpu.GenReg(0)) == inst.Imm)
	return nil
}

func execCMPHS(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(cpu.GenReg(inst.N) >= cpu.GenReg(inst.M))
	return nil
}

func execCMPGE(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(int32(cpu.GenReg(inst.N)) >= int32(cpu.GenReg(inst.M)))
	return nil
}

func execCMPHI(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(cpu.GenReg(inst.N) > cpu.GenReg(inst.M))
	return nil
}

func execCMPGT(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(int32(cpu.GenReg(inst.N)) > int32(cpu.GenReg(inst.M)))
	return nil
}

func execCMPPL(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(int32(cpu.GenReg(inst.N)) > 0)
	return nil
}

func execCMPPZ(cpu *CPU, inst Instruction) error {
	cpu.SR.SetT(int32(cpu.GenReg(inst.N)) >= 0)
	return nil
}

func execCMPSTR(cpu *CPU, inst Instruction) error {
	x := cpu.GenReg(inst.N) ^ cpu.GenReg(inst.M)
	match := (x&0xFF == 0) || (x&0xFF00 == 0) || (x&0xFF0000 == 0) || (x&0xFF000000 == 0)
	cpu.SR.SetT(match)
	return nil
}

func execEXTSB(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, uint32(int32(int8(cpu.GenReg(inst.M)))))
	return nil
}

func execEXTSW(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, uint32(int32(int16(cpu.GenReg(inst.M)))))
	return nil
}

func execEXTUB(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.M)&0xFF)
	return nil
}

func execEXTUW(cpu *CPU, inst Instruction) error {
	cpu.SetGenReg(inst.N, cpu.GenReg(inst.M)&0xFFFF)
	return nil
}

func execMULL(cpu *CPU, inst Instruction) error {
	cpu.MACL = cpu.GenReg(inst.N) * cpu.GenReg(inst.M)
	return nil
}

func execMULSW(cpu *CPU, inst Instruction) error {
	r := int32(int16(cpu.GenReg(inst.N))) * int32(int16(cpu.GenReg(inst.M)))
	cpu.MACL = uint32(r)
	return nil
}

func execMULUW(cpu *CPU, inst Instruction) error {
	r := uint32(uint16(cpu.GenReg(inst.N))) * uint32(uint16(cpu.GenReg(inst.M)))
	cpu.MACL = r
	return nil
}

func execDMULS(cpu *CPU, inst Instruction) error {
	p := int64(int32(cpu.GenReg(inst.N))) * int64(int32(cpu.GenReg(inst.M)))
	cpu.MACH = uint32(uint64(p) >> 32)
	cpu.MACL = uint32(p)
	return nil
}

func execDMULU(cpu *CPU, inst Instruction) error {
	p := uint64(cpu.GenReg(inst.N)) * uint64(cpu.GenReg(inst.M))
	cpu.MACH = uint32(p >> 32)
	cpu.MACL = uint32(p)
	return nil
}

const (
	mac48Max = int64(1)<<47 - 1
	mac48Min = -(int64(1) << 47)
)

// execMACL implements MAC.L @Rm+,@Rn+: load two longwords, multiply, add
// into the 64-bit MACH:MACL pair, and — when SR.S is set — saturate the
// result to the 48-bit signed range.
func execMACL(cpu *CPU, mem *Memory, inst Instruction) error {
	am, an := cpu.GenReg(inst.M), cpu.GenReg(inst.N)
	vm64, err := mem.ReadData(am, 4, false)
	if err != nil {
		return err
	}
	vn64, err := mem.ReadData(an, 4, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.M, am+4)
	cpu.SetGenReg(inst.N, an+4)

	product := int64(int32(uint32(vm64))) * int64(int32(uint32(vn64)))
	acc := int64(uint64(cpu.MACH)<<32|uint64(cpu.MACL)) + product

	if cpu.SR.SBit() {
		if acc > mac48Max {
			acc = mac48Max
		} else if acc < mac48Min {
			acc = mac48Min
		}
	}
	u := uint64(acc)
	cpu.MACH = uint32(u >> 32)
	cpu.MACL = uint32(u)
	return nil
}

// execMACW implements MAC.W @Rm+,@Rn+: load two words, multiply (16x16->32),
// add into MACL (and MACH for the non-saturating case per SH-4 semantics
// tracked by MACH's overflow accumulation), saturating to the 32-bit signed
// range when SR.S is set.
func execMACW(cpu *CPU, mem *Memory, inst Instruction) error {
	am, an := cpu.GenReg(inst.M), cpu.GenReg(inst.N)
	vm16, err := mem.ReadData(am, 2, false)
	if err != nil {
		return err
	}
	vn16, err := mem.ReadData(an, 2, false)
	if err != nil {
		return err
	}
	cpu.SetGenReg(inst.M, am+2)
	cpu.SetGenReg(inst.N, an+2)

	product := int64(int16(uint16(vm16))) * int64(int16(uint16(vn16)))

	if cpu.SR.SBit() {
		acc := int64(int32(cpu.MACL)) + product
		if acc > int64(int32(0x7FFFFFFF)) {
			acc = 0x7FFFFFFF
			cpu.MACH |= 1
		} else if acc < int64(int32(-0x80000000)) {
			acc = -0x80000000
			cpu.MACH |= 1
		}
		cpu.MACL = uint32(acc)
		return nil
	}
	acc := int64(uint64(cpu.MACH)<<32|uint64(cpu.MACL)) + product
	u := uint64(acc)
	cpu.MACH = uint32(u >> 32)
	cpu.MACL = uint32(u)
	return nil
}

// execDIV0U clears Q, M, and T (unsigned division setup).
func execDIV0U(cpu *CPU) error {
	cpu.SR.SetQ(false)
	cpu.SR.SetM(false)
	cpu.SR.SetT(false)
	return nil
}

// execDIV0S seeds Q and M from the sign bits of the dividend/divisor and
// sets T = Q xor M (signed division setup).
func execDIV0S(cpu *CPU, inst Instruction) error {
	q := int32(cpu.GenReg(inst.N)) < 0
	m := int32(cpu.GenReg(inst.M)) < 0
	cpu.SR.SetQ(q)
	cpu.SR.SetM(m)
	cpu.SR.SetT(q != m)
	return nil
}

// execDIV1 performs one step of restoring division, matching the hardware
// bit-for-bit. The four (oldQ, M) combinations pick different add/subtract
// operations AND different overflow-to-Q corrections; they do not collapse
// to two cases.
func execDIV1(cpu *CPU, inst Instruction) error {
	rn := cpu.GenReg(inst.N)
	rm := cpu.GenReg(inst.M)
	oldQ := cpu.SR.Q()
	m := cpu.SR.M()

	msb := rn>>31 != 0
	rn = (rn << 1) | boolToUint32(cpu.SR.T())

	var result uint32
	var overflow, q bool

	if !oldQ && !m {
		result = rn - rm
		overflow = result > rn
		q = msb != overflow
	} else if !oldQ && m {
		result = rn + rm
		overflow = result < rn
		q = msb == overflow
	} else if oldQ && !m {
		result = rn + rm
		overflow = result < rn
		q = msb != overflow
	} else { // oldQ && m
		result = rn - rm
		overflow = result > rn
		q = msb == overflow
	}

	cpu.SetGenReg(inst.N, result)
	cpu.SR.SetQ(q)
	cpu.SR.SetT(q == m)
	return nil
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
