package vm

import "math"

// FPU implements the FPU instruction category. PR (FPSCR.Precision) selects
// between the single-register (FR) and double-register (DR) forms for the
// arithmetic/compare/transfer ops that support both; FMOV's addressing
// modes are additionally gated by FPSCR.SZ for the register<->memory forms.

func execFADD(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, cpu.FPU.DR(inst.N)+cpu.FPU.DR(inst.M))
	} else {
		cpu.FPU.SetFR(inst.N, cpu.FPU.FR(inst.N)+cpu.FPU.FR(inst.M))
	}
	return nil
}

func execFSUB(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, cpu.FPU.DR(inst.N)-cpu.FPU.DR(inst.M))
	} else {
		cpu.FPU.SetFR(inst.N, cpu.FPU.FR(inst.N)-cpu.FPU.FR(inst.M))
	}
	return nil
}

func execFMUL(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, cpu.FPU.DR(inst.N)*cpu.FPU.DR(inst.M))
	} else {
		cpu.FPU.SetFR(inst.N, cpu.FPU.FR(inst.N)*cpu.FPU.FR(inst.M))
	}
	return nil
}

func execFDIV(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, cpu.FPU.DR(inst.N)/cpu.FPU.DR(inst.M))
	} else {
		cpu.FPU.SetFR(inst.N, cpu.FPU.FR(inst.N)/cpu.FPU.FR(inst.M))
	}
	return nil
}

func execFCMPEQ(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.SR.SetT(cpu.FPU.DR(inst.N) == cpu.FPU.DR(inst.M))
	} else {
		cpu.SR.SetT(cpu.FPU.FR(inst.N) == cpu.FPU.FR(inst.M))
	}
	return nil
}

func execFCMPGT(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.SR.SetT(cpu.FPU.DR(inst.N) > cpu.FPU.DR(inst.M))
	} else {
		cpu.SR.SetT(cpu.FPU.FR(inst.N) > cpu.FPU.FR(inst.M))
	}
	return nil
}

// execFMAC implements FMAC FR0,FRm,FRn: FRn += FR0 * FRm (single-precision
// only on real hardware).
func execFMAC(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetFR(inst.N, cpu.FPU.FR(0)*cpu.FPU.FR(inst.M)+cpu.FPU.FR(inst.N))
	return nil
}

func execFABS(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, math.Abs(cpu.FPU.DR(inst.N)))
	} else {
		cpu.FPU.SetFR(inst.N, float32(math.Abs(float64(cpu.FPU.FR(inst.N)))))
	}
	return nil
}

func execFNEG(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, -cpu.FPU.DR(inst.N))
	} else {
		cpu.FPU.SetFR(inst.N, -cpu.FPU.FR(inst.N))
	}
	return nil
}

func execFSQRT(cpu *CPU, inst Instruction) error {
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, math.Sqrt(cpu.FPU.DR(inst.N)))
	} else {
		cpu.FPU.SetFR(inst.N, float32(math.Sqrt(float64(cpu.FPU.FR(inst.N)))))
	}
	return nil
}

// execFSRRA computes the reciprocal square root (single-precision only).
func execFSRRA(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetFR(inst.N, float32(1/math.Sqrt(float64(cpu.FPU.FR(inst.N)))))
	return nil
}

func execFLDI0(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetFR(inst.N, 0)
	return nil
}

func execFLDI1(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetFR(inst.N, 1)
	return nil
}

// execFLDS reinterprets FRm's bits into FPUL (no numeric conversion).
func execFLDS(cpu *CPU, inst Instruction) error {
	cpu.FPU.FPUL = cpu.FPU.FRBits(inst.N)
	return nil
}

// execFSTS reinterprets FPUL's bits into FRn.
func execFSTS(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetFRBits(inst.N, cpu.FPU.FPUL)
	return nil
}

// execFLOAT converts the integer in FPUL to a float or double in FRn/DRn,
// chosen by FPSCR.PR.
func execFLOAT(cpu *CPU, inst Instruction) error {
	iv := int32(cpu.FPU.FPUL)
	if cpu.FPU.Precision() {
		cpu.FPU.SetDR(inst.N, float64(iv))
	} else {
		cpu.FPU.SetFR(inst.N, float32(iv))
	}
	return nil
}

// execFTRC truncates FRn/DRn toward zero into FPUL, regardless of
// FPSCR.RM.
func execFTRC(cpu *CPU, inst Instruction) error {
	var f float64
	if cpu.FPU.Precision() {
		f = cpu.FPU.DR(inst.N)
	} else {
		f = float64(cpu.FPU.FR(inst.N))
	}
	cpu.FPU.FPUL = uint32(int32(math.Trunc(f)))
	return nil
}

// execFCNVDS converts DRn (double) to single through FPUL.
func execFCNVDS(cpu *CPU, inst Instruction) error {
	cpu.FPU.FPUL = math.Float32bits(float32(cpu.FPU.DR(inst.N)))
	return nil
}

// execFCNVSD converts FPUL (single bits) to DRn (double).
func execFCNVSD(cpu *CPU, inst Instruction) error {
	cpu.FPU.SetDR(inst.N, float64(math.Float32frombits(cpu.FPU.FPUL)))
	return nil
}

// execFIPR computes the dot product of two 4-vectors: the N field carries
// the vector number (0-3, see parseRegNum in encoder/patterns.go for the
// FVn token), scaled here by 4 to the base register index.
func execFIPR(cpu *CPU, inst Instruction) error {
	a := cpu.FPU.FV(inst.M * 4)
	b := cpu.FPU.FV(inst.N * 4)
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	cpu.FPU.SetFR(inst.N*4+3, sum)
	return nil
}

// execFTRV multiplies the 4x4 matrix XMTRX (FR0..FR15 of the bank *not*
// selected by FPSCR.FR, per hardware) by the vector FVn, storing the
// result back into FVn.
func execFTRV(cpu *CPU, inst Instruction) error {
	xm := cpu.FPU.Bank0
	if cpu.FPU.FPSCR&FPSCRMaskFR == 0 {
		xm = cpu.FPU.Bank1
	}
	vec := cpu.FPU.FV(inst.N * 4)
	var out [4]float32
	for row := 0; row < 4; row++ {
		var sum float32
		for col := 0; col < 4; col++ {
			sum += xm.Single(col*4+row) * vec[col]
		}
		out[row] = sum
	}
	for i := 0; i < 4; i++ {
		cpu.FPU.SetFR(inst.N*4+i, out[i])
	}
	return nil
}

// execFMOV implements plain FMOV FRm,FRn / DRm,DRn (register to
// register, no memory access), honoring SZ for pair transfers.
func execFMOV(cpu *CPU, inst Instruction) error {
	if cpu.FPU.TransferSize() {
		cpu.FPU.SetDR(inst.N, cpu.FPU.DR(inst.M))
	} else {
		cpu.FPU.SetFR(inst.N, cpu.FPU.FR(inst.M))
	}
	return nil
}

func fmovTransferWidth(cpu *CPU) int {
	if cpu.FPU.TransferSize() {
		return 8
	}
	return 4
}

func execFMOVSLoad(cpu *CPU, mem *Memory, inst Instruction) error {
	w := fmovTransferWidth(cpu)
	v, err := mem.ReadData(cpu.GenReg(inst.M), w, false)
	if err != nil {
		return err
	}
	if w == 8 {
		cpu.FPU.SetDR(inst.N, math.Float64frombits(v))
	} else {
		cpu.FPU.SetFRBits(inst.N, uint32(v))
	}
	return nil
}

func execFMOVSLoadInc(cpu *CPU, mem *Memory, inst Instruction) error {
	addr := cpu.GenReg(inst.M)
	w := fmovTransferWidth(cpu)
	v, err := mem.ReadData(addr, w, false)
	if err != nil {
		return err
	}
	if w == 8 {
		cpu.FPU.SetDR(inst.N, math.Float64frombits(v))
	} else {
		cpu.FPU.SetFRBits(inst.N, uint32(v))
	}
	cpu.SetGenReg(inst.M, addr+uint32(w))
	return nil
}

func execFMOVSStore(cpu *CPU, mem *Memory, inst Instruction) error {
	w := fmovTransferWidth(cpu)
	var v uint64
	if w == 8 {
		v = math.Float64bits(cpu.FPU.DR(inst.M))
	} else {
		v = uint64(cpu.FPU.FRBits(inst.M))
	}
	return mem.WriteData(cpu.GenReg(inst.N), w, v, false)
}

func execFMOVSStoreDec(cpu *CPU, mem *Memory, inst Instruction) error {
	w := fmovTransferWidth(cpu)
	addr := cpu.GenReg(inst.N) - uint32(w)
	var v uint64
	if w == 8 {
		v = math.Float64bits(cpu.FPU.DR(inst.M))
	} else {
		v = uint64(cpu.FPU.FRBits(inst.M))
	}
	if err := mem.WriteData(addr, w, v, false); err != nil {
		return err
	}
	cpu.SetGenReg(inst.N, addr)
	return nil
}

func execFMOVSLoadIdx(cpu *CPU, mem *Memory, inst Instruction) error {
	w := fmovTransferWidth(cpu)
	v, err := mem.ReadData(cpu.GenReg(inst.M)+cpu.GenReg(0), w, false)
	if err != nil {
		return err
	}
	if w == 8 {
		cpu.FPU.SetDR(inst.N, math.Float64frombits(v))
	} else {
		cpu.FPU.SetFRBits(inst.N, uint32(v))
	}
	return nil
}

func execFMOVSStoreIdx(cpu *CPU, mem *Memory, inst Instruction) error {
	w := fmovTransferWidth(cpu)
	var v uint64
	if w == 8 {
		v = math.Float64bits(cpu.FPU.DR(inst.M))
	} else {
		v = uint64(cpu.FPU.FRBits(inst.M))
	}
	return mem.WriteData(cpu.GenReg(inst.N)+cpu.GenReg(0), w, v, false)
}
