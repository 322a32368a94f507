package vm

import (
	"encoding/binary"
	"math"
)

// FpuBank is 64 bytes shared between sixteen single-precision registers and
// eight double-precision registers. The aliasing goes through an explicit
// byte-level copy rather than a Go union, so it stays defined regardless of
// host endianness assumptions.
type FpuBank struct {
	bytes [FloatRegCount * 4]byte
}

func (b *FpuBank) readU32(word int) uint32 {
	return binary.BigEndian.Uint32(b.bytes[word*4:])
}

func (b *FpuBank) writeU32(word int, v uint32) {
	binary.BigEndian.PutUint32(b.bytes[word*4:], v)
}

// Single returns single-precision register word fr (0-15).
func (b *FpuBank) Single(fr int) float32 {
	return math.Float32frombits(b.readU32(fr))
}

// SetSingle sets single-precision register word fr (0-15).
func (b *FpuBank) SetSingle(fr int, v float32) {
	b.writeU32(fr, math.Float32bits(v))
}

// SingleBits returns the raw bit pattern of fr, used by FLDS/FSTS and the
// FMOV memory forms, which reinterpret rather than convert.
func (b *FpuBank) SingleBits(fr int) uint32 { return b.readU32(fr) }

// SetSingleBits sets the raw bit pattern of fr.
func (b *FpuBank) SetSingleBits(fr int, v uint32) { b.writeU32(fr, v) }

// Double returns double-precision register dr (0-14, even). A double
// occupies the storage of two adjacent single registers (2*dr, 2*dr+1), high
// word first, matching the SH-4's big-endian-style FPU register pairing.
func (b *FpuBank) Double(dr int) float64 {
	hi := uint64(b.readU32(dr * 2))
	lo := uint64(b.readU32(dr*2 + 1))
	return math.Float64frombits(hi<<32 | lo)
}

// SetDouble sets double-precision register dr (0-14, even).
func (b *FpuBank) SetDouble(dr int, v float64) {
	bits := math.Float64bits(v)
	b.writeU32(dr*2, uint32(bits>>32))
	b.writeU32(dr*2+1, uint32(bits))
}

// Vector4 returns the four single-precision registers starting at fr
// (fr must be a multiple of 4) as used by FIPR/FTRV.
func (b *FpuBank) Vector4(fr int) [4]float32 {
	return [4]float32{b.Single(fr), b.Single(fr + 1), b.Single(fr + 2), b.Single(fr + 3)}
}

// FPU is the floating point unit: FPSCR, FPUL, and two banks of registers
// selected by FPSCR.FR.
type FPU struct {
	FPSCR uint32
	FPUL  uint32
	Bank0 FpuBank
	Bank1 FpuBank
}

func (f *FPU) bank() *FpuBank {
	if f.FPSCR&FPSCRMaskFR != 0 {
		return &f.Bank1
	}
	return &f.Bank0
}

// FR returns the active bank's single-precision register fr.
func (f *FPU) FR(fr int) float32 { return f.bank().Single(fr) }

// SetFR sets the active bank's single-precision register fr.
func (f *FPU) SetFR(fr int, v float32) { f.bank().SetSingle(fr, v) }

// FRBits returns the raw bits of the active bank's single register fr.
func (f *FPU) FRBits(fr int) uint32 { return f.bank().SingleBits(fr) }

// SetFRBits sets the raw bits of the active bank's single register fr.
func (f *FPU) SetFRBits(fr int, v uint32) { f.bank().SetSingleBits(fr, v) }

// DR returns the active bank's double-precision register dr.
func (f *FPU) DR(dr int) float64 { return f.bank().Double(dr) }

// SetDR sets the active bank's double-precision register dr.
func (f *FPU) SetDR(dr int, v float64) { f.bank().SetDouble(dr, v) }

// XDR returns the *inactive* bank's double-precision register dr; XD
// registers are how FMOV reaches the bank FPSCR.FR is not currently
// pointing at.
func (f *FPU) XDR(dr int) float64 {
	if f.FPSCR&FPSCRMaskFR != 0 {
		return f.Bank0.Double(dr)
	}
	return f.Bank1.Double(dr)
}

func (f *FPU) SetXDR(dr int, v float64) {
	if f.FPSCR&FPSCRMaskFR != 0 {
		f.Bank0.SetDouble(dr, v)
		return
	}
	f.Bank1.SetDouble(dr, v)
}

// FV returns the active bank's four-register vector starting at fr.
func (f *FPU) FV(fr int) [4]float32 { return f.bank().Vector4(fr) }

// RoundingMode returns FPSCR.RM (0 = round to nearest, 1 = round to zero).
func (f *FPU) RoundingMode() uint32 { return (f.FPSCR & FPSCRMaskRM) >> FPSCRBitRM }

// Precision returns FPSCR.PR (false = single, true = double).
func (f *FPU) Precision() bool { return f.FPSCR&FPSCRMaskPR != 0 }

// TransferSize returns FPSCR.SZ (false = single word transfers, true =
// double/pair transfers for FMOV).
func (f *FPU) TransferSize() bool { return f.FPSCR&FPSCRMaskSZ != 0 }

// ToggleBank implements FRCHG: flips FPSCR.FR.
func (f *FPU) ToggleBank() { f.FPSCR ^= FPSCRMaskFR }

// ToggleTransferSize implements FSCHG: flips FPSCR.SZ.
func (f *FPU) ToggleTransferSize() { f.FPSCR ^= FPSCRMaskSZ }
