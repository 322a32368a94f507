package vm

// Op names one canonical instruction form. The assembler/disassembler
// pattern table (package encoder) and this decoder are two independent
// encodings of the same opcode space; both are exercised against the same
// set of Op values so a round-trip test can compare them directly.
type Op int

const (
	OpUnknown Op = iota

	// Moves
	OpMOV
	OpMOVImm
	OpMOVWPC
	OpMOVLPC
	OpMOVBStoreInd
	OpMOVWStoreInd
	OpMOVLStoreInd
	OpMOVBLoadInd
	OpMOVWLoadInd
	OpMOVLLoadInd
	OpMOVBStorePreDec
	OpMOVWStorePreDec
	OpMOVLStorePreDec
	OpMOVBLoadPostInc
	OpMOVWLoadPostInc
	OpMOVLLoadPostInc
	OpMOVBStoreR0Idx
	OpMOVWStoreR0Idx
	OpMOVLStoreR0Idx
	OpMOVBLoadR0Idx
	OpMOVWLoadR0Idx
	OpMOVLLoadR0Idx
	OpMOVBStoreDisp
	OpMOVWStoreDisp
	OpMOVLStoreDisp
	OpMOVBLoadDisp
	OpMOVWLoadDisp
	OpMOVLLoadDisp
	OpMOVBStoreGBR
	OpMOVWStoreGBR
	OpMOVLStoreGBR
	OpMOVBLoadGBR
	OpMOVWLoadGBR
	OpMOVLLoadGBR
	OpMOVA
	OpMOVT
	OpSWAPB
	OpSWAPW
	OpXTRCT

	// Arithmetic
	OpADD
	OpADDImm
	OpADDC
	OpADDV
	OpCMPEQ
	OpCMPEQImm
	OpCMPHS
	OpCMPGE
	OpCMPHI
	OpCMPGT
	OpCMPPL
	OpCMPPZ
	OpCMPSTR
	OpDIV0S
	OpDIV0U
	OpDIV1
	OpDMULS
	OpDMULU
	OpDT
	OpEXTSB
	OpEXTSW
	OpEXTUB
	OpEXTUW
	OpMACL
	OpMACW
	OpMULL
	OpMULSW
	OpMULUW
	OpNEG
	OpNEGC
	OpSUB
	OpSUBC
	OpSUBV

	// Logical / shifts
	OpAND
	OpANDImm
	OpANDB
	OpOR
	OpORImm
	OpORB
	OpXOR
	OpXORImm
	OpXORB
	OpNOT
	OpTST
	OpTSTImm
	OpTSTB
	OpTASB
	OpROTL
	OpROTR
	OpROTCL
	OpROTCR
	OpSHAD
	OpSHLD
	OpSHAL
	OpSHAR
	OpSHLL
	OpSHLR
	OpSHLL2
	OpSHLR2
	OpSHLL8
	OpSHLR8
	OpSHLL16
	OpSHLR16

	// Branches
	OpBT
	OpBF
	OpBTS
	OpBFS
	OpBRA
	OpBSR
	OpBRAF
	OpBSRF
	OpJMP
	OpJSR
	OpRTS
	OpRTE

	// System / control
	OpLDC
	OpLDCBank
	OpLDCL
	OpLDCLBank
	OpSTC
	OpSTCBank
	OpSTCL
	OpSTCLBank
	OpLDS
	OpLDSL
	OpSTS
	OpSTSL
	OpCLRMAC
	OpCLRS
	OpCLRT
	OpSETS
	OpSETT
	OpFRCHG
	OpFSCHG

	// FPU
	OpFMOV
	OpFMOVSLoadIdx
	OpFMOVSStoreIdx
	OpFMOVSLoad
	OpFMOVSLoadInc
	OpFMOVSStore
	OpFMOVSStoreDec
	OpFADD
	OpFSUB
	OpFMUL
	OpFDIV
	OpFCMPEQ
	OpFCMPGT
	OpFMAC
	OpFABS
	OpFNEG
	OpFSQRT
	OpFSRRA
	OpFLDI0
	OpFLDI1
	OpFLDS
	OpFSTS
	OpFLOAT
	OpFTRC
	OpFCNVDS
	OpFCNVSD
	OpFIPR
	OpFTRV

	// Caches
	OpMOVCAL
	OpOCBI
	OpOCBP
	OpOCBWB
	OpPREF

	// Misc
	OpNOP
	OpSLEEP
	OpLDTLB
	OpTRAPA
)

// Instruction is the decoded form of a 16-bit opcode: the operation plus
// whatever operand fields it needs, extracted from the standard bit
// ranges (Rn = 11..8, Rm = 7..4, imm8 = 7..0, disp4 = 3..0, disp8 = 7..0,
// disp12 = 11..0).
type Instruction struct {
	Op   Op
	N    int
	M    int
	Imm  int32 // sign/zero-extended immediate or displacement, already scaled where the form scales it
	Raw  uint16
}

func signExtend8(v uint16) int32  { return int32(int8(v)) }
func signExtend12(v uint16) int32 {
	v &= 0xFFF
	if v&0x800 != 0 {
		return int32(v) - 0x1000
	}
	return int32(v)
}

// Decode dispatches a 16-bit opcode into an Instruction, following a
// two-level scheme: the top nibble first, then a secondary bit-field
// selector within each group.
func Decode(opcode uint16) (Instruction, error) {
	n := int(opcode>>8) & 0xF
	m := int(opcode>>4) & 0xF
	low4 := opcode & 0xF
	imm8 := int32(opcode & 0xFF)

	switch opcode >> 12 {
	case 0x0:
		return decodeGroup0(opcode, n, m, low4)
	case 0x1:
		return Instruction{Op: OpMOVLStoreDisp, N: n, M: m, Imm: int32(low4) * 4, Raw: opcode}, nil
	case 0x2:
		return decodeGroup2(opcode, n, m, low4)
	case 0x3:
		return decodeGroup3(opcode, n, m, low4)
	case 0x4:
		return decodeGroup4(opcode, n, m, low4)
	case 0x5:
		return Instruction{Op: OpMOVLLoadDisp, N: n, M: m, Imm: int32(low4) * 4, Raw: opcode}, nil
	case 0x6:
		return decodeGroup6(opcode, n, m, low4)
	case 0x7:
		return Instruction{Op: OpADDImm, N: n, Imm: signExtend8(imm8), Raw: opcode}, nil
	case 0x8:
		return decodeGroup8(opcode, n, m)
	case 0x9:
		return Instruction{Op: OpMOVWPC, N: n, Imm: imm8 * 2, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpBRA, Imm: signExtend12(opcode) * 2, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpBSR, Imm: signExtend12(opcode) * 2, Raw: opcode}, nil
	case 0xC:
		return decodeGroupC(opcode, imm8)
	case 0xD:
		return Instruction{Op: OpMOVLPC, N: n, Imm: imm8 * 4, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpMOVImm, N: n, Imm: signExtend8(imm8), Raw: opcode}, nil
	case 0xF:
		return decodeGroupF(opcode, n, m, low4)
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroup0(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	switch {
	case opcode == 0x0008:
		return Instruction{Op: OpCLRT, Raw: opcode}, nil
	case opcode == 0x0009:
		return Instruction{Op: OpNOP, Raw: opcode}, nil
	case opcode == 0x000B:
		return Instruction{Op: OpRTS, Raw: opcode}, nil
	case opcode == 0x0018:
		return Instruction{Op: OpSETT, Raw: opcode}, nil
	case opcode == 0x0019:
		return Instruction{Op: OpDIV0U, Raw: opcode}, nil
	case opcode == 0x001B:
		return Instruction{Op: OpSLEEP, Raw: opcode}, nil
	case opcode == 0x0028:
		return Instruction{Op: OpCLRMAC, Raw: opcode}, nil
	case opcode == 0x002B:
		return Instruction{Op: OpRTE, Raw: opcode}, nil
	case opcode == 0x0048:
		return Instruction{Op: OpCLRS, Raw: opcode}, nil
	case opcode == 0x0058:
		return Instruction{Op: OpSETS, Raw: opcode}, nil
	case opcode == 0x00FB:
		return Instruction{Op: OpFRCHG, Raw: opcode}, nil
	case opcode == 0x00FC:
		return Instruction{Op: OpFSCHG, Raw: opcode}, nil
	}
	switch low4 {
	case 0x2:
		switch m {
		case 0x0:
			return Instruction{Op: OpSTC, N: n, M: 0, Raw: opcode}, nil // STC SR,Rn
		case 0x1:
			return Instruction{Op: OpSTC, N: n, M: 1, Raw: opcode}, nil // GBR
		case 0x2:
			return Instruction{Op: OpSTC, N: n, M: 2, Raw: opcode}, nil // VBR
		case 0x3:
			return Instruction{Op: OpSTC, N: n, M: 3, Raw: opcode}, nil // SSR
		case 0x4:
			return Instruction{Op: OpSTC, N: n, M: 4, Raw: opcode}, nil // SPC
		default:
			if m >= 8 {
				return Instruction{Op: OpSTCBank, N: n, M: m & 0x7, Raw: opcode}, nil
			}
			return Instruction{Op: OpSTC, N: n, M: 5, Raw: opcode}, nil // SGR
		}
	case 0x3:
		return Instruction{Op: OpBSRF, N: n, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpMOVBStoreR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpMOVWStoreR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0x6:
		return Instruction{Op: OpMOVLStoreR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0x7:
		return Instruction{Op: OpMULL, N: n, M: m, Raw: opcode}, nil
	case 0xA:
		switch m {
		case 0x0:
			return Instruction{Op: OpSTS, N: n, M: 0, Raw: opcode}, nil // MACH
		case 0x1:
			return Instruction{Op: OpSTS, N: n, M: 1, Raw: opcode}, nil // MACL
		case 0x2:
			return Instruction{Op: OpSTS, N: n, M: 2, Raw: opcode}, nil // PR
		case 0x5:
			return Instruction{Op: OpSTS, N: n, M: 3, Raw: opcode}, nil // FPUL
		default:
			return Instruction{Op: OpSTS, N: n, M: 4, Raw: opcode}, nil // FPSCR
		}
	case 0xC:
		return Instruction{Op: OpMOVBLoadR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpMOVWLoadR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpMOVLLoadR0Idx, N: n, M: m, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpMACL, N: n, M: m, Raw: opcode}, nil
	}
	if opcode&0xF0FF == 0x0023 {
		return Instruction{Op: OpBRAF, N: n, Raw: opcode}, nil
	}
	switch opcode & 0xF0FF {
	case 0x0029:
		return Instruction{Op: OpMOVT, N: n, Raw: opcode}, nil
	case 0x0083:
		return Instruction{Op: OpOCBI, N: n, Raw: opcode}, nil
	case 0x00A3:
		return Instruction{Op: OpOCBP, N: n, Raw: opcode}, nil
	case 0x00B3:
		return Instruction{Op: OpOCBWB, N: n, Raw: opcode}, nil
	case 0x0093:
		return Instruction{Op: OpPREF, N: n, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroup2(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	switch low4 {
	case 0x0:
		return Instruction{Op: OpMOVBStoreInd, N: n, M: m, Raw: opcode}, nil
	case 0x1:
		return Instruction{Op: OpMOVWStoreInd, N: n, M: m, Raw: opcode}, nil
	case 0x2:
		return Instruction{Op: OpMOVLStoreInd, N: n, M: m, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpMOVBStorePreDec, N: n, M: m, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpMOVWStorePreDec, N: n, M: m, Raw: opcode}, nil
	case 0x6:
		return Instruction{Op: OpMOVLStorePreDec, N: n, M: m, Raw: opcode}, nil
	case 0x7:
		return Instruction{Op: OpDIV0S, N: n, M: m, Raw: opcode}, nil
	case 0x8:
		return Instruction{Op: OpTST, N: n, M: m, Raw: opcode}, nil
	case 0x9:
		return Instruction{Op: OpAND, N: n, M: m, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpXOR, N: n, M: m, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpOR, N: n, M: m, Raw: opcode}, nil
	case 0xC:
		return Instruction{Op: OpCMPSTR, N: n, M: m, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpXTRCT, N: n, M: m, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpMULUW, N: n, M: m, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpMULSW, N: n, M: m, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroup3(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	switch low4 {
	case 0x0:
		return Instruction{Op: OpCMPEQ, N: n, M: m, Raw: opcode}, nil
	case 0x2:
		return Instruction{Op: OpCMPHS, N: n, M: m, Raw: opcode}, nil
	case 0x3:
		return Instruction{Op: OpCMPGE, N: n, M: m, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpDIV1, N: n, M: m, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpDMULU, N: n, M: m, Raw: opcode}, nil
	case 0x6:
		return Instruction{Op: OpCMPHI, N: n, M: m, Raw: opcode}, nil
	case 0x7:
		return Instruction{Op: OpCMPGT, N: n, M: m, Raw: opcode}, nil
	case 0x8:
		return Instruction{Op: OpSUB, N: n, M: m, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpSUBC, N: n, M: m, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpSUBV, N: n, M: m, Raw: opcode}, nil
	case 0xC:
		return Instruction{Op: OpADD, N: n, M: m, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpDMULS, N: n, M: m, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpADDC, N: n, M: m, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpADDV, N: n, M: m, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

// decodeGroup4 sets the M field of the STS/STC/.L/LDS/LDC forms below to a
// system-register index (SR=0,GBR=1,VBR=2,SSR=3,SPC=4,SGR=5,DBR=6 for the
// STC/LDC family; MACH=0,MACL=1,PR=2,FPUL=3,FPSCR=4 for STS/LDS).
func decodeGroup4(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	low8 := opcode & 0xFF
	switch low8 {
	case 0x00:
		return Instruction{Op: OpSHLL, N: n, Raw: opcode}, nil
	case 0x01:
		return Instruction{Op: OpSHLR, N: n, Raw: opcode}, nil
	case 0x02, 0x12, 0x22:
		return Instruction{Op: OpSTSL, N: n, M: int(low8 >> 4), Raw: opcode}, nil // MACH/MACL/PR
	case 0x03, 0x13, 0x23, 0x33, 0x43, 0x53:
		return Instruction{Op: OpSTCL, N: n, M: int(low8 >> 4), Raw: opcode}, nil // SR/GBR/VBR/SSR/SPC/SGR
	case 0xF3:
		return Instruction{Op: OpSTCL, N: n, M: 6, Raw: opcode}, nil // DBR
	case 0x04:
		return Instruction{Op: OpROTL, N: n, Raw: opcode}, nil
	case 0x05:
		return Instruction{Op: OpROTR, N: n, Raw: opcode}, nil
	case 0x06, 0x16, 0x26, 0x56, 0x66:
		return Instruction{Op: OpLDSL, N: n, M: ldsIndex(low8), Raw: opcode}, nil
	case 0x07, 0x17, 0x27, 0x37, 0x47, 0x57:
		return Instruction{Op: OpLDCL, N: n, M: int(low8 >> 4), Raw: opcode}, nil
	case 0xF7:
		return Instruction{Op: OpLDCL, N: n, M: 6, Raw: opcode}, nil // DBR
	case 0x08:
		return Instruction{Op: OpSHLL2, N: n, Raw: opcode}, nil
	case 0x09:
		return Instruction{Op: OpSHLR2, N: n, Raw: opcode}, nil
	case 0x0A, 0x1A, 0x2A, 0x5A, 0x6A:
		return Instruction{Op: OpLDS, N: n, M: ldsIndex(low8), Raw: opcode}, nil
	case 0x0B:
		return Instruction{Op: OpJSR, N: n, Raw: opcode}, nil
	case 0x0E, 0x1E, 0x2E, 0x3E, 0x4E, 0x5E:
		return Instruction{Op: OpLDC, N: n, M: int(low8 >> 4), Raw: opcode}, nil
	case 0xFE:
		return Instruction{Op: OpLDC, N: n, M: 6, Raw: opcode}, nil // DBR
	case 0x10:
		return Instruction{Op: OpDT, N: n, Raw: opcode}, nil
	case 0x11:
		return Instruction{Op: OpCMPPZ, N: n, Raw: opcode}, nil
	case 0x15:
		return Instruction{Op: OpCMPPL, N: n, Raw: opcode}, nil
	case 0x18:
		return Instruction{Op: OpSHLL8, N: n, Raw: opcode}, nil
	case 0x19:
		return Instruction{Op: OpSHLR8, N: n, Raw: opcode}, nil
	case 0x1B:
		return Instruction{Op: OpTASB, N: n, Raw: opcode}, nil
	case 0x20:
		return Instruction{Op: OpSHAL, N: n, Raw: opcode}, nil
	case 0x21:
		return Instruction{Op: OpSHAR, N: n, Raw: opcode}, nil
	case 0x24:
		return Instruction{Op: OpROTCL, N: n, Raw: opcode}, nil
	case 0x25:
		return Instruction{Op: OpROTCR, N: n, Raw: opcode}, nil
	case 0x28:
		return Instruction{Op: OpSHLL16, N: n, Raw: opcode}, nil
	case 0x29:
		return Instruction{Op: OpSHLR16, N: n, Raw: opcode}, nil
	case 0x2B:
		return Instruction{Op: OpJMP, N: n, Raw: opcode}, nil
	}
	switch low4 {
	case 0xC:
		return Instruction{Op: OpSHAD, N: n, M: m, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpSHLD, N: n, M: m, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpMACW, N: n, M: m, Raw: opcode}, nil
	}
	if opcode&0xF08F == 0x4087 {
		return Instruction{Op: OpLDCLBank, N: n, M: m & 0x7, Raw: opcode}, nil
	}
	if opcode&0xF08F == 0x408E {
		return Instruction{Op: OpLDCBank, N: n, M: m & 0x7, Raw: opcode}, nil
	}
	if opcode&0xF08F == 0x4083 {
		return Instruction{Op: OpSTCLBank, N: n, M: m & 0x7, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

// ldsIndex maps an LDS/LDS.L low byte to its MACH=0/MACL=1/PR=2/FPUL=3/
// FPSCR=4 register index.
func ldsIndex(low8 uint16) int {
	switch low8 & 0xF0 {
	case 0x00:
		return 0
	case 0x10:
		return 1
	case 0x20:
		return 2
	case 0x50:
		return 3
	default:
		return 4
	}
}

func decodeGroup6(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	switch low4 {
	case 0x0:
		return Instruction{Op: OpMOVBLoadInd, N: n, M: m, Raw: opcode}, nil
	case 0x1:
		return Instruction{Op: OpMOVWLoadInd, N: n, M: m, Raw: opcode}, nil
	case 0x2:
		return Instruction{Op: OpMOVLLoadInd, N: n, M: m, Raw: opcode}, nil
	case 0x3:
		return Instruction{Op: OpMOV, N: n, M: m, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpMOVBLoadPostInc, N: n, M: m, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpMOVWLoadPostInc, N: n, M: m, Raw: opcode}, nil
	case 0x6:
		return Instruction{Op: OpMOVLLoadPostInc, N: n, M: m, Raw: opcode}, nil
	case 0x7:
		return Instruction{Op: OpNOT, N: n, M: m, Raw: opcode}, nil
	case 0x8:
		return Instruction{Op: OpSWAPB, N: n, M: m, Raw: opcode}, nil
	case 0x9:
		return Instruction{Op: OpSWAPW, N: n, M: m, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpNEGC, N: n, M: m, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpNEG, N: n, M: m, Raw: opcode}, nil
	case 0xC:
		return Instruction{Op: OpEXTUB, N: n, M: m, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpEXTUW, N: n, M: m, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpEXTSB, N: n, M: m, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpEXTSW, N: n, M: m, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroup8(opcode uint16, n, m int) (Instruction, error) {
	sub := (opcode >> 8) & 0xF
	disp := int32(opcode & 0xFF)
	switch sub {
	case 0x0:
		return Instruction{Op: OpMOVBStoreDisp, N: m, Imm: disp & 0xF, Raw: opcode}, nil
	case 0x1:
		return Instruction{Op: OpMOVWStoreDisp, N: m, Imm: (disp & 0xF) * 2, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpMOVBLoadDisp, M: m, Imm: disp & 0xF, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpMOVWLoadDisp, M: m, Imm: (disp & 0xF) * 2, Raw: opcode}, nil
	case 0x8:
		return Instruction{Op: OpCMPEQImm, Imm: signExtend8(uint16(disp)), Raw: opcode}, nil
	case 0x9:
		return Instruction{Op: OpBT, Imm: signExtend8(uint16(disp)) * 2, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpBF, Imm: signExtend8(uint16(disp)) * 2, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpBTS, Imm: signExtend8(uint16(disp)) * 2, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpBFS, Imm: signExtend8(uint16(disp)) * 2, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroupC(opcode uint16, imm8 int32) (Instruction, error) {
	sub := (opcode >> 8) & 0xF
	switch sub {
	case 0x0:
		return Instruction{Op: OpMOVBStoreGBR, Imm: imm8, Raw: opcode}, nil
	case 0x1:
		return Instruction{Op: OpMOVWStoreGBR, Imm: imm8 * 2, Raw: opcode}, nil
	case 0x2:
		return Instruction{Op: OpMOVLStoreGBR, Imm: imm8 * 4, Raw: opcode}, nil
	case 0x3:
		return Instruction{Op: OpTRAPA, Imm: imm8, Raw: opcode}, nil
	case 0x4:
		return Instruction{Op: OpMOVBLoadGBR, Imm: imm8, Raw: opcode}, nil
	case 0x5:
		return Instruction{Op: OpMOVWLoadGBR, Imm: imm8 * 2, Raw: opcode}, nil
	case 0x6:
		return Instruction{Op: OpMOVLLoadGBR, Imm: imm8 * 4, Raw: opcode}, nil
	case 0x7:
		return Instruction{Op: OpMOVA, Imm: imm8 * 4, Raw: opcode}, nil
	case 0x8:
		return Instruction{Op: OpTSTImm, Imm: imm8, Raw: opcode}, nil
	case 0x9:
		return Instruction{Op: OpANDImm, Imm: imm8, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpXORImm, Imm: imm8, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpORImm, Imm: imm8, Raw: opcode}, nil
	case 0xC:
		return Instruction{Op: OpTSTB, Imm: imm8, Raw: opcode}, nil
	case 0xD:
		return Instruction{Op: OpANDB, Imm: imm8, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpXORB, Imm: imm8, Raw: opcode}, nil
	case 0xF:
		return Instruction{Op: OpORB, Imm: imm8, Raw: opcode}, nil
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}

func decodeGroupF(opcode uint16, n, m int, low4 uint16) (Instruction, error) {
	if low4 <= 0x7 {
		switch low4 {
		case 0x0:
			return Instruction{Op: OpFADD, N: n, M: m, Raw: opcode}, nil
		case 0x1:
			return Instruction{Op: OpFSUB, N: n, M: m, Raw: opcode}, nil
		case 0x2:
			return Instruction{Op: OpFMUL, N: n, M: m, Raw: opcode}, nil
		case 0x3:
			return Instruction{Op: OpFDIV, N: n, M: m, Raw: opcode}, nil
		case 0x4:
			return Instruction{Op: OpFCMPEQ, N: n, M: m, Raw: opcode}, nil
		case 0x5:
			return Instruction{Op: OpFCMPGT, N: n, M: m, Raw: opcode}, nil
		case 0x6:
			return Instruction{Op: OpFMOVSLoadIdx, N: n, M: m, Raw: opcode}, nil
		case 0x7:
			return Instruction{Op: OpFMOVSStoreIdx, N: n, M: m, Raw: opcode}, nil
		}
	}
	switch low4 {
	case 0x8:
		return Instruction{Op: OpFMOVSLoad, N: n, M: m, Raw: opcode}, nil
	case 0x9:
		return Instruction{Op: OpFMOVSLoadInc, N: n, M: m, Raw: opcode}, nil
	case 0xA:
		return Instruction{Op: OpFMOVSStore, N: n, M: m, Raw: opcode}, nil
	case 0xB:
		return Instruction{Op: OpFMOVSStoreDec, N: n, M: m, Raw: opcode}, nil
	case 0xC:
		return Instruction{Op: OpFMOV, N: n, M: m, Raw: opcode}, nil
	case 0xE:
		return Instruction{Op: OpFMAC, N: n, M: m, Raw: opcode}, nil
	}
	if low4 == 0xD {
		sub := (opcode >> 4) & 0xF
		switch sub {
		case 0x0:
			return Instruction{Op: OpFSTS, N: n, Raw: opcode}, nil
		case 0x1:
			return Instruction{Op: OpFLDS, N: n, Raw: opcode}, nil
		case 0x2:
			return Instruction{Op: OpFLOAT, N: n, Raw: opcode}, nil
		case 0x3:
			return Instruction{Op: OpFTRC, N: n, Raw: opcode}, nil
		case 0x4:
			return Instruction{Op: OpFNEG, N: n, Raw: opcode}, nil
		case 0x5:
			return Instruction{Op: OpFABS, N: n, Raw: opcode}, nil
		case 0x6:
			return Instruction{Op: OpFSQRT, N: n, Raw: opcode}, nil
		case 0x7:
			return Instruction{Op: OpFSRRA, N: n, Raw: opcode}, nil
		case 0x8:
			return Instruction{Op: OpFLDI0, N: n, Raw: opcode}, nil
		case 0x9:
			return Instruction{Op: OpFLDI1, N: n, Raw: opcode}, nil
		case 0xA:
			return Instruction{Op: OpFCNVSD, N: n, Raw: opcode}, nil
		case 0xB:
			return Instruction{Op: OpFCNVDS, N: n, Raw: opcode}, nil
		case 0xC:
			return Instruction{Op: OpMOVCAL, N: n, Raw: opcode}, nil
		case 0xD:
			return Instruction{Op: OpLDTLB, Raw: opcode}, nil
		case 0xE:
			return Instruction{Op: OpFIPR, N: n, M: m, Raw: opcode}, nil
		case 0xF:
			return Instruction{Op: OpFTRV, N: n, Raw: opcode}, nil
		}
	}
	return Instruction{}, NewError(ErrUnrecognizedPattern, "opcode 0x%04X", opcode)
}
