package encoder

import (
	"fmt"

	"github.com/sh4emu/sh4-emulator/vm"
)

// EncodeOp packs a decoded vm.Instruction back into its 16-bit opcode word.
// It is the exact algebraic inverse of vm.Decode: every bit-field formula
// here undoes the corresponding extraction in vm/decode.go, so
// EncodeOp(mustDecode(w)) == w for every w vm.Decode accepts, and
// vm.Decode(EncodeOp(inst)) reproduces inst for every Op this function
// covers (patterns.go is responsible for only ever building instructions
// whose N/M/Imm fields fall inside the ranges the hardware actually uses).
func EncodeOp(inst vm.Instruction) (uint16, error) {
	n := uint16(inst.N & 0xF)
	m := uint16(inst.M & 0xF)

	switch inst.Op {

	// --- single full-word ops, no operand fields ---
	case vm.OpCLRT:
		return 0x0008, nil
	case vm.OpNOP:
		return 0x0009, nil
	case vm.OpRTS:
		return 0x000B, nil
	case vm.OpSETT:
		return 0x0018, nil
	case vm.OpDIV0U:
		return 0x0019, nil
	case vm.OpSLEEP:
		return 0x001B, nil
	case vm.OpCLRMAC:
		return 0x0028, nil
	case vm.OpRTE:
		return 0x002B, nil
	case vm.OpCLRS:
		return 0x0048, nil
	case vm.OpSETS:
		return 0x0058, nil
	case vm.OpFRCHG:
		return 0x00FB, nil
	case vm.OpFSCHG:
		return 0x00FC, nil
	case vm.OpLDTLB:
		return 0xF0DD, nil

	// --- group 0x0: STC/STS families and R0-indexed moves ---
	case vm.OpSTC:
		return 0x0002 | n<<8 | uint16(inst.M)<<4, nil
	case vm.OpSTCBank:
		return 0x0002 | n<<8 | (0x8|uint16(inst.M&0x7))<<4, nil
	case vm.OpBSRF:
		return 0x0003 | n<<8, nil
	case vm.OpMOVBStoreR0Idx:
		return 0x0004 | n<<8 | m<<4, nil
	case vm.OpMOVWStoreR0Idx:
		return 0x0005 | n<<8 | m<<4, nil
	case vm.OpMOVLStoreR0Idx:
		return 0x0006 | n<<8 | m<<4, nil
	case vm.OpMULL:
		return 0x0007 | n<<8 | m<<4, nil
	case vm.OpSTS:
		return 0x000A | n<<8 | stsSubNibble(inst.M)<<4, nil
	case vm.OpMOVBLoadR0Idx:
		return 0x000C | n<<8 | m<<4, nil
	case vm.OpMOVWLoadR0Idx:
		return 0x000D | n<<8 | m<<4, nil
	case vm.OpMOVLLoadR0Idx:
		return 0x000E | n<<8 | m<<4, nil
	case vm.OpMACL:
		return 0x000F | n<<8 | m<<4, nil
	case vm.OpBRAF:
		return 0x0023 | n<<8, nil
	case vm.OpMOVT:
		return 0x0029 | n<<8, nil
	case vm.OpOCBI:
		return 0x0083 | n<<8, nil
	case vm.OpOCBP:
		return 0x00A3 | n<<8, nil
	case vm.OpOCBWB:
		return 0x00B3 | n<<8, nil
	case vm.OpPREF:
		return 0x0093 | n<<8, nil

	// --- group 0x2 ---
	case vm.OpMOVBStoreInd:
		return 0x2000 | n<<8 | m<<4 | 0x0, nil
	case vm.OpMOVWStoreInd:
		return 0x2000 | n<<8 | m<<4 | 0x1, nil
	case vm.OpMOVLStoreInd:
		return 0x2000 | n<<8 | m<<4 | 0x2, nil
	case vm.OpMOVBStorePreDec:
		return 0x2000 | n<<8 | m<<4 | 0x4, nil
	case vm.OpMOVWStorePreDec:
		return 0x2000 | n<<8 | m<<4 | 0x5, nil
	case vm.OpMOVLStorePreDec:
		return 0x2000 | n<<8 | m<<4 | 0x6, nil
	case vm.OpDIV0S:
		return 0x2000 | n<<8 | m<<4 | 0x7, nil
	case vm.OpTST:
		return 0x2000 | n<<8 | m<<4 | 0x8, nil
	case vm.OpAND:
		return 0x2000 | n<<8 | m<<4 | 0x9, nil
	case vm.OpXOR:
		return 0x2000 | n<<8 | m<<4 | 0xA, nil
	case vm.OpOR:
		return 0x2000 | n<<8 | m<<4 | 0xB, nil
	case vm.OpCMPSTR:
		return 0x2000 | n<<8 | m<<4 | 0xC, nil
	case vm.OpXTRCT:
		return 0x2000 | n<<8 | m<<4 | 0xD, nil
	case vm.OpMULUW:
		return 0x2000 | n<<8 | m<<4 | 0xE, nil
	case vm.OpMULSW:
		return 0x2000 | n<<8 | m<<4 | 0xF, nil

	// --- group 0x3 ---
	case vm.OpCMPEQ:
		return 0x3000 | n<<8 | m<<4 | 0x0, nil
	case vm.OpCMPHS:
		return 0x3000 | n<<8 | m<<4 | 0x2, nil
	case vm.OpCMPGE:
		return 0x3000 | n<<8 | m<<4 | 0x3, nil
	case vm.OpDIV1:
		return 0x3000 | n<<8 | m<<4 | 0x4, nil
	case vm.OpDMULU:
		return 0x3000 | n<<8 | m<<4 | 0x5, nil
	case vm.OpCMPHI:
		return 0x3000 | n<<8 | m<<4 | 0x6, nil
	case vm.OpCMPGT:
		return 0x3000 | n<<8 | m<<4 | 0x7, nil
	case vm.OpSUB:
		return 0x3000 | n<<8 | m<<4 | 0x8, nil
	case vm.OpSUBC:
		return 0x3000 | n<<8 | m<<4 | 0xA, nil
	case vm.OpSUBV:
		return 0x3000 | n<<8 | m<<4 | 0xB, nil
	case vm.OpADD:
		return 0x3000 | n<<8 | m<<4 | 0xC, nil
	case vm.OpDMULS:
		return 0x3000 | n<<8 | m<<4 | 0xD, nil
	case vm.OpADDC:
		return 0x3000 | n<<8 | m<<4 | 0xE, nil
	case vm.OpADDV:
		return 0x3000 | n<<8 | m<<4 | 0xF, nil

	// --- group 0x4: single-register shifts/rotates, STC.L/LDC/LDS families ---
	case vm.OpSHLL:
		return 0x4000 | n<<8 | 0x00, nil
	case vm.OpSHLR:
		return 0x4000 | n<<8 | 0x01, nil
	case vm.OpSTSL:
		// STS.L only has MACH/MACL/PR forms (M must be 0, 1, or 2).
		return 0x4000 | n<<8 | uint16(inst.M&0x3)<<4 | 0x2, nil
	case vm.OpSTCL:
		return 0x4000 | n<<8 | stcLowByte(inst.M, 0x3), nil
	case vm.OpROTL:
		return 0x4000 | n<<8 | 0x04, nil
	case vm.OpROTR:
		return 0x4000 | n<<8 | 0x05, nil
	case vm.OpLDSL:
		return 0x4000 | n<<8 | ldsSubNibble(inst.M)<<4 | 0x6, nil
	case vm.OpLDCL:
		return 0x4000 | n<<8 | stcLowByte(inst.M, 0x7), nil
	case vm.OpSHLL2:
		return 0x4000 | n<<8 | 0x08, nil
	case vm.OpSHLR2:
		return 0x4000 | n<<8 | 0x09, nil
	case vm.OpLDS:
		return 0x4000 | n<<8 | ldsSubNibble(inst.M)<<4 | 0xA, nil
	case vm.OpJSR:
		return 0x4000 | n<<8 | 0x0B, nil
	case vm.OpLDC:
		return 0x4000 | n<<8 | stcLowByte(inst.M, 0xE), nil
	case vm.OpDT:
		return 0x4000 | n<<8 | 0x10, nil
	case vm.OpCMPPZ:
		return 0x4000 | n<<8 | 0x11, nil
	case vm.OpCMPPL:
		return 0x4000 | n<<8 | 0x15, nil
	case vm.OpSHLL8:
		return 0x4000 | n<<8 | 0x18, nil
	case vm.OpSHLR8:
		return 0x4000 | n<<8 | 0x19, nil
	case vm.OpTASB:
		return 0x4000 | n<<8 | 0x1B, nil
	case vm.OpSHAL:
		return 0x4000 | n<<8 | 0x20, nil
	case vm.OpSHAR:
		return 0x4000 | n<<8 | 0x21, nil
	case vm.OpROTCL:
		return 0x4000 | n<<8 | 0x24, nil
	case vm.OpROTCR:
		return 0x4000 | n<<8 | 0x25, nil
	case vm.OpSHLL16:
		return 0x4000 | n<<8 | 0x28, nil
	case vm.OpSHLR16:
		return 0x4000 | n<<8 | 0x29, nil
	case vm.OpJMP:
		return 0x4000 | n<<8 | 0x2B, nil
	case vm.OpSHAD:
		return 0x4000 | n<<8 | m<<4 | 0xC, nil
	case vm.OpSHLD:
		return 0x4000 | n<<8 | m<<4 | 0xD, nil
	case vm.OpMACW:
		return 0x4000 | n<<8 | m<<4 | 0xF, nil
	case vm.OpLDCLBank:
		return 0x4000 | n<<8 | (0x8|uint16(inst.M&0x7))<<4 | 0x7, nil
	case vm.OpLDCBank:
		return 0x4000 | n<<8 | (0x8|uint16(inst.M&0x7))<<4 | 0xE, nil
	case vm.OpSTCLBank:
		return 0x4000 | n<<8 | (0x8|uint16(inst.M&0x7))<<4 | 0x3, nil

	// --- group 0x6 ---
	case vm.OpMOVBLoadInd:
		return 0x6000 | n<<8 | m<<4 | 0x0, nil
	case vm.OpMOVWLoadInd:
		return 0x6000 | n<<8 | m<<4 | 0x1, nil
	case vm.OpMOVLLoadInd:
		return 0x6000 | n<<8 | m<<4 | 0x2, nil
	case vm.OpMOV:
		return 0x6000 | n<<8 | m<<4 | 0x3, nil
	case vm.OpMOVBLoadPostInc:
		return 0x6000 | n<<8 | m<<4 | 0x4, nil
	case vm.OpMOVWLoadPostInc:
		return 0x6000 | n<<8 | m<<4 | 0x5, nil
	case vm.OpMOVLLoadPostInc:
		return 0x6000 | n<<8 | m<<4 | 0x6, nil
	case vm.OpNOT:
		return 0x6000 | n<<8 | m<<4 | 0x7, nil
	case vm.OpSWAPB:
		return 0x6000 | n<<8 | m<<4 | 0x8, nil
	case vm.OpSWAPW:
		return 0x6000 | n<<8 | m<<4 | 0x9, nil
	case vm.OpNEGC:
		return 0x6000 | n<<8 | m<<4 | 0xA, nil
	case vm.OpNEG:
		return 0x6000 | n<<8 | m<<4 | 0xB, nil
	case vm.OpEXTUB:
		return 0x6000 | n<<8 | m<<4 | 0xC, nil
	case vm.OpEXTUW:
		return 0x6000 | n<<8 | m<<4 | 0xD, nil
	case vm.OpEXTSB:
		return 0x6000 | n<<8 | m<<4 | 0xE, nil
	case vm.OpEXTSW:
		return 0x6000 | n<<8 | m<<4 | 0xF, nil

	// --- group 0x1/0x5: disp4*scale register-indexed MOV.L ---
	case vm.OpMOVLStoreDisp:
		return 0x1000 | n<<8 | m<<4 | uint16(inst.Imm/4)&0xF, nil
	case vm.OpMOVLLoadDisp:
		return 0x5000 | n<<8 | m<<4 | uint16(inst.Imm/4)&0xF, nil

	// --- group 0x7: ADD #imm,Rn ---
	case vm.OpADDImm:
		return 0x7000 | n<<8 | uint16(inst.Imm)&0xFF, nil

	// --- group 0x8: disp4 store/load, 8-bit disp branches/compare ---
	case vm.OpMOVBStoreDisp:
		return 0x8000 | 0x0<<8 | n<<4 | uint16(inst.Imm)&0xF, nil
	case vm.OpMOVWStoreDisp:
		return 0x8000 | 0x1<<8 | n<<4 | uint16(inst.Imm/2)&0xF, nil
	case vm.OpMOVBLoadDisp:
		return 0x8000 | 0x4<<8 | m<<4 | uint16(inst.Imm)&0xF, nil
	case vm.OpMOVWLoadDisp:
		return 0x8000 | 0x5<<8 | m<<4 | uint16(inst.Imm/2)&0xF, nil
	case vm.OpCMPEQImm:
		return 0x8000 | 0x8<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpBT:
		return 0x8000 | 0x9<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpBF:
		return 0x8000 | 0xB<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpBTS:
		return 0x8000 | 0xD<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpBFS:
		return 0x8000 | 0xF<<8 | uint16(inst.Imm/2)&0xFF, nil

	// --- group 0x9/0xD/0xE: PC-relative loads, MOV #imm ---
	case vm.OpMOVWPC:
		return 0x9000 | n<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpMOVLPC:
		return 0xD000 | n<<8 | uint16(inst.Imm/4)&0xFF, nil
	case vm.OpMOVImm:
		return 0xE000 | n<<8 | uint16(inst.Imm)&0xFF, nil

	// --- group 0xA/0xB: 12-bit displacement branches ---
	case vm.OpBRA:
		return 0xA000 | uint16(inst.Imm/2)&0xFFF, nil
	case vm.OpBSR:
		return 0xB000 | uint16(inst.Imm/2)&0xFFF, nil

	// --- group 0xC: GBR-relative moves, immediate logical/TRAPA ---
	case vm.OpMOVBStoreGBR:
		return 0xC000 | 0x0<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpMOVWStoreGBR:
		return 0xC000 | 0x1<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpMOVLStoreGBR:
		return 0xC000 | 0x2<<8 | uint16(inst.Imm/4)&0xFF, nil
	case vm.OpTRAPA:
		return 0xC000 | 0x3<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpMOVBLoadGBR:
		return 0xC000 | 0x4<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpMOVWLoadGBR:
		return 0xC000 | 0x5<<8 | uint16(inst.Imm/2)&0xFF, nil
	case vm.OpMOVLLoadGBR:
		return 0xC000 | 0x6<<8 | uint16(inst.Imm/4)&0xFF, nil
	case vm.OpMOVA:
		return 0xC000 | 0x7<<8 | uint16(inst.Imm/4)&0xFF, nil
	case vm.OpTSTImm:
		return 0xC000 | 0x8<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpANDImm:
		return 0xC000 | 0x9<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpXORImm:
		return 0xC000 | 0xA<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpORImm:
		return 0xC000 | 0xB<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpTSTB:
		return 0xC000 | 0xC<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpANDB:
		return 0xC000 | 0xD<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpXORB:
		return 0xC000 | 0xE<<8 | uint16(inst.Imm)&0xFF, nil
	case vm.OpORB:
		return 0xC000 | 0xF<<8 | uint16(inst.Imm)&0xFF, nil

	// --- group 0xF: FPU ---
	case vm.OpFADD:
		return 0xF000 | n<<8 | m<<4 | 0x0, nil
	case vm.OpFSUB:
		return 0xF000 | n<<8 | m<<4 | 0x1, nil
	case vm.OpFMUL:
		return 0xF000 | n<<8 | m<<4 | 0x2, nil
	case vm.OpFDIV:
		return 0xF000 | n<<8 | m<<4 | 0x3, nil
	case vm.OpFCMPEQ:
		return 0xF000 | n<<8 | m<<4 | 0x4, nil
	case vm.OpFCMPGT:
		return 0xF000 | n<<8 | m<<4 | 0x5, nil
	case vm.OpFMOVSLoadIdx:
		return 0xF000 | n<<8 | m<<4 | 0x6, nil
	case vm.OpFMOVSStoreIdx:
		return 0xF000 | n<<8 | m<<4 | 0x7, nil
	case vm.OpFMOVSLoad:
		return 0xF000 | n<<8 | m<<4 | 0x8, nil
	case vm.OpFMOVSLoadInc:
		return 0xF000 | n<<8 | m<<4 | 0x9, nil
	case vm.OpFMOVSStore:
		return 0xF000 | n<<8 | m<<4 | 0xA, nil
	case vm.OpFMOVSStoreDec:
		return 0xF000 | n<<8 | m<<4 | 0xB, nil
	case vm.OpFMOV:
		return 0xF000 | n<<8 | m<<4 | 0xC, nil
	case vm.OpFMAC:
		return 0xF000 | n<<8 | m<<4 | 0xE, nil
	case vm.OpFSTS:
		return 0xF000 | n<<8 | 0x0<<4 | 0xD, nil
	case vm.OpFLDS:
		return 0xF000 | n<<8 | 0x1<<4 | 0xD, nil
	case vm.OpFLOAT:
		return 0xF000 | n<<8 | 0x2<<4 | 0xD, nil
	case vm.OpFTRC:
		return 0xF000 | n<<8 | 0x3<<4 | 0xD, nil
	case vm.OpFNEG:
		return 0xF000 | n<<8 | 0x4<<4 | 0xD, nil
	case vm.OpFABS:
		return 0xF000 | n<<8 | 0x5<<4 | 0xD, nil
	case vm.OpFSQRT:
		return 0xF000 | n<<8 | 0x6<<4 | 0xD, nil
	case vm.OpFSRRA:
		return 0xF000 | n<<8 | 0x7<<4 | 0xD, nil
	case vm.OpFLDI0:
		return 0xF000 | n<<8 | 0x8<<4 | 0xD, nil
	case vm.OpFLDI1:
		return 0xF000 | n<<8 | 0x9<<4 | 0xD, nil
	case vm.OpFCNVSD:
		return 0xF000 | n<<8 | 0xA<<4 | 0xD, nil
	case vm.OpFCNVDS:
		return 0xF000 | n<<8 | 0xB<<4 | 0xD, nil
	case vm.OpMOVCAL:
		return 0xF000 | n<<8 | 0xC<<4 | 0xD, nil
	case vm.OpFIPR:
		// decode.go's FIPR form folds its second vector operand into the
		// same nibble that also marks the FIPR sub-opcode (0xE); only one
		// vector pairing round-trips through this form.
		return 0xF000 | n<<8 | 0xE<<4 | 0xD, nil
	case vm.OpFTRV:
		return 0xF000 | n<<8 | 0xF<<4 | 0xD, nil

	default:
		return 0, &UnrecognizedPatternError{Mnemonic: fmt.Sprintf("op#%d", int(inst.Op))}
	}
}

// stsSubNibble inverts decode.go's STS/STS.L m-field switch: MACH=0,
// MACL=1, PR=2 map to themselves; FPUL=3 maps to nibble 5; FPSCR=4 maps to
// nibble 6 (any value outside {0,1,2,5} decodes as FPSCR, so 6 round-trips).
func stsSubNibble(reg int) uint16 {
	switch reg {
	case 0, 1, 2:
		return uint16(reg)
	case 3:
		return 5
	default:
		return 6
	}
}

// ldsSubNibble inverts ldsIndex: MACH=0 -> 0x0, MACL=1 -> 0x1, PR=2 -> 0x2,
// FPUL=3 -> 0x5, FPSCR=4 -> 0x6.
func ldsSubNibble(reg int) uint16 {
	switch reg {
	case 0, 1, 2:
		return uint16(reg)
	case 3:
		return 5
	default:
		return 6
	}
}

// stcLowByte builds the low byte for the STC.L/LDC/LDC.L control-register
// families: SR=0,GBR=1,VBR=2,SSR=3,SPC=4,SGR=5 sit at reg<<4|low4; DBR=6 is
// the odd one out, encoded as 0xF<<4|low4 (mirroring decode.go's 0xF3/0xF7/
// 0xFE special cases).
func stcLowByte(reg int, low4 uint16) uint16 {
	if reg == 6 {
		return 0xF0 | low4
	}
	return uint16(reg)<<4 | low4
}
