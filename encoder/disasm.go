package encoder

import (
	"fmt"

	"github.com/sh4emu/sh4-emulator/vm"
)

// Disassemble renders a decoded vm.Instruction back into SH-4 assembly
// text. It is the disassembler half of the encoder/decoder symmetry
// EncodeOp documents: for any non-branch instruction EncodeOp can
// produce, re-Assemble-ing Disassemble's output reproduces the same
// vm.Instruction. Branch forms do not round-trip: Disassemble prints
// their PC+4-relative Imm as a bare number, which branchDisp reads back
// as an absolute target. The debugger's command line and the trace log both
// format addresses through this so a user single-stepping sees the same
// mnemonics they would have typed.
func Disassemble(inst vm.Instruction) string {
	n, m := inst.N, inst.M

	switch inst.Op {
	case vm.OpCLRT:
		return "CLRT"
	case vm.OpNOP:
		return "NOP"
	case vm.OpRTS:
		return "RTS"
	case vm.OpSETT:
		return "SETT"
	case vm.OpDIV0U:
		return "DIV0U"
	case vm.OpSLEEP:
		return "SLEEP"
	case vm.OpCLRMAC:
		return "CLRMAC"
	case vm.OpRTE:
		return "RTE"
	case vm.OpCLRS:
		return "CLRS"
	case vm.OpSETS:
		return "SETS"
	case vm.OpFRCHG:
		return "FRCHG"
	case vm.OpFSCHG:
		return "FSCHG"
	case vm.OpLDTLB:
		return "LDTLB"

	case vm.OpSTC:
		return fmt.Sprintf("STC %s,%s", ctrlReg(m), r(n))
	case vm.OpSTCBank:
		return fmt.Sprintf("STC %s,%s", bankReg(m), r(n))
	case vm.OpSTCL:
		return fmt.Sprintf("STC.L %s,@-%s", ctrlReg(m), r(n))
	case vm.OpSTCLBank:
		return fmt.Sprintf("STC.L %s,@-%s", bankReg(m), r(n))
	case vm.OpLDC:
		return fmt.Sprintf("LDC %s,%s", r(n), ctrlReg(m))
	case vm.OpLDCBank:
		return fmt.Sprintf("LDC %s,%s", r(n), bankReg(m))
	case vm.OpLDCL:
		return fmt.Sprintf("LDC.L @%s+,%s", r(n), ctrlReg(m))
	case vm.OpLDCLBank:
		return fmt.Sprintf("LDC.L @%s+,%s", r(n), bankReg(m))
	case vm.OpSTS:
		return fmt.Sprintf("STS %s,%s", specialReg(m), r(n))
	case vm.OpSTSL:
		return fmt.Sprintf("STS.L %s,@-%s", specialReg(m), r(n))
	case vm.OpLDS:
		return fmt.Sprintf("LDS %s,%s", r(n), specialReg(m))
	case vm.OpLDSL:
		return fmt.Sprintf("LDS.L @%s+,%s", r(n), specialReg(m))

	case vm.OpBSRF:
		return fmt.Sprintf("BSRF %s", r(n))
	case vm.OpBRAF:
		return fmt.Sprintf("BRAF %s", r(n))
	case vm.OpMOVT:
		return fmt.Sprintf("MOVT %s", r(n))
	case vm.OpOCBI:
		return fmt.Sprintf("OCBI @%s", r(n))
	case vm.OpOCBP:
		return fmt.Sprintf("OCBP @%s", r(n))
	case vm.OpOCBWB:
		return fmt.Sprintf("OCBWB @%s", r(n))
	case vm.OpPREF:
		return fmt.Sprintf("PREF @%s", r(n))
	case vm.OpMOVCAL:
		return fmt.Sprintf("MOVCA.L R0,@%s", r(n))

	case vm.OpMOVBStoreR0Idx:
		return fmt.Sprintf("MOV.B %s,@(R0,%s)", r(m), r(n))
	case vm.OpMOVWStoreR0Idx:
		return fmt.Sprintf("MOV.W %s,@(R0,%s)", r(m), r(n))
	case vm.OpMOVLStoreR0Idx:
		return fmt.Sprintf("MOV.L %s,@(R0,%s)", r(m), r(n))
	case vm.OpMOVBLoadR0Idx:
		return fmt.Sprintf("MOV.B @(R0,%s),%s", r(m), r(n))
	case vm.OpMOVWLoadR0Idx:
		return fmt.Sprintf("MOV.W @(R0,%s),%s", r(m), r(n))
	case vm.OpMOVLLoadR0Idx:
		return fmt.Sprintf("MOV.L @(R0,%s),%s", r(m), r(n))
	case vm.OpMULL:
		return fmt.Sprintf("MUL.L %s,%s", r(m), r(n))
	case vm.OpMACL:
		return fmt.Sprintf("MAC.L @%s+,@%s+", r(m), r(n))
	case vm.OpMACW:
		return fmt.Sprintf("MAC.W @%s+,@%s+", r(m), r(n))

	case vm.OpMOVBStoreInd:
		return fmt.Sprintf("MOV.B %s,@%s", r(m), r(n))
	case vm.OpMOVWStoreInd:
		return fmt.Sprintf("MOV.W %s,@%s", r(m), r(n))
	case vm.OpMOVLStoreInd:
		return fmt.Sprintf("MOV.L %s,@%s", r(m), r(n))
	case vm.OpMOVBLoadInd:
		return fmt.Sprintf("MOV.B @%s,%s", r(m), r(n))
	case vm.OpMOVWLoadInd:
		return fmt.Sprintf("MOV.W @%s,%s", r(m), r(n))
	case vm.OpMOVLLoadInd:
		return fmt.Sprintf("MOV.L @%s,%s", r(m), r(n))
	case vm.OpMOVBStorePreDec:
		return fmt.Sprintf("MOV.B %s,@-%s", r(m), r(n))
	case vm.OpMOVWStorePreDec:
		return fmt.Sprintf("MOV.W %s,@-%s", r(m), r(n))
	case vm.OpMOVLStorePreDec:
		return fmt.Sprintf("MOV.L %s,@-%s", r(m), r(n))
	case vm.OpMOVBLoadPostInc:
		return fmt.Sprintf("MOV.B @%s+,%s", r(m), r(n))
	case vm.OpMOVWLoadPostInc:
		return fmt.Sprintf("MOV.W @%s+,%s", r(m), r(n))
	case vm.OpMOVLLoadPostInc:
		return fmt.Sprintf("MOV.L @%s+,%s", r(m), r(n))
	case vm.OpMOV:
		return fmt.Sprintf("MOV %s,%s", r(m), r(n))

	case vm.OpMOVBStoreDisp:
		return fmt.Sprintf("MOV.B R0,@(%d,%s)", inst.Imm, r(n))
	case vm.OpMOVWStoreDisp:
		return fmt.Sprintf("MOV.W R0,@(%d,%s)", inst.Imm, r(n))
	case vm.OpMOVBLoadDisp:
		return fmt.Sprintf("MOV.B @(%d,%s),R0", inst.Imm, r(m))
	case vm.OpMOVWLoadDisp:
		return fmt.Sprintf("MOV.W @(%d,%s),R0", inst.Imm, r(m))
	case vm.OpMOVLStoreDisp:
		return fmt.Sprintf("MOV.L %s,@(%d,%s)", r(m), inst.Imm, r(n))
	case vm.OpMOVLLoadDisp:
		return fmt.Sprintf("MOV.L @(%d,%s),%s", inst.Imm, r(m), r(n))

	case vm.OpMOVBStoreGBR:
		return fmt.Sprintf("MOV.B R0,@(%d,GBR)", inst.Imm)
	case vm.OpMOVWStoreGBR:
		return fmt.Sprintf("MOV.W R0,@(%d,GBR)", inst.Imm)
	case vm.OpMOVLStoreGBR:
		return fmt.Sprintf("MOV.L R0,@(%d,GBR)", inst.Imm)
	case vm.OpMOVBLoadGBR:
		return fmt.Sprintf("MOV.B @(%d,GBR),R0", inst.Imm)
	case vm.OpMOVWLoadGBR:
		return fmt.Sprintf("MOV.W @(%d,GBR),R0", inst.Imm)
	case vm.OpMOVLLoadGBR:
		return fmt.Sprintf("MOV.L @(%d,GBR),R0", inst.Imm)
	case vm.OpMOVA:
		return fmt.Sprintf("MOVA @(%d,PC),R0", inst.Imm)

	case vm.OpMOVWPC:
		return fmt.Sprintf("MOV.W @(%d,PC),%s", inst.Imm, r(n))
	case vm.OpMOVLPC:
		return fmt.Sprintf("MOV.L @(%d,PC),%s", inst.Imm, r(n))
	case vm.OpMOVImm:
		return fmt.Sprintf("MOV #%d,%s", inst.Imm, r(n))

	case vm.OpADDImm:
		return fmt.Sprintf("ADD #%d,%s", inst.Imm, r(n))
	case vm.OpCMPEQImm:
		return fmt.Sprintf("CMP/EQ #%d,R0", inst.Imm)
	case vm.OpTSTImm:
		return fmt.Sprintf("TST #%d,R0", inst.Imm)
	case vm.OpANDImm:
		return fmt.Sprintf("AND #%d,R0", inst.Imm)
	case vm.OpXORImm:
		return fmt.Sprintf("XOR #%d,R0", inst.Imm)
	case vm.OpORImm:
		return fmt.Sprintf("OR #%d,R0", inst.Imm)
	case vm.OpTSTB:
		return fmt.Sprintf("TST.B #%d,@(R0,GBR)", inst.Imm)
	case vm.OpANDB:
		return fmt.Sprintf("AND.B #%d,@(R0,GBR)", inst.Imm)
	case vm.OpXORB:
		return fmt.Sprintf("XOR.B #%d,@(R0,GBR)", inst.Imm)
	case vm.OpORB:
		return fmt.Sprintf("OR.B #%d,@(R0,GBR)", inst.Imm)
	case vm.OpTRAPA:
		return fmt.Sprintf("TRAPA #%d", inst.Imm)

	case vm.OpBT:
		return fmt.Sprintf("BT %d", inst.Imm)
	case vm.OpBF:
		return fmt.Sprintf("BF %d", inst.Imm)
	case vm.OpBTS:
		return fmt.Sprintf("BT/S %d", inst.Imm)
	case vm.OpBFS:
		return fmt.Sprintf("BF/S %d", inst.Imm)
	case vm.OpBRA:
		return fmt.Sprintf("BRA %d", inst.Imm)
	case vm.OpBSR:
		return fmt.Sprintf("BSR %d", inst.Imm)
	case vm.OpJMP:
		return fmt.Sprintf("JMP @%s", r(n))
	case vm.OpJSR:
		return fmt.Sprintf("JSR @%s", r(n))

	case vm.OpTST:
		return fmt.Sprintf("TST %s,%s", r(m), r(n))
	case vm.OpAND:
		return fmt.Sprintf("AND %s,%s", r(m), r(n))
	case vm.OpOR:
		return fmt.Sprintf("OR %s,%s", r(m), r(n))
	case vm.OpXOR:
		return fmt.Sprintf("XOR %s,%s", r(m), r(n))
	case vm.OpCMPSTR:
		return fmt.Sprintf("CMP/STR %s,%s", r(m), r(n))
	case vm.OpXTRCT:
		return fmt.Sprintf("XTRCT %s,%s", r(m), r(n))
	case vm.OpMULUW:
		return fmt.Sprintf("MULU.W %s,%s", r(m), r(n))
	case vm.OpMULSW:
		return fmt.Sprintf("MULS.W %s,%s", r(m), r(n))
	case vm.OpDIV0S:
		return fmt.Sprintf("DIV0S %s,%s", r(m), r(n))

	case vm.OpCMPEQ:
		return fmt.Sprintf("CMP/EQ %s,%s", r(m), r(n))
	case vm.OpCMPHS:
		return fmt.Sprintf("CMP/HS %s,%s", r(m), r(n))
	case vm.OpCMPGE:
		return fmt.Sprintf("CMP/GE %s,%s", r(m), r(n))
	case vm.OpDIV1:
		return fmt.Sprintf("DIV1 %s,%s", r(m), r(n))
	case vm.OpDMULU:
		return fmt.Sprintf("DMULU.L %s,%s", r(m), r(n))
	case vm.OpCMPHI:
		return fmt.Sprintf("CMP/HI %s,%s", r(m), r(n))
	case vm.OpCMPGT:
		return fmt.Sprintf("CMP/GT %s,%s", r(m), r(n))
	case vm.OpSUB:
		return fmt.Sprintf("SUB %s,%s", r(m), r(n))
	case vm.OpSUBC:
		return fmt.Sprintf("SUBC %s,%s", r(m), r(n))
	case vm.OpSUBV:
		return fmt.Sprintf("SUBV %s,%s", r(m), r(n))
	case vm.OpADD:
		return fmt.Sprintf("ADD %s,%s", r(m), r(n))
	case vm.OpDMULS:
		return fmt.Sprintf("DMULS.L %s,%s", r(m), r(n))
	case vm.OpADDC:
		return fmt.Sprintf("ADDC %s,%s", r(m), r(n))
	case vm.OpADDV:
		return fmt.Sprintf("ADDV %s,%s", r(m), r(n))

	case vm.OpSHLL:
		return fmt.Sprintf("SHLL %s", r(n))
	case vm.OpSHLR:
		return fmt.Sprintf("SHLR %s", r(n))
	case vm.OpROTL:
		return fmt.Sprintf("ROTL %s", r(n))
	case vm.OpROTR:
		return fmt.Sprintf("ROTR %s", r(n))
	case vm.OpSHLL2:
		return fmt.Sprintf("SHLL2 %s", r(n))
	case vm.OpSHLR2:
		return fmt.Sprintf("SHLR2 %s", r(n))
	case vm.OpSHLL8:
		return fmt.Sprintf("SHLL8 %s", r(n))
	case vm.OpSHLR8:
		return fmt.Sprintf("SHLR8 %s", r(n))
	case vm.OpSHLL16:
		return fmt.Sprintf("SHLL16 %s", r(n))
	case vm.OpSHLR16:
		return fmt.Sprintf("SHLR16 %s", r(n))
	case vm.OpSHAL:
		return fmt.Sprintf("SHAL %s", r(n))
	case vm.OpSHAR:
		return fmt.Sprintf("SHAR %s", r(n))
	case vm.OpROTCL:
		return fmt.Sprintf("ROTCL %s", r(n))
	case vm.OpROTCR:
		return fmt.Sprintf("ROTCR %s", r(n))
	case vm.OpSHAD:
		return fmt.Sprintf("SHAD %s,%s", r(m), r(n))
	case vm.OpSHLD:
		return fmt.Sprintf("SHLD %s,%s", r(m), r(n))
	case vm.OpDT:
		return fmt.Sprintf("DT %s", r(n))
	case vm.OpCMPPZ:
		return fmt.Sprintf("CMP/PZ %s", r(n))
	case vm.OpCMPPL:
		return fmt.Sprintf("CMP/PL %s", r(n))
	case vm.OpTASB:
		return fmt.Sprintf("TAS.B %s", r(n))

	case vm.OpNOT:
		return fmt.Sprintf("NOT %s,%s", r(m), r(n))
	case vm.OpSWAPB:
		return fmt.Sprintf("SWAP.B %s,%s", r(m), r(n))
	case vm.OpSWAPW:
		return fmt.Sprintf("SWAP.W %s,%s", r(m), r(n))
	case vm.OpNEGC:
		return fmt.Sprintf("NEGC %s,%s", r(m), r(n))
	case vm.OpNEG:
		return fmt.Sprintf("NEG %s,%s", r(m), r(n))
	case vm.OpEXTUB:
		return fmt.Sprintf("EXTU.B %s,%s", r(m), r(n))
	case vm.OpEXTUW:
		return fmt.Sprintf("EXTU.W %s,%s", r(m), r(n))
	case vm.OpEXTSB:
		return fmt.Sprintf("EXTS.B %s,%s", r(m), r(n))
	case vm.OpEXTSW:
		return fmt.Sprintf("EXTS.W %s,%s", r(m), r(n))

	// --- FPU ---
	case vm.OpFADD:
		return fmt.Sprintf("FADD %s,%s", fr(m), fr(n))
	case vm.OpFSUB:
		return fmt.Sprintf("FSUB %s,%s", fr(m), fr(n))
	case vm.OpFMUL:
		return fmt.Sprintf("FMUL %s,%s", fr(m), fr(n))
	case vm.OpFDIV:
		return fmt.Sprintf("FDIV %s,%s", fr(m), fr(n))
	case vm.OpFCMPEQ:
		return fmt.Sprintf("FCMP/EQ %s,%s", fr(m), fr(n))
	case vm.OpFCMPGT:
		return fmt.Sprintf("FCMP/GT %s,%s", fr(m), fr(n))
	case vm.OpFMOVSLoadIdx:
		return fmt.Sprintf("FMOV.S @(R0,%s),%s", r(m), fr(n))
	case vm.OpFMOVSStoreIdx:
		return fmt.Sprintf("FMOV.S %s,@(R0,%s)", fr(m), r(n))
	case vm.OpFMOVSLoad:
		return fmt.Sprintf("FMOV.S @%s,%s", r(m), fr(n))
	case vm.OpFMOVSLoadInc:
		return fmt.Sprintf("FMOV.S @%s+,%s", r(m), fr(n))
	case vm.OpFMOVSStore:
		return fmt.Sprintf("FMOV.S %s,@%s", fr(m), r(n))
	case vm.OpFMOVSStoreDec:
		return fmt.Sprintf("FMOV.S %s,@-%s", fr(m), r(n))
	case vm.OpFMOV:
		return fmt.Sprintf("FMOV %s,%s", fr(m), fr(n))
	case vm.OpFMAC:
		return fmt.Sprintf("FMAC FR0,%s,%s", fr(m), fr(n))
	case vm.OpFSTS:
		return fmt.Sprintf("FSTS FPUL,%s", fr(n))
	case vm.OpFLDS:
		return fmt.Sprintf("FLDS %s,FPUL", fr(n))
	case vm.OpFLOAT:
		return fmt.Sprintf("FLOAT FPUL,%s", fr(n))
	case vm.OpFTRC:
		return fmt.Sprintf("FTRC %s,FPUL", fr(n))
	case vm.OpFNEG:
		return fmt.Sprintf("FNEG %s", fr(n))
	case vm.OpFABS:
		return fmt.Sprintf("FABS %s", fr(n))
	case vm.OpFSQRT:
		return fmt.Sprintf("FSQRT %s", fr(n))
	case vm.OpFSRRA:
		return fmt.Sprintf("FSRRA %s", fr(n))
	case vm.OpFLDI0:
		return fmt.Sprintf("FLDI0 %s", fr(n))
	case vm.OpFLDI1:
		return fmt.Sprintf("FLDI1 %s", fr(n))
	case vm.OpFCNVSD:
		return fmt.Sprintf("FCNVSD FPUL,%s", dr(n))
	case vm.OpFCNVDS:
		return fmt.Sprintf("FCNVDS %s,FPUL", dr(n))
	case vm.OpFIPR:
		// M always decodes to 14 (see bitcodec.go's OpFIPR comment), so the
		// second vector operand is never anything but FV12 here.
		return fmt.Sprintf("FIPR %s,%s", fv(n), fv(3))
	case vm.OpFTRV:
		return fmt.Sprintf("FTRV XMTRX,%s", fv(n))

	default:
		return fmt.Sprintf("<unknown op#%d>", int(inst.Op))
	}
}

func r(n int) string  { return fmt.Sprintf("R%d", n) }
func fr(n int) string { return fmt.Sprintf("FR%d", n) }
func dr(n int) string { return fmt.Sprintf("DR%d", n*2) }
func xd(n int) string { return fmt.Sprintf("XD%d", n*2) }
func fv(n int) string { return fmt.Sprintf("FV%d", n*4) }

func ctrlReg(idx int) string {
	switch idx {
	case 0:
		return "SR"
	case 1:
		return "GBR"
	case 2:
		return "VBR"
	case 3:
		return "SSR"
	case 4:
		return "SPC"
	case 5:
		return "SGR"
	case 6:
		return "DBR"
	default:
		return fmt.Sprintf("CR%d", idx)
	}
}

func specialReg(idx int) string {
	switch idx {
	case 0:
		return "MACH"
	case 1:
		return "MACL"
	case 2:
		return "PR"
	case 3:
		return "FPUL"
	case 4:
		return "FPSCR"
	default:
		return fmt.Sprintf("SP%d", idx)
	}
}

func bankReg(idx int) string {
	return fmt.Sprintf("R%d_BANK", idx)
}
