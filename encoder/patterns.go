package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sh4emu/sh4-emulator/parser"
	"github.com/sh4emu/sh4-emulator/vm"
)

// memForm tags the addressing-mode shape an operand string parsed into.
// Each SH-4 mnemonic accepts only a handful of these per position, mirroring
// the way vm/decode.go's groups each correspond to exactly one shape.
type memForm int

const (
	formReg memForm = iota
	formImm
	formPoolLiteral
	formIndirect    // @Rn
	formPreDec      // @-Rn
	formPostInc     // @Rn+
	formDispReg     // @(disp,Rn)
	formR0Idx       // @(R0,Rn)
	formDispGBR     // @(disp,GBR)
	formDispPC      // @(disp,PC)
	formLabel       // bare symbol, used by branch targets
)

type operand struct {
	form memForm
	reg  int    // resolved register index, meaning depends on the mnemonic's register file
	text string // raw trimmed token text, set for formReg operands (distinguishes Rn_BANK from a plain control-register name)
	expr string // raw text for values still needing evaluateExpression
}

// parseOperand classifies one of parser.Instruction's raw operand strings.
// The parser layer (parser/parser.go) only tokenizes the addressing syntax
// into these textual shapes; resolving register numbers and immediate
// values is the encoder's job, keeping syntax and semantics separate.
func (e *Encoder) parseOperand(raw string) (operand, error) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "#"):
		return operand{form: formImm, expr: s[1:]}, nil
	case strings.HasPrefix(s, "="):
		return operand{form: formPoolLiteral, expr: s[1:]}, nil
	case strings.HasPrefix(s, "@-"):
		reg, err := e.parseRegNum(s[2:])
		if err != nil {
			return operand{}, err
		}
		return operand{form: formPreDec, reg: reg}, nil
	case strings.HasPrefix(s, "@(") && strings.HasSuffix(s, ")"):
		inner := s[2 : len(s)-1]
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return operand{}, fmt.Errorf("malformed displacement operand: %s", s)
		}
		base := strings.TrimSpace(parts[1])
		disp := strings.TrimSpace(parts[0])
		switch strings.ToUpper(base) {
		case "GBR":
			return operand{form: formDispGBR, expr: disp}, nil
		case "PC":
			return operand{form: formDispPC, expr: disp}, nil
		default:
			if strings.ToUpper(disp) == "R0" {
				reg, err := e.parseRegNum(base)
				if err != nil {
					return operand{}, err
				}
				return operand{form: formR0Idx, reg: reg}, nil
			}
			reg, err := e.parseRegNum(base)
			if err != nil {
				return operand{}, err
			}
			return operand{form: formDispReg, reg: reg, expr: disp}, nil
		}
	case strings.HasSuffix(s, "+") && strings.HasPrefix(s, "@"):
		reg, err := e.parseRegNum(s[1 : len(s)-1])
		if err != nil {
			return operand{}, err
		}
		return operand{form: formPostInc, reg: reg}, nil
	case strings.HasPrefix(s, "@"):
		reg, err := e.parseRegNum(s[1:])
		if err != nil {
			return operand{}, err
		}
		return operand{form: formIndirect, reg: reg}, nil
	}

	if reg, err := e.parseRegNum(s); err == nil {
		return operand{form: formReg, reg: reg, text: strings.ToUpper(s)}, nil
	}
	return operand{form: formLabel, expr: s}, nil
}

// isBankedReg reports whether a formReg operand's raw text named a Rn_BANK
// register rather than a plain control/special register.
func isBankedReg(o operand) bool {
	return strings.HasSuffix(o.text, "_BANK")
}

// parseRegNum resolves any bare register token (Rn, FRn, DRn, XDn, FVn, a
// control register name, or a _BANK register) to the integer the
// instruction's N/M field should carry. Double-precision and vector
// register names are range-checked against the RegisterIndexError
// rule (DR/XD even and < 16, FV a multiple of 4 and < 16) and translated
// into the pair/vector-base index vm/fpu.go's accessors expect.
func (e *Encoder) parseRegNum(tok string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(tok))

	if strings.HasSuffix(s, "_BANK") {
		n, err := numberedSuffix(s[:len(s)-len("_BANK")], "R")
		if err != nil {
			return 0, err
		}
		if n >= 8 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n, nil
	}

	switch s {
	case "SR":
		return 0, nil
	case "GBR":
		return 1, nil
	case "VBR":
		return 2, nil
	case "SSR":
		return 3, nil
	case "SPC":
		return 4, nil
	case "SGR":
		return 5, nil
	case "DBR":
		return 6, nil
	case "MACH":
		return 0, nil
	case "MACL":
		return 1, nil
	case "PR":
		return 2, nil
	case "FPUL":
		return 3, nil
	case "FPSCR":
		return 4, nil
	}

	if n, err := numberedSuffix(s, "R"); err == nil {
		if n > 15 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n, nil
	}
	if n, err := numberedSuffix(s, "FR"); err == nil {
		if n > 15 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n, nil
	}
	if n, err := numberedSuffix(s, "DR"); err == nil {
		if n > 14 || n%2 != 0 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n / 2, nil
	}
	if n, err := numberedSuffix(s, "XD"); err == nil {
		if n > 14 || n%2 != 0 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n / 2, nil
	}
	if n, err := numberedSuffix(s, "FV"); err == nil {
		if n > 12 || n%4 != 0 {
			return 0, &RegisterIndexError{Name: tok}
		}
		return n / 4, nil
	}

	return 0, fmt.Errorf("not a register: %s", tok)
}

func numberedSuffix(s, prefix string) (int, error) {
	if len(s) <= len(prefix) || !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("no %s prefix", prefix)
	}
	return strconv.Atoi(s[len(prefix):])
}

// resolveImm evaluates an immediate or displacement operand's expression
// text, preferring symbol lookup the same way evaluateExpression does.
func (e *Encoder) resolveImm(expr string) (int32, error) {
	v, err := e.evaluateExpression(expr)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// addPoolLiteral schedules value for emission in the nearest literal pool
// and returns the PC-relative displacement a MOV.W/MOV.L @(disp,PC) form
// should use, deduplicating by value so repeated constants share a slot.
func (e *Encoder) addPoolLiteral(addr uint32, value uint32) int32 {
	for existing, v := range e.pendingLiterals {
		if v == value {
			return int32(existing) - int32(addr)
		}
	}
	poolAddr := e.LiteralPoolStart
	for {
		if _, taken := e.LiteralPool[poolAddr]; !taken {
			break
		}
		poolAddr += 4
	}
	e.LiteralPool[poolAddr] = value
	e.pendingLiterals[poolAddr] = value
	return int32(poolAddr) - int32(addr)
}

// Assemble parses a mnemonic and its raw operand strings into a
// vm.Instruction, resolving registers, immediates, and PC-relative
// displacements against the instruction's own address. It is the single
// source of truth the encoder's EncodeInstruction and the disassembler's
// round-trip tests both exercise.
func (e *Encoder) Assemble(mnemonic string, rawOperands []string, addr uint32) (vm.Instruction, error) {
	mnemonic = strings.ToUpper(mnemonic)
	ops := make([]operand, len(rawOperands))
	for i, raw := range rawOperands {
		o, err := e.parseOperand(raw)
		if err != nil {
			return vm.Instruction{}, err
		}
		ops[i] = o
	}

	build, ok := patternTable[mnemonic]
	if !ok {
		return vm.Instruction{}, &UnrecognizedPatternError{Mnemonic: mnemonic, Operands: rawOperands}
	}
	inst, err := build(e, ops, addr)
	if err != nil {
		return vm.Instruction{}, err
	}
	return inst, nil
}

type buildFunc func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error)

// two builds the common Rm,Rn dispatch used by most arithmetic/logical
// two-register forms (source,dest per SH-4's operand order).
func two(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected 2 operands, got %d", len(ops))
		}
		return vm.Instruction{Op: op, M: ops[0].reg, N: ops[1].reg}, nil
	}
}

// oneReg builds the single-register Rn forms (shifts, DT, TAS.B, JSR, ...).
func oneReg(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 1 {
			return vm.Instruction{}, fmt.Errorf("expected 1 operand, got %d", len(ops))
		}
		return vm.Instruction{Op: op, N: ops[0].reg}, nil
	}
}

// zero builds the no-operand forms.
func zero(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		return vm.Instruction{Op: op}, nil
	}
}

// immToR0 builds "OP #imm,R0" forms (TST/AND/OR/XOR immediate, CMP/EQ
// immediate).
func immToR0(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formImm {
			return vm.Instruction{}, fmt.Errorf("expected #imm,R0")
		}
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: op, Imm: v}, nil
	}
}

// immToR0GBR builds the ".B #imm,@(R0,GBR)" byte-memory immediate forms.
func immToR0GBR(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formImm {
			return vm.Instruction{}, fmt.Errorf("expected #imm,@(R0,GBR)")
		}
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: op, Imm: v}, nil
	}
}

func immReg(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formImm {
			return vm.Instruction{}, fmt.Errorf("expected #imm,Rn")
		}
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: op, N: ops[1].reg, Imm: v}, nil
	}
}

// branchDisp builds PC-relative branch forms (BT/BF/BT S/BF S/BRA/BSR),
// whose displacement is relative to PC+4 per the delayed-branch
// convention.
func branchDisp(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 1 {
			return vm.Instruction{}, fmt.Errorf("expected a branch target")
		}
		target, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: op, Imm: target - int32(addr) - 4}, nil
	}
}

// patternTable is the single source of truth mapping an uppercased
// mnemonic to the closure that turns its parsed operands into a
// vm.Instruction. Mnemonics that accept more than one addressing form
// (every MOV.{B,W,L} variant) dispatch on the parsed operand shapes
// themselves rather than being listed once per form.
var patternTable = map[string]buildFunc{
	// --- moves: register/immediate ---
	"MOV":   movDispatch("MOV"),
	"MOV.B": movDispatch("MOV.B"),
	"MOV.W": movDispatch("MOV.W"),
	"MOV.L": movDispatch("MOV.L"),
	"MOVA": func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formDispPC {
			return vm.Instruction{}, fmt.Errorf("expected @(disp,PC),R0")
		}
		d, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: vm.OpMOVA, Imm: d}, nil
	},
	"MOVT":  oneReg(vm.OpMOVT),
	"SWAP.B": two(vm.OpSWAPB),
	"SWAP.W": two(vm.OpSWAPW),
	"XTRCT":  two(vm.OpXTRCT),

	// --- arithmetic ---
	"ADD":     addDispatch,
	"ADDC":    two(vm.OpADDC),
	"ADDV":    two(vm.OpADDV),
	"SUB":     two(vm.OpSUB),
	"SUBC":    two(vm.OpSUBC),
	"SUBV":    two(vm.OpSUBV),
	"NEG":     two(vm.OpNEG),
	"NEGC":    two(vm.OpNEGC),
	"DIV0U":   zero(vm.OpDIV0U),
	"DIV0S":   two(vm.OpDIV0S),
	"DIV1":    two(vm.OpDIV1),
	"DMULS.L": two(vm.OpDMULS),
	"DMULU.L": two(vm.OpDMULU),
	"DT":      oneReg(vm.OpDT),
	"EXTS.B":  two(vm.OpEXTSB),
	"EXTS.W":  two(vm.OpEXTSW),
	"EXTU.B":  two(vm.OpEXTUB),
	"EXTU.W":  two(vm.OpEXTUW),
	"MAC.L":   twoPostInc(vm.OpMACL),
	"MAC.W":   twoPostInc(vm.OpMACW),
	"MUL.L":   two(vm.OpMULL),
	"MULS.W":  two(vm.OpMULSW),
	"MULU.W":  two(vm.OpMULUW),

	"CMP/EQ":  cmpDispatch,
	"CMP/HS":  two(vm.OpCMPHS),
	"CMP/GE":  two(vm.OpCMPGE),
	"CMP/HI":  two(vm.OpCMPHI),
	"CMP/GT":  two(vm.OpCMPGT),
	"CMP/PZ":  oneReg(vm.OpCMPPZ),
	"CMP/PL":  oneReg(vm.OpCMPPL),
	"CMP/STR": two(vm.OpCMPSTR),

	// --- logical ---
	"AND": r0ImmOrReg(vm.OpAND, vm.OpANDImm),
	"OR":  r0ImmOrReg(vm.OpOR, vm.OpORImm),
	"XOR": r0ImmOrReg(vm.OpXOR, vm.OpXORImm),
	"TST": r0ImmOrReg(vm.OpTST, vm.OpTSTImm),
	"AND.B": immToR0GBR(vm.OpANDB),
	"OR.B":  immToR0GBR(vm.OpORB),
	"XOR.B": immToR0GBR(vm.OpXORB),
	"TST.B": immToR0GBR(vm.OpTSTB),
	"NOT":   two(vm.OpNOT),
	"TAS.B": oneReg(vm.OpTASB),

	// --- shifts/rotates ---
	"SHAD":   two(vm.OpSHAD),
	"SHLD":   two(vm.OpSHLD),
	"SHAL":   oneReg(vm.OpSHAL),
	"SHAR":   oneReg(vm.OpSHAR),
	"SHLL":   oneReg(vm.OpSHLL),
	"SHLR":   oneReg(vm.OpSHLR),
	"SHLL2":  oneReg(vm.OpSHLL2),
	"SHLR2":  oneReg(vm.OpSHLR2),
	"SHLL8":  oneReg(vm.OpSHLL8),
	"SHLR8":  oneReg(vm.OpSHLR8),
	"SHLL16": oneReg(vm.OpSHLL16),
	"SHLR16": oneReg(vm.OpSHLR16),
	"ROTL":   oneReg(vm.OpROTL),
	"ROTR":   oneReg(vm.OpROTR),
	"ROTCL":  oneReg(vm.OpROTCL),
	"ROTCR":  oneReg(vm.OpROTCR),

	// --- branches ---
	"BT":  branchDisp(vm.OpBT),
	"BF":  branchDisp(vm.OpBF),
	"BT/S": branchDisp(vm.OpBTS),
	"BF/S": branchDisp(vm.OpBFS),
	"BRA":  branchDisp(vm.OpBRA),
	"BSR":  branchDisp(vm.OpBSR),
	"BRAF": oneReg(vm.OpBRAF),
	"BSRF": oneReg(vm.OpBSRF),
	"JMP":  jmpJsrDispatch(vm.OpJMP),
	"JSR":  jmpJsrDispatch(vm.OpJSR),
	"RTS":  zero(vm.OpRTS),
	"RTE":  zero(vm.OpRTE),

	// --- system ---
	"LDC":   ldcStcDispatch(vm.OpLDC, vm.OpLDCBank),
	"LDC.L": ldcStcLDispatch(vm.OpLDCL, vm.OpLDCLBank),
	"STC":   stcDispatch(vm.OpSTC, vm.OpSTCBank),
	"STC.L": stcLDispatch(vm.OpSTCL, vm.OpSTCLBank),
	"LDS":   ldsDispatch(vm.OpLDS),
	"LDS.L": ldsLDispatch(vm.OpLDSL),
	"STS":   stsDispatch(vm.OpSTS),
	"STS.L": stsLDispatch(vm.OpSTSL),
	"CLRMAC": zero(vm.OpCLRMAC),
	"CLRS":   zero(vm.OpCLRS),
	"CLRT":   zero(vm.OpCLRT),
	"SETS":   zero(vm.OpSETS),
	"SETT":   zero(vm.OpSETT),
	"NOP":    zero(vm.OpNOP),
	"SLEEP":  zero(vm.OpSLEEP),
	"LDTLB":  zero(vm.OpLDTLB),
	"TRAPA": func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 1 || ops[0].form != formImm {
			return vm.Instruction{}, fmt.Errorf("expected #imm")
		}
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: vm.OpTRAPA, Imm: v}, nil
	},

	// --- FPU ---
	"FMOV":   two(vm.OpFMOV),
	"FMOV.S": fmovsDispatch,
	"FLDS":   oneReg(vm.OpFLDS),
	"FSTS":   oneReg(vm.OpFSTS),
	"FABS":   oneReg(vm.OpFABS),
	"FNEG":   oneReg(vm.OpFNEG),
	"FADD":   two(vm.OpFADD),
	"FSUB":   two(vm.OpFSUB),
	"FMUL":   two(vm.OpFMUL),
	"FDIV":   two(vm.OpFDIV),
	"FCMP/EQ": two(vm.OpFCMPEQ),
	"FCMP/GT": two(vm.OpFCMPGT),
	"FLOAT":   two(vm.OpFLOAT),
	"FTRC":    two(vm.OpFTRC),
	"FSQRT":   oneReg(vm.OpFSQRT),
	"FSRRA":   oneReg(vm.OpFSRRA),
	"FIPR":    two(vm.OpFIPR),
	"FTRV":    oneReg(vm.OpFTRV),
	"FMAC":    threeFMAC,
	"FCNVDS":  oneReg(vm.OpFCNVDS),
	"FCNVSD":  oneReg(vm.OpFCNVSD),
	"FLDI0":   oneReg(vm.OpFLDI0),
	"FLDI1":   oneReg(vm.OpFLDI1),
	"FRCHG":   zero(vm.OpFRCHG),
	"FSCHG":   zero(vm.OpFSCHG),

	// --- cache maintenance ---
	"MOVCA.L": func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[1].form != formIndirect {
			return vm.Instruction{}, fmt.Errorf("expected R0,@Rn")
		}
		return vm.Instruction{Op: vm.OpMOVCAL, N: ops[1].reg}, nil
	},
	"PREF": oneIndirectN(vm.OpPREF),
	"OCBI": oneIndirectN(vm.OpOCBI),
	"OCBP": oneIndirectN(vm.OpOCBP),
	"OCBWB": oneIndirectN(vm.OpOCBWB),
}

func oneIndirectN(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 1 || ops[0].form != formIndirect {
			return vm.Instruction{}, fmt.Errorf("expected @Rn")
		}
		return vm.Instruction{Op: op, N: ops[0].reg}, nil
	}
}

// addDispatch builds "ADD #imm,Rn" (N carries the destination) or
// "ADD Rm,Rn".
func addDispatch(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
	if len(ops) != 2 {
		return vm.Instruction{}, fmt.Errorf("expected 2 operands")
	}
	if ops[0].form == formImm {
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: vm.OpADDImm, N: ops[1].reg, Imm: v}, nil
	}
	return vm.Instruction{Op: vm.OpADD, M: ops[0].reg, N: ops[1].reg}, nil
}

// r0ImmOrReg builds the AND/OR/XOR/TST pair: the immediate form is fixed
// to R0 on real hardware (no N field exists in decode.go's group-0xC
// encoding), while the register form is the ordinary Rm,Rn shape.
func r0ImmOrReg(regOp, immOp vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected 2 operands")
		}
		if ops[0].form == formImm {
			if ops[1].text != "R0" {
				return vm.Instruction{}, fmt.Errorf("immediate form only targets R0")
			}
			v, err := e.resolveImm(ops[0].expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: immOp, Imm: v}, nil
		}
		return vm.Instruction{Op: regOp, M: ops[0].reg, N: ops[1].reg}, nil
	}
}

func cmpDispatch(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
	if len(ops) != 2 {
		return vm.Instruction{}, fmt.Errorf("expected 2 operands")
	}
	if ops[0].form == formImm {
		if ops[1].text != "R0" {
			return vm.Instruction{}, fmt.Errorf("immediate form only targets R0")
		}
		v, err := e.resolveImm(ops[0].expr)
		if err != nil {
			return vm.Instruction{}, err
		}
		return vm.Instruction{Op: vm.OpCMPEQImm, Imm: v}, nil
	}
	return vm.Instruction{Op: vm.OpCMPEQ, M: ops[0].reg, N: ops[1].reg}, nil
}

func twoPostInc(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formPostInc || ops[1].form != formPostInc {
			return vm.Instruction{}, fmt.Errorf("expected @Rm+,@Rn+")
		}
		return vm.Instruction{Op: op, M: ops[0].reg, N: ops[1].reg}, nil
	}
}

func jmpJsrDispatch(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 1 || ops[0].form != formIndirect {
			return vm.Instruction{}, fmt.Errorf("expected @Rn")
		}
		return vm.Instruction{Op: op, N: ops[0].reg}, nil
	}
}

func threeFMAC(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
	if len(ops) != 3 || ops[0].text != "FR0" {
		return vm.Instruction{}, fmt.Errorf("expected FR0,FRm,FRn")
	}
	return vm.Instruction{Op: vm.OpFMAC, M: ops[1].reg, N: ops[2].reg}, nil
}

func fmovsDispatch(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
	if len(ops) != 2 {
		return vm.Instruction{}, fmt.Errorf("expected 2 operands")
	}
	src, dst := ops[0], ops[1]
	switch {
	case src.form == formR0Idx:
		return vm.Instruction{Op: vm.OpFMOVSLoadIdx, M: src.reg, N: dst.reg}, nil
	case dst.form == formR0Idx:
		return vm.Instruction{Op: vm.OpFMOVSStoreIdx, M: src.reg, N: dst.reg}, nil
	case src.form == formPostInc:
		return vm.Instruction{Op: vm.OpFMOVSLoadInc, M: src.reg, N: dst.reg}, nil
	case dst.form == formPreDec:
		return vm.Instruction{Op: vm.OpFMOVSStoreDec, M: src.reg, N: dst.reg}, nil
	case src.form == formIndirect:
		return vm.Instruction{Op: vm.OpFMOVSLoad, M: src.reg, N: dst.reg}, nil
	case dst.form == formIndirect:
		return vm.Instruction{Op: vm.OpFMOVSStore, M: src.reg, N: dst.reg}, nil
	}
	return vm.Instruction{}, fmt.Errorf("unrecognized FMOV.S form")
}

// movWidth collects the width-specific Op family for a MOV.{B,W,L} suffix.
// scale is the transfer width in bytes. The @(disp,Rn) and @(disp,GBR)
// displacement operands are byte offsets, the same unit vm.Instruction.Imm
// carries (decode.go stores MOV.W/MOV.L displacements pre-scaled) and
// Disassemble prints; EncodeOp divides them by the width. The .B and .W
// @(disp,Rn) forms move only through R0; .L takes any Rn.
type movWidth struct {
	loadInd, storeInd         vm.Op
	loadPostInc, storePreDec  vm.Op
	loadR0Idx, storeR0Idx     vm.Op
	loadGBR, storeGBR         vm.Op
	loadPC                    vm.Op
	loadDisp, storeDisp       vm.Op // @(disp,Rn) forms; zero Op means unavailable at this width
	dispFixedR0               bool  // .B/.W @(disp,Rn) forms always move through R0; .L allows any Rn
	scale                     int32
}

var movWidths = map[string]movWidth{
	"MOV.B": {
		loadInd: vm.OpMOVBLoadInd, storeInd: vm.OpMOVBStoreInd,
		loadPostInc: vm.OpMOVBLoadPostInc, storePreDec: vm.OpMOVBStorePreDec,
		loadR0Idx: vm.OpMOVBLoadR0Idx, storeR0Idx: vm.OpMOVBStoreR0Idx,
		loadGBR: vm.OpMOVBLoadGBR, storeGBR: vm.OpMOVBStoreGBR,
		loadDisp: vm.OpMOVBLoadDisp, storeDisp: vm.OpMOVBStoreDisp,
		dispFixedR0: true,
		scale:       1,
	},
	"MOV.W": {
		loadInd: vm.OpMOVWLoadInd, storeInd: vm.OpMOVWStoreInd,
		loadPostInc: vm.OpMOVWLoadPostInc, storePreDec: vm.OpMOVWStorePreDec,
		loadR0Idx: vm.OpMOVWLoadR0Idx, storeR0Idx: vm.OpMOVWStoreR0Idx,
		loadGBR: vm.OpMOVWLoadGBR, storeGBR: vm.OpMOVWStoreGBR,
		loadPC:   vm.OpMOVWPC,
		loadDisp: vm.OpMOVWLoadDisp, storeDisp: vm.OpMOVWStoreDisp,
		dispFixedR0: true,
		scale:       2,
	},
	"MOV.L": {
		loadInd: vm.OpMOVLLoadInd, storeInd: vm.OpMOVLStoreInd,
		loadPostInc: vm.OpMOVLLoadPostInc, storePreDec: vm.OpMOVLStorePreDec,
		loadR0Idx: vm.OpMOVLLoadR0Idx, storeR0Idx: vm.OpMOVLStoreR0Idx,
		loadGBR: vm.OpMOVLLoadGBR, storeGBR: vm.OpMOVLStoreGBR,
		loadPC:   vm.OpMOVLPC,
		loadDisp: vm.OpMOVLLoadDisp, storeDisp: vm.OpMOVLStoreDisp,
		scale: 4,
	},
}

// movDispatch covers every MOV/MOV.B/MOV.W/MOV.L addressing form. Operand
// order is source,dest throughout, per SH-4 convention. mnemonic picks the
// width table; plain
// "MOV" only ever reaches the register/#imm/=literal/PC-relative-longword
// cases, since every indexed or indirect form requires an explicit .B/.W/.L
// suffix on real hardware.
func movDispatch(mnemonic string) buildFunc {
	w, hasWidth := movWidths[mnemonic]
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected 2 operands")
		}
		src, dst := ops[0], ops[1]

		switch {
		case src.form == formImm:
			v, err := e.resolveImm(src.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: vm.OpMOVImm, N: dst.reg, Imm: v}, nil

		case src.form == formPoolLiteral:
			v, err := e.resolveImm(src.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			disp := e.addPoolLiteral(addr, uint32(v))
			return vm.Instruction{Op: vm.OpMOVLPC, N: dst.reg, Imm: disp}, nil

		case src.form == formDispPC:
			d, err := e.resolveImm(src.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			op := vm.OpMOVLPC
			if hasWidth && w.loadPC != 0 {
				op = w.loadPC
			}
			return vm.Instruction{Op: op, N: dst.reg, Imm: d}, nil
		}

		if !hasWidth {
			return vm.Instruction{Op: vm.OpMOV, M: src.reg, N: dst.reg}, nil
		}

		switch {
		case src.form == formDispGBR:
			d, err := e.resolveImm(src.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: w.loadGBR, Imm: d}, nil
		case dst.form == formDispGBR:
			d, err := e.resolveImm(dst.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: w.storeGBR, Imm: d}, nil

		case src.form == formR0Idx:
			return vm.Instruction{Op: w.loadR0Idx, M: src.reg, N: dst.reg}, nil
		case dst.form == formR0Idx:
			return vm.Instruction{Op: w.storeR0Idx, M: src.reg, N: dst.reg}, nil

		case src.form == formDispReg:
			if w.loadDisp == 0 {
				return vm.Instruction{}, fmt.Errorf("%s has no @(disp,Rn) load form", mnemonic)
			}
			if w.dispFixedR0 && dst.text != "R0" {
				return vm.Instruction{}, fmt.Errorf("%s @(disp,Rn) load always targets R0", mnemonic)
			}
			d, err := e.resolveImm(src.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: w.loadDisp, M: src.reg, N: dst.reg, Imm: d}, nil
		case dst.form == formDispReg:
			if w.storeDisp == 0 {
				return vm.Instruction{}, fmt.Errorf("%s has no @(disp,Rn) store form", mnemonic)
			}
			if w.dispFixedR0 && src.text != "R0" {
				return vm.Instruction{}, fmt.Errorf("%s @(disp,Rn) store always sources R0", mnemonic)
			}
			d, err := e.resolveImm(dst.expr)
			if err != nil {
				return vm.Instruction{}, err
			}
			return vm.Instruction{Op: w.storeDisp, M: src.reg, N: dst.reg, Imm: d}, nil

		case src.form == formPostInc:
			return vm.Instruction{Op: w.loadPostInc, M: src.reg, N: dst.reg}, nil
		case dst.form == formPreDec:
			return vm.Instruction{Op: w.storePreDec, M: src.reg, N: dst.reg}, nil

		case src.form == formIndirect:
			return vm.Instruction{Op: w.loadInd, M: src.reg, N: dst.reg}, nil
		case dst.form == formIndirect:
			return vm.Instruction{Op: w.storeInd, M: src.reg, N: dst.reg}, nil
		}

		return vm.Instruction{Op: vm.OpMOV, M: src.reg, N: dst.reg}, nil
	}
}

// stcDispatch builds "STC <reg>,Rn": <reg> is either a control-register
// name (SR/GBR/VBR/SSR/SPC/SGR/DBR) or a Rm_BANK register, each encoding to
// a distinct Op since they occupy different decode.go bit patterns.
func stcDispatch(plain, bank vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected <reg>,Rn")
		}
		op := plain
		if isBankedReg(ops[0]) {
			op = bank
		} else if op == vm.OpSTC && ops[0].reg == 6 {
			// Plain STC has no DBR form on real hardware; only STC.L can
			// read DBR (see vm/decode.go's group-4 0xF3 case).
			return vm.Instruction{}, &RegisterIndexError{Name: ops[0].text}
		}
		return vm.Instruction{Op: op, M: ops[0].reg, N: ops[1].reg}, nil
	}
}

func stcLDispatch(plain, bank vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[1].form != formPreDec {
			return vm.Instruction{}, fmt.Errorf("expected <reg>,@-Rn")
		}
		op := plain
		if isBankedReg(ops[0]) {
			op = bank
		}
		return vm.Instruction{Op: op, M: ops[0].reg, N: ops[1].reg}, nil
	}
}

// ldcStcDispatch builds "LDC Rm,<reg>": the register file is reversed from
// STC's (source Rm first, destination control register second).
func ldcStcDispatch(plain, bank vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected Rm,<reg>")
		}
		op := plain
		if isBankedReg(ops[1]) {
			op = bank
		}
		return vm.Instruction{Op: op, N: ops[0].reg, M: ops[1].reg}, nil
	}
}

func ldcStcLDispatch(plain, bank vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formPostInc {
			return vm.Instruction{}, fmt.Errorf("expected @Rm+,<reg>")
		}
		op := plain
		if isBankedReg(ops[1]) {
			op = bank
		}
		return vm.Instruction{Op: op, N: ops[0].reg, M: ops[1].reg}, nil
	}
}

func ldsDispatch(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected Rm,<reg>")
		}
		return vm.Instruction{Op: op, N: ops[0].reg, M: ops[1].reg}, nil
	}
}

func ldsLDispatch(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[0].form != formPostInc {
			return vm.Instruction{}, fmt.Errorf("expected @Rm+,<reg>")
		}
		return vm.Instruction{Op: op, N: ops[0].reg, M: ops[1].reg}, nil
	}
}

func stsDispatch(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 {
			return vm.Instruction{}, fmt.Errorf("expected <reg>,Rn")
		}
		return vm.Instruction{Op: op, N: ops[1].reg, M: ops[0].reg}, nil
	}
}

func stsLDispatch(op vm.Op) buildFunc {
	return func(e *Encoder, ops []operand, addr uint32) (vm.Instruction, error) {
		if len(ops) != 2 || ops[1].form != formPreDec {
			return vm.Instruction{}, fmt.Errorf("expected <reg>,@-Rn")
		}
		return vm.Instruction{Op: op, N: ops[1].reg, M: ops[0].reg}, nil
	}
}

// ensure the parser package import is exercised (RawLine/Pos used by
// EncodingError construction in encoder.go).
var _ = parser.EstimatedLiteralsPerPool
