package encoder

import (
	"testing"

	"github.com/sh4emu/sh4-emulator/parser"
	"github.com/sh4emu/sh4-emulator/vm"
)

// TestEncodeDecodeRoundTrip checks that EncodeOp is the algebraic inverse of
// vm.Decode for a representative opcode from each instruction group: decode
// the raw word, re-encode the result, and expect the same bits back.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	words := []uint16{
		0x0009, // NOP
		0x0019, // DIV0U
		0x6213, // MOV R1,R2
		0x345C, // ADD R5,R4
		0x7212, // ADD #0x12,R2
		0xE57F, // MOV #0x7F,R5
		0x3214, // DIV1 R1,R2
		0x2217, // DIV0S R1,R2
		0x2189, // AND R8,R1
		0x3230, // CMP/EQ R3,R2
		0x4224, // ROTCL R2
		0x622D, // EXTU.W R2,R2
		0x6112, // MOV.L @R1,R1
	}

	for _, w := range words {
		inst, err := vm.Decode(w)
		if err != nil {
			t.Fatalf("Decode(0x%04X) error = %v", w, err)
		}
		got, err := EncodeOp(inst)
		if err != nil {
			t.Fatalf("EncodeOp(%+v) error = %v", inst, err)
		}
		if got != w {
			t.Errorf("EncodeOp(Decode(0x%04X)) = 0x%04X, want 0x%04X", w, got, w)
		}
	}
}

// assembleOne parses a single instruction line of SH-4 assembly and encodes
// it at address addr, failing the test on any parse or encode error.
func assembleOne(t *testing.T, src string, addr uint32) uint16 {
	t.Helper()
	prog, err := parser.NewParser(src, "t.s").Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("Parse(%q) produced %d instructions, want 1", src, len(prog.Instructions))
	}
	enc := NewEncoder(prog.SymbolTable)
	word, err := enc.EncodeInstruction(prog.Instructions[0], addr)
	if err != nil {
		t.Fatalf("EncodeInstruction(%q) error = %v", src, err)
	}
	return word
}

// TestAssembleDisassembleRoundTrip verifies the central identity that holds
// for every instruction this package covers: assembling text, disassembling
// the result, and reassembling that disassembly reproduces the same word.
func TestAssembleDisassembleRoundTrip(t *testing.T) {
	cases := []string{
		"MOV R1,R2",
		"MOV #16,R0",
		"ADD R3,R4",
		"ADD #5,R2",
		"DIV0U",
		"DIV0S R1,R2",
		"DIV1 R1,R2",
		"MOV.L @R1,R2",
		"MOV.L R2,@R1",
		"MOV.L @R1+,R2",
		"MOV.L R2,@-R1",
		"AND R1,R2",
		"ROTCL R2",
		"EXTU.W R2,R2",
		"NOP",
	}

	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			word1 := assembleOne(t, src, 0)

			decoded, err := vm.Decode(word1)
			if err != nil {
				t.Fatalf("Decode(0x%04X) error = %v", word1, err)
			}
			disasm := Disassemble(decoded)

			word2 := assembleOne(t, disasm, 0)
			if word2 != word1 {
				t.Errorf("round trip mismatch: assemble(%q) = 0x%04X, disassemble -> %q, reassemble = 0x%04X",
					src, word1, disasm, word2)
			}
		})
	}
}

// TestBranchDisplacementEncodesRelativeToPCPlus4 covers BRA's PC-relative
// displacement convention directly: the encoded Imm is target - (addr+4),
// per the delayed-branch convention branchDisp documents.
func TestBranchDisplacementEncodesRelativeToPCPlus4(t *testing.T) {
	prog, err := parser.NewParser("BRA label\nlabel:\nNOP", "t.s").Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(prog.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(prog.Instructions))
	}
	enc := NewEncoder(prog.SymbolTable)
	word, err := enc.EncodeInstruction(prog.Instructions[0], 0)
	if err != nil {
		t.Fatalf("EncodeInstruction() error = %v", err)
	}

	decoded, err := vm.Decode(word)
	if err != nil {
		t.Fatalf("Decode(0x%04X) error = %v", word, err)
	}
	if decoded.Op != vm.OpBRA {
		t.Fatalf("decoded op = %v, want OpBRA", decoded.Op)
	}
	// label sits right after the one BRA instruction, i.e. at byte offset 2
	// in the program; the encoded displacement is relative to PC+4.
	want := int32(2) - int32(0) - 4
	if decoded.Imm != want {
		t.Errorf("BRA displacement = %d, want %d", decoded.Imm, want)
	}
}

// TestDisassembleUnknownOpcode exercises the fallback path so a malformed
// or not-yet-decoded word never panics the disassembler.
func TestDisassembleUnknownOpcode(t *testing.T) {
	got := Disassemble(vm.Instruction{Op: vm.OpUnknown})
	if got == "" {
		t.Error("Disassemble(OpUnknown) returned an empty string")
	}
}
