package parser

import "testing"

func TestParseBasicInstructions(t *testing.T) {
	src := `.org 0x8000
start:
    MOV     #10,R0      ; load R0
    MOV.L   R0,@R1
    ADD     R0,R1
    BRA     start
`
	p := NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(program.Instructions) != 4 {
		t.Fatalf("got %d instructions, want 4", len(program.Instructions))
	}

	tests := []struct {
		mnemonic string
		operands []string
		address  uint32
	}{
		{"MOV", []string{"#10", "R0"}, 0x8000},
		{"MOV.L", []string{"R0", "@R1"}, 0x8002},
		{"ADD", []string{"R0", "R1"}, 0x8004},
		{"BRA", []string{"start"}, 0x8006},
	}
	for i, tt := range tests {
		inst := program.Instructions[i]
		if inst.Mnemonic != tt.mnemonic {
			t.Errorf("instruction %d: mnemonic = %q, want %q", i, inst.Mnemonic, tt.mnemonic)
		}
		if inst.Address != tt.address {
			t.Errorf("instruction %d: address = 0x%X, want 0x%X", i, inst.Address, tt.address)
		}
		if len(inst.Operands) != len(tt.operands) {
			t.Fatalf("instruction %d: got %d operands, want %d", i, len(inst.Operands), len(tt.operands))
		}
		for j, op := range tt.operands {
			if inst.Operands[j] != op {
				t.Errorf("instruction %d operand %d = %q, want %q", i, j, inst.Operands[j], op)
			}
		}
	}

	sym, ok := program.SymbolTable.Lookup("start")
	if !ok || !sym.Defined {
		t.Fatalf("label %q not defined in symbol table", "start")
	}
	if sym.Value != 0x8000 {
		t.Errorf("label %q = 0x%X, want 0x8000", "start", sym.Value)
	}
}

func TestParseIndirectAddressingOperands(t *testing.T) {
	src := `
    MOV.L   @R1+,R2
    MOV.L   R2,@-R1
    MOV.L   @(4,R1),R3
    MOV.L   @(R0,R1),R3
    MOV.W   @(4,GBR),R0
`
	p := NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := [][]string{
		{"@R1+", "R2"},
		{"R2", "@-R1"},
		{"@(4,R1)", "R3"},
		{"@(R0,R1)", "R3"},
		{"@(4,GBR)", "R0"},
	}
	if len(program.Instructions) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(program.Instructions), len(want))
	}
	for i, inst := range program.Instructions {
		for j, op := range want[i] {
			if inst.Operands[j] != op {
				t.Errorf("instruction %d operand %d = %q, want %q", i, j, inst.Operands[j], op)
			}
		}
	}
}

func TestParseDuplicateLabelIsError(t *testing.T) {
	src := `
loop:
    NOP
loop:
    NOP
`
	p := NewParser(src, "test.s")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an error for a duplicate label, got nil")
	}
}

func TestParseCommentIsAttachedNotTreatedAsOperand(t *testing.T) {
	src := `    NOP   ; does nothing
`
	p := NewParser(src, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(program.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(program.Instructions))
	}
	inst := program.Instructions[0]
	if len(inst.Operands) != 0 {
		t.Errorf("NOP got operands %v, want none", inst.Operands)
	}
	if inst.Comment == "" {
		t.Error("expected the trailing comment to be captured on the instruction")
	}
}
