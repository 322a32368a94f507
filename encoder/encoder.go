package encoder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sh4emu/sh4-emulator/parser"
)

// Encoder converts parsed instructions into SH-4 machine code.
type Encoder struct {
	symbolTable       *parser.SymbolTable
	currentAddr       uint32
	LiteralPool       map[uint32]uint32 // address -> value for literal pool (exported)
	LiteralPoolStart  uint32            // Start address for literal pool (set externally)
	LiteralPoolLocs   []uint32          // Addresses of .ltorg directives (multiple pools)
	LiteralPoolCounts []int             // Expected literal counts for each pool (from parser)
	pendingLiterals   map[uint32]uint32 // value -> preferred address mapping for dedup
	PoolWarnings      []string          // Warnings about pool capacity issues
}

// NewEncoder creates a new encoder instance
func NewEncoder(symbolTable *parser.SymbolTable) *Encoder {
	return &Encoder{
		symbolTable:       symbolTable,
		LiteralPool:       make(map[uint32]uint32),
		LiteralPoolLocs:   make([]uint32, 0),
		LiteralPoolCounts: make([]int, 0),
		pendingLiterals:   make(map[uint32]uint32),
		PoolWarnings:      make([]string, 0),
	}
}

// EncodeInstruction converts a single parsed instruction into its 16-bit
// SH-4 opcode word, in two steps: Assemble (patterns.go) resolves
// mnemonic+operand text into a vm.Instruction, then EncodeOp (bitcodec.go)
// packs that into the opcode bits vm.Decode would read back.
func (e *Encoder) EncodeInstruction(inst *parser.Instruction, address uint32) (uint16, error) {
	e.currentAddr = address

	decoded, err := e.Assemble(inst.Mnemonic, inst.Operands, address)
	if err != nil {
		return 0, WrapEncodingError(inst, err)
	}

	word, err := EncodeOp(decoded)
	if err != nil {
		return 0, WrapEncodingError(inst, err)
	}
	return word, nil
}

// parseImmediate parses an immediate value
func (e *Encoder) parseImmediate(imm string) (uint32, error) {
	imm = strings.TrimSpace(imm)

	if imm == "" {
		return 0, fmt.Errorf("empty immediate value")
	}

	// Remove leading # if present
	imm = strings.TrimPrefix(imm, "#")

	// Handle character literals like 'A' or ' ' or '\t' or '\x41'
	if strings.HasPrefix(imm, "'") && strings.HasSuffix(imm, "'") && len(imm) >= 3 {
		charLiteral := imm[1 : len(imm)-1] // Remove quotes

		// Handle escape sequences using shared parser utility
		if strings.HasPrefix(charLiteral, "\\") {
			b, consumed, err := parser.ParseEscapeChar(charLiteral)
			if err != nil {
				return 0, fmt.Errorf("invalid escape sequence in character literal: %s", imm)
			}
			// Ensure the entire escape was consumed
			if consumed != len(charLiteral) {
				return 0, fmt.Errorf("invalid character literal: %s", imm)
			}
			return uint32(b), nil
		}

		// Regular character literal
		if len(charLiteral) != 1 {
			return 0, fmt.Errorf("character literal must contain exactly one character: %s", imm)
		}
		return uint32(charLiteral[0]), nil
	}

	// Handle negative numbers
	negative := false
	if strings.HasPrefix(imm, "-") {
		negative = true
		imm = imm[1:]
	}

	// Try to parse as symbol first
	if !strings.HasPrefix(imm, "0x") && !strings.HasPrefix(imm, "0X") {
		if sym, exists := e.symbolTable.Lookup(imm); exists && sym.Defined {
			return sym.Value, nil
		}
	}

	var value uint64
	var err error

	// Parse based on prefix
	if strings.HasPrefix(imm, "0x") || strings.HasPrefix(imm, "0X") {
		value, err = strconv.ParseUint(imm[2:], 16, 32)
	} else if strings.HasPrefix(imm, "0b") || strings.HasPrefix(imm, "0B") {
		value, err = strconv.ParseUint(imm[2:], 2, 32)
	} else if strings.HasPrefix(imm, "0") && len(imm) > 1 {
		value, err = strconv.ParseUint(imm[1:], 8, 32)
	} else {
		value, err = strconv.ParseUint(imm, 10, 32)
	}

	if err != nil {
		return 0, fmt.Errorf("invalid immediate value: %s", imm)
	}

	result := uint32(value)
	if negative {
		// Bounds check before casting to int32 and negating
		if result < 1 || result > uint32(math.MaxInt32)+1 {
			return 0, fmt.Errorf("immediate value out of valid signed 32-bit range: %s", imm)
		}
		// Safe: value checked to be in valid range for signed negation
		result = uint32(-int32(result)) // #nosec G115 -- bounds checked above
	}

	return result, nil
}

// evaluateExpression evaluates a constant expression like "label+12" or "symbol-4"
// Returns the evaluated value or an error if the expression is invalid
func (e *Encoder) evaluateExpression(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)

	// Look for + or - operators (scanning from left to right, skip first char for potential minus)
	for i := 1; i < len(expr); i++ {
		if expr[i] == '+' || expr[i] == '-' {
			left := strings.TrimSpace(expr[:i])
			right := strings.TrimSpace(expr[i+1:])
			op := expr[i]

			// Evaluate left side
			leftVal, err := e.evaluateTerm(left)
			if err != nil {
				return 0, err
			}

			// Evaluate right side
			rightVal, err := e.evaluateTerm(right)
			if err != nil {
				return 0, err
			}

			// Perform operation
			if op == '+' {
				return leftVal + rightVal, nil
			}
			return leftVal - rightVal, nil
		}
	}

	// No operator found, evaluate as single term
	return e.evaluateTerm(expr)
}

// evaluateTerm evaluates a single term (symbol or number)
func (e *Encoder) evaluateTerm(term string) (uint32, error) {
	term = strings.TrimSpace(term)

	// Try to resolve as symbol first
	if sym, exists := e.symbolTable.Lookup(term); exists && sym.Defined {
		return sym.Value, nil
	}

	// Otherwise parse as immediate number
	return e.parseImmediate(term)
}

// ValidatePoolCapacity checks if actual literal pool usage matches expected capacity
// This method should be called after encoding all instructions
func (e *Encoder) ValidatePoolCapacity() {
	if len(e.LiteralPoolLocs) == 0 {
		return
	}

	// Count actual literals in each pool region
	actualCounts := make(map[uint32]int) // pool location -> count of literals in that region

	for addr := range e.LiteralPool {
		// Find which pool this literal belongs to
		for i, poolLoc := range e.LiteralPoolLocs {
			if i+1 < len(e.LiteralPoolLocs) {
				// Check if literal is between this pool and the next
				if addr >= poolLoc && addr < e.LiteralPoolLocs[i+1] {
					actualCounts[poolLoc]++
					break
				}
			} else {
				// Last pool - all remaining literals belong to it
				if addr >= poolLoc {
					actualCounts[poolLoc]++
					break
				}
			}
		}
	}

	// Check each pool against expected capacity
	for i, poolLoc := range e.LiteralPoolLocs {
		expectedCount := parser.EstimatedLiteralsPerPool
		if i < len(e.LiteralPoolCounts) {
			expectedCount = e.LiteralPoolCounts[i]
		}

		actualCount := actualCounts[poolLoc]

		// Warn if actual count exceeds expected
		if actualCount > expectedCount {
			warning := fmt.Sprintf(
				"Literal pool at 0x%08X: actual count (%d) exceeds expected (%d)",
				poolLoc, actualCount, expectedCount,
			)
			e.PoolWarnings = append(e.PoolWarnings, warning)
		}

		// Also warn if we're using more than half the reserved space for pools with large margins
		if expectedCount >= parser.EstimatedLiteralsPerPool && actualCount > parser.EstimatedLiteralsPerPool/2 {
			warning := fmt.Sprintf(
				"Literal pool at 0x%08X: using %d of %d estimated literals (%.1f%%)",
				poolLoc, actualCount, parser.EstimatedLiteralsPerPool,
				float64(actualCount)/float64(parser.EstimatedLiteralsPerPool)*100,
			)
			e.PoolWarnings = append(e.PoolWarnings, warning)
		}
	}
}

// GetPoolWarnings returns all collected pool capacity warnings
func (e *Encoder) GetPoolWarnings() []string {
	return e.PoolWarnings
}

// HasPoolWarnings returns true if any warnings were collected
func (e *Encoder) HasPoolWarnings() bool {
	return len(e.PoolWarnings) > 0
}

