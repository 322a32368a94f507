package vm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FlagChangeEntry is a single recorded transition of SR's condition bits.
type FlagChangeEntry struct {
	Sequence    uint64         // Instruction sequence number
	PC          uint32         // Program counter
	Instruction string         // Instruction that changed the flags
	OldFlags    StatusRegister // SR before the instruction
	NewFlags    StatusRegister // SR after the instruction
	Changed     string         // Which bits changed, e.g. "TQ"
}

// FlagTrace tracks changes to SR's T/S/Q/M bits across Step calls. These are
// the only SR bits ordinary instructions (CMP/, TST, DIV0/DIV1, MAC) touch in
// the course of normal execution. MD/RB/BL/FD changes (exception entry, RTE,
// LDC to SR) are not recorded.
type FlagTrace struct {
	Enabled bool
	Writer  io.Writer

	entries    []FlagChangeEntry
	maxEntries int
	lastFlags  StatusRegister

	totalChanges uint64
	tChanges     uint64
	sChanges     uint64
	qChanges     uint64
	mChanges     uint64

	symbols *SymbolResolver
}

// NewFlagTrace creates a flag tracker that writes its report to w.
func NewFlagTrace(w io.Writer) *FlagTrace {
	return &FlagTrace{
		Enabled:    true,
		Writer:     w,
		entries:    make([]FlagChangeEntry, 0, 1000),
		maxEntries: 100000,
	}
}

// LoadSymbols attaches a symbol table for address annotation in the report.
func (f *FlagTrace) LoadSymbols(symbols map[string]uint32) {
	f.symbols = NewSymbolResolver(symbols)
}

// Start resets tracking state to begin from initialFlags.
func (f *FlagTrace) Start(initialFlags StatusRegister) {
	f.entries = f.entries[:0]
	f.lastFlags = initialFlags
	f.totalChanges = 0
	f.tChanges = 0
	f.sChanges = 0
	f.qChanges = 0
	f.mChanges = 0
}

// RecordFlags compares newFlags against the last recorded state and appends
// an entry if T/S/Q/M changed.
func (f *FlagTrace) RecordFlags(sequence uint64, pc uint32, instruction string, newFlags StatusRegister) {
	if !f.Enabled {
		return
	}

	changed := f.detectChanges(f.lastFlags, newFlags)
	if changed == "" {
		return
	}
	if f.maxEntries > 0 && len(f.entries) >= f.maxEntries {
		return
	}

	entry := FlagChangeEntry{
		Sequence:    sequence,
		PC:          pc,
		Instruction: instruction,
		OldFlags:    f.lastFlags,
		NewFlags:    newFlags,
		Changed:     changed,
	}

	f.entries = append(f.entries, entry)
	f.updateStatistics(f.lastFlags, newFlags)
	f.lastFlags = newFlags
	f.totalChanges++
}

func (f *FlagTrace) detectChanges(old, new StatusRegister) string {
	var changes []string
	if old.T() != new.T() {
		changes = append(changes, "T")
	}
	if old.SBit() != new.SBit() {
		changes = append(changes, "S")
	}
	if old.Q() != new.Q() {
		changes = append(changes, "Q")
	}
	if old.M() != new.M() {
		changes = append(changes, "M")
	}
	return strings.Join(changes, "")
}

func (f *FlagTrace) updateStatistics(old, new StatusRegister) {
	if old.T() != new.T() {
		f.tChanges++
	}
	if old.SBit() != new.SBit() {
		f.sChanges++
	}
	if old.Q() != new.Q() {
		f.qChanges++
	}
	if old.M() != new.M() {
		f.mChanges++
	}
}

// GetEntries returns every recorded flag change.
func (f *FlagTrace) GetEntries() []FlagChangeEntry {
	return f.entries
}

// Flush writes a full trace report to f.Writer.
func (f *FlagTrace) Flush() error {
	if f.Writer == nil {
		return nil
	}

	var header strings.Builder
	header.WriteString("Flag Change Trace Report\n")
	header.WriteString("========================\n\n")
	header.WriteString("Statistics:\n")
	header.WriteString(fmt.Sprintf("  Total Changes:    %d\n", f.totalChanges))
	header.WriteString(fmt.Sprintf("  T flag changes:   %d\n", f.tChanges))
	header.WriteString(fmt.Sprintf("  S flag changes:   %d\n", f.sChanges))
	header.WriteString(fmt.Sprintf("  Q flag changes:   %d\n", f.qChanges))
	header.WriteString(fmt.Sprintf("  M flag changes:   %d\n\n", f.mChanges))

	if _, err := f.Writer.Write([]byte(header.String())); err != nil {
		return err
	}
	if _, err := f.Writer.Write([]byte("Flag Changes:\n-------------\n")); err != nil {
		return err
	}

	for _, entry := range f.entries {
		if _, err := f.Writer.Write([]byte(f.formatEntry(entry))); err != nil {
			return err
		}
	}
	return nil
}

func (f *FlagTrace) formatEntry(entry FlagChangeEntry) string {
	oldStr := f.formatFlags(entry.OldFlags)
	highlightedNew := f.highlightChanges(entry.NewFlags, entry.Changed)

	pcStr := fmt.Sprintf("0x%08X", entry.PC)
	if f.symbols != nil && f.symbols.HasSymbols() {
		pcStr = f.symbols.FormatAddressCompact(entry.PC)
	}

	return fmt.Sprintf("[%06d] %-20s: %-30s  %s -> %s  (changed: %s)\n",
		entry.Sequence, pcStr, entry.Instruction, oldStr, highlightedNew, entry.Changed)
}

func (f *FlagTrace) formatFlags(flags StatusRegister) string {
	result := make([]byte, 4)
	result[0] = bitChar(flags.T(), 'T')
	result[1] = bitChar(flags.SBit(), 'S')
	result[2] = bitChar(flags.Q(), 'Q')
	result[3] = bitChar(flags.M(), 'M')
	return string(result)
}

func bitChar(set bool, ch byte) byte {
	if set {
		return ch
	}
	return '-'
}

func (f *FlagTrace) highlightChanges(flags StatusRegister, changed string) string {
	var sb strings.Builder
	sb.Grow(8)

	writeBit := func(set bool, ch byte, changedFlag string) {
		sb.WriteByte(bitChar(set, ch))
		if strings.Contains(changed, changedFlag) {
			sb.WriteByte('*')
		}
	}

	writeBit(flags.T(), 'T', "T")
	writeBit(flags.SBit(), 'S', "S")
	writeBit(flags.Q(), 'Q', "Q")
	writeBit(flags.M(), 'M', "M")

	return sb.String()
}

// ExportJSON writes the full trace (statistics and entries) as JSON.
func (f *FlagTrace) ExportJSON(w io.Writer) error {
	data := map[string]interface{}{
		"total_changes": f.totalChanges,
		"t_changes":     f.tChanges,
		"s_changes":     f.sChanges,
		"q_changes":     f.qChanges,
		"m_changes":     f.mChanges,
		"entries":       f.entries,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// String returns a short summary (no per-entry detail).
func (f *FlagTrace) String() string {
	var sb strings.Builder
	sb.WriteString("Flag Change Summary\n")
	sb.WriteString("===================\n\n")
	sb.WriteString(fmt.Sprintf("Total Changes:      %d\n", f.totalChanges))
	sb.WriteString(fmt.Sprintf("T flag changes:     %d\n", f.tChanges))
	sb.WriteString(fmt.Sprintf("S flag changes:     %d\n", f.sChanges))
	sb.WriteString(fmt.Sprintf("Q flag changes:     %d\n", f.qChanges))
	sb.WriteString(fmt.Sprintf("M flag changes:     %d\n", f.mChanges))
	return sb.String()
}
