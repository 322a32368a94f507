package vm

import (
	"fmt"
	"sort"
)

// SymbolResolver maps between label names and addresses for trace/debugger
// output, resolving an arbitrary address to the nearest preceding symbol plus
// offset. Architecture-neutral: addresses are just uint32 here regardless of
// what they mean to the CPU.
type SymbolResolver struct {
	symbols         map[string]uint32
	addressToSymbol map[uint32]string
	sortedAddresses []uint32
}

// NewSymbolResolver builds a resolver from a name->address symbol table.
func NewSymbolResolver(symbols map[string]uint32) *SymbolResolver {
	if symbols == nil {
		symbols = make(map[string]uint32)
	}

	addressToSymbol := make(map[uint32]string, len(symbols))
	for name, addr := range symbols {
		addressToSymbol[addr] = name
	}

	sortedAddresses := make([]uint32, 0, len(addressToSymbol))
	for addr := range addressToSymbol {
		sortedAddresses = append(sortedAddresses, addr)
	}
	sort.Slice(sortedAddresses, func(i, j int) bool {
		return sortedAddresses[i] < sortedAddresses[j]
	})

	return &SymbolResolver{
		symbols:         symbols,
		addressToSymbol: addressToSymbol,
		sortedAddresses: sortedAddresses,
	}
}

// LookupAddress returns the exact symbol name at an address, or "" if none.
func (sr *SymbolResolver) LookupAddress(address uint32) string {
	return sr.addressToSymbol[address]
}

// LookupSymbol returns the address bound to name.
func (sr *SymbolResolver) LookupSymbol(name string) (uint32, bool) {
	addr, ok := sr.symbols[name]
	return addr, ok
}

// ResolveAddress finds the nearest symbol at or before address and the offset
// from it.
func (sr *SymbolResolver) ResolveAddress(address uint32) (symbolName string, offset uint32, found bool) {
	if name, ok := sr.addressToSymbol[address]; ok {
		return name, 0, true
	}
	if len(sr.sortedAddresses) == 0 {
		return "", 0, false
	}

	idx := sort.Search(len(sr.sortedAddresses), func(i int) bool {
		return sr.sortedAddresses[i] > address
	})
	if idx == 0 {
		return "", 0, false
	}

	nearestAddr := sr.sortedAddresses[idx-1]
	symbolName = sr.addressToSymbol[nearestAddr]
	offset = address - nearestAddr
	return symbolName, offset, true
}

// FormatAddress renders "symbol+offset (0xADDR)", or just "0xADDR" if no
// symbol covers the address.
func (sr *SymbolResolver) FormatAddress(address uint32) string {
	symbolName, offset, found := sr.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%08x", address)
	}
	if offset == 0 {
		return fmt.Sprintf("%s (0x%08x)", symbolName, address)
	}
	return fmt.Sprintf("%s+%d (0x%08x)", symbolName, offset, address)
}

// FormatAddressCompact is FormatAddress without the trailing "(0xADDR)".
func (sr *SymbolResolver) FormatAddressCompact(address uint32) string {
	symbolName, offset, found := sr.ResolveAddress(address)
	if !found {
		return fmt.Sprintf("0x%08x", address)
	}
	if offset == 0 {
		return symbolName
	}
	return fmt.Sprintf("%s+%d", symbolName, offset)
}

// HasSymbols reports whether any symbols were loaded.
func (sr *SymbolResolver) HasSymbols() bool {
	return len(sr.symbols) > 0
}

// GetSymbolCount returns the number of known symbols.
func (sr *SymbolResolver) GetSymbolCount() int {
	return len(sr.symbols)
}

// GetAllSymbols returns a copy of the name->address table.
func (sr *SymbolResolver) GetAllSymbols() map[string]uint32 {
	result := make(map[string]uint32, len(sr.symbols))
	for name, addr := range sr.symbols {
		result[name] = addr
	}
	return result
}
