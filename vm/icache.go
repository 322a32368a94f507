package vm

import "encoding/binary"

// Icache is the 8KB read-only instruction cache: 256 lines of 32 bytes,
// each with a valid/tag key. Ported from
// _examples/original_source/src/hw/sh4/Icache.cpp — there is no dirty bit
// and no write path, since the SH-4 never executes a store into IC.
type Icache struct {
	keys [IcacheLineCount]uint32
	data [IcacheLineCount * CacheLineSize]byte
}

func (ic *Icache) Reset() {
	for i := range ic.keys {
		ic.keys[i] = 0
	}
	for i := range ic.data {
		ic.data[i] = 0
	}
}

func icacheTagFromPaddr(paddr uint32) uint32 {
	return (paddr & 0x1FFFFC00) >> 10
}

func icacheLineGetTag(key uint32) uint32 {
	return (key & IcacheKeyTagMask) >> IcacheKeyTagShift
}

func icacheLineSetTag(key uint32, tag uint32) uint32 {
	return (key &^ uint32(IcacheKeyTagMask)) | (tag << IcacheKeyTagShift)
}

// selector mirrors sh4_icache.cpp's cache_selector: bits 11..5 of paddr,
// ORed with bit 12 (index-disabled) or the shifted bit 25 (index-enabled).
func icacheSelector(paddr uint32, indexEnable bool) uint32 {
	entSel := paddr & 0xFE0
	if indexEnable {
		entSel |= (paddr & (1 << 25)) >> 13
	} else {
		entSel |= paddr & (1 << 12)
	}
	return entSel >> 5
}

func (ic *Icache) check(line uint32, paddr uint32) bool {
	return icacheLineGetTag(ic.keys[line]) == icacheTagFromPaddr(paddr)
}

func (ic *Icache) lineBytes(line uint32) []byte {
	start := int(line) * CacheLineSize
	return ic.data[start : start+CacheLineSize]
}

func (ic *Icache) load(mem MemoryBus, line uint32, paddr uint32) error {
	if err := mem.ReadPhys(ic.lineBytes(line), paddr&^31&PhysMask29); err != nil {
		return WrapError(ErrExternalIO, err, "instruction cache fill at 0x%08X", paddr)
	}
	ic.keys[line] = icacheLineSetTag(ic.keys[line], icacheTagFromPaddr(paddr))
	ic.keys[line] |= IcacheKeyValidBit
	return nil
}

// Invalidate clears VALID for the line covering paddr if it holds paddr's
// tag. CCR writes use InvalidateAll instead.
func (ic *Icache) Invalidate(paddr uint32, indexEnable bool) {
	line := icacheSelector(paddr, indexEnable)
	if ic.check(line, paddr) {
		ic.keys[line] &^= IcacheKeyValidBit
	}
}

// InvalidateAll clears VALID for every line (CCR.ICI).
func (ic *Icache) InvalidateAll() {
	for i := range ic.keys {
		ic.keys[i] &^= IcacheKeyValidBit
	}
}

// FetchInstruction returns the 16-bit opcode at paddr, filling the cache
// line on a miss. paddr must already be halfword-aligned; the interpreter
// checks alignment before calling this.
func (ic *Icache) FetchInstruction(mem MemoryBus, paddr uint32, indexEnable bool) (uint16, error) {
	line := icacheSelector(paddr, indexEnable)
	if ic.keys[line]&IcacheKeyValidBit == 0 || !ic.check(line, paddr) {
		if err := ic.load(mem, line, paddr); err != nil {
			return 0, err
		}
	}
	off := paddr & 0x1F
	return binary.LittleEndian.Uint16(ic.lineBytes(line)[off : off+2]), nil
}

// ReadByte and ReadHalf read data through IC, filling the line on a miss.
// They are exported for completeness; nothing else in the repository calls
// them.
func (ic *Icache) ReadByte(mem MemoryBus, paddr uint32, indexEnable bool) (byte, error) {
	line := icacheSelector(paddr, indexEnable)
	if ic.keys[line]&IcacheKeyValidBit == 0 || !ic.check(line, paddr) {
		if err := ic.load(mem, line, paddr); err != nil {
			return 0, err
		}
	}
	return ic.lineBytes(line)[paddr&0x1F], nil
}

func (ic *Icache) ReadHalf(mem MemoryBus, paddr uint32, indexEnable bool) (uint16, error) {
	if paddr&1 != 0 {
		lo, err := ic.ReadByte(mem, paddr, indexEnable)
		if err != nil {
			return 0, err
		}
		hi, err := ic.ReadByte(mem, paddr+1, indexEnable)
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil
	}
	return ic.FetchInstruction(mem, paddr, indexEnable)
}
