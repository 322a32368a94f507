package vm

import "encoding/binary"

// MemoryBus is the external collaborator the caches fall through to on a
// miss or write-back. phys is always a 29-bit physical address.
type MemoryBus interface {
	ReadPhys(dst []byte, phys uint32) error
	WritePhys(src []byte, phys uint32) error
}

// WriteMode selects copy-back or write-through semantics for Ocache.Write,
// a sum type in place of a boolean flag.
type WriteMode int

const (
	CopyBack WriteMode = iota
	WriteThrough
)

// Ocache is the 16KB two-way-selectable operand cache: 512 lines of 32
// bytes, each with a valid/dirty/tag key.
type Ocache struct {
	keys [OcacheLineCount]uint32
	data [OcacheLineCount * CacheLineSize]byte
}

// Reset clears every line to the all-zero state (construction / hard
// reset).
func (oc *Ocache) Reset() {
	for i := range oc.keys {
		oc.keys[i] = 0
	}
	for i := range oc.data {
		oc.data[i] = 0
	}
}

func ocacheTagFromPaddr(paddr uint32) uint32 {
	return (paddr & 0x1FFFFC00) >> 10
}

func ocacheLineGetTag(key uint32) uint32 {
	return (key & OcacheKeyTagMask) >> OcacheKeyTagShift
}

func ocacheLineSetTag(key uint32, tag uint32) uint32 {
	return (key &^ uint32(OcacheKeyTagMask)) | (tag << OcacheKeyTagShift)
}

// selector extracts the line index for paddr: bits 12..5 of
// paddr, with bit 13 or (index-enable) bit 25 as index bit 8, and
// (for the cache-as-RAM window) with index bit 7 forced to zero.
func ocacheSelector(paddr uint32, indexEnable, cacheAsRAM bool) uint32 {
	entSel := (paddr & 0x1FE0) >> 5
	if indexEnable {
		entSel |= (paddr & (1 << 25)) >> 17
	} else {
		entSel |= (paddr & (1 << 13)) >> 5
	}
	if cacheAsRAM {
		entSel &^= 1 << 7
	}
	return entSel
}

// ocacheRAMOffset returns the byte offset into oc.data for a cache-as-RAM access:
// bit 7/8 pick which 8KB half of the cache backs the RAM window.
func ocacheRAMOffset(paddr uint32, indexEnable bool) int {
	areaOffset := paddr & 0xFFF
	mask := uint32(1 << 13)
	if indexEnable {
		mask = 1 << 25
	}
	var areaStart int
	if paddr&mask != 0 {
		areaStart = CacheLineSize * 0x180
	} else {
		areaStart = CacheLineSize * 0x80
	}
	return areaStart + int(areaOffset)
}

func (oc *Ocache) check(line uint32, paddr uint32) bool {
	return ocacheLineGetTag(oc.keys[line]) == ocacheTagFromPaddr(paddr)
}

func (oc *Ocache) lineBytes(line uint32) []byte {
	start := int(line) * CacheLineSize
	return oc.data[start : start+CacheLineSize]
}

// load fills line from external memory.
func (oc *Ocache) load(mem MemoryBus, line uint32, paddr uint32) error {
	if err := mem.ReadPhys(oc.lineBytes(line), paddr&^31&PhysMask29); err != nil {
		return WrapError(ErrExternalIO, err, "operand cache fill at 0x%08X", paddr)
	}
	oc.keys[line] = ocacheLineSetTag(oc.keys[line], ocacheTagFromPaddr(paddr))
	oc.keys[line] |= OcacheKeyValidBit
	oc.keys[line] &^= OcacheKeyDirtyBit
	return nil
}

// writeBack pushes line to external memory and clears DIRTY. The physical
// address is reconstructed from the tag and line index; bits 12 and 13 are
// unconditionally cleared so OIX/ORA aliasing can't produce an ambiguous
// reconstruction.
func (oc *Ocache) writeBack(mem MemoryBus, line uint32) error {
	paddr := (ocacheLineGetTag(oc.keys[line]) << 10) & (0x7FFFF << 10)
	paddr |= (line << 5) &^ 0x3000

	if DebugAssertions {
		if ocacheTagFromPaddr(paddr) != ocacheLineGetTag(oc.keys[line]) {
			return NewError(ErrIntegrity, "write-back address 0x%08X does not round-trip to line %d's tag", paddr, line)
		}
	}

	if err := mem.WritePhys(oc.lineBytes(line), paddr&^31&PhysMask29); err != nil {
		return WrapError(ErrExternalIO, err, "operand cache write-back at 0x%08X", paddr)
	}
	oc.keys[line] &^= OcacheKeyDirtyBit
	return nil
}

// Alloc ensures a line is resident for paddr without loading its contents
// from memory (ALLOCO / MOVCA.L use this).
func (oc *Ocache) Alloc(mem MemoryBus, paddr uint32, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	key := oc.keys[line]

	if key&OcacheKeyValidBit != 0 && oc.check(line, paddr) {
		return nil // already resident
	}
	if key&OcacheKeyValidBit != 0 && key&OcacheKeyDirtyBit != 0 {
		if err := oc.writeBack(mem, line); err != nil {
			return err
		}
	}
	oc.keys[line] = ocacheLineSetTag(oc.keys[line], ocacheTagFromPaddr(paddr))
	oc.keys[line] |= OcacheKeyValidBit
	oc.keys[line] &^= OcacheKeyDirtyBit
	return nil
}

// Invalidate clears VALID for a matching resident line without writing it
// back.
func (oc *Ocache) Invalidate(paddr uint32, indexEnable, cacheAsRAM bool) {
	if cacheAsRAM && InOcRamArea(paddr) {
		return
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	if oc.check(line, paddr) {
		oc.keys[line] &^= OcacheKeyValidBit
	}
}

// Purge writes back a dirty resident line (if any) and clears VALID.
func (oc *Ocache) Purge(mem MemoryBus, paddr uint32, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	if oc.check(line, paddr) && oc.keys[line]&OcacheKeyValidBit != 0 {
		if oc.keys[line]&OcacheKeyDirtyBit != 0 {
			if err := oc.writeBack(mem, line); err != nil {
				return err
			}
		}
		oc.keys[line] &^= OcacheKeyValidBit
	}
	return nil
}

// WriteBack pushes a dirty resident line (if any) to memory but, unlike
// Purge, leaves it VALID (OCBWB's semantics: flush without evicting).
func (oc *Ocache) WriteBack(mem MemoryBus, paddr uint32, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	if oc.check(line, paddr) && oc.keys[line]&OcacheKeyValidBit != 0 && oc.keys[line]&OcacheKeyDirtyBit != 0 {
		return oc.writeBack(mem, line)
	}
	return nil
}

// Prefetch loads the line covering paddr unconditionally, clearing DIRTY.
func (oc *Ocache) Prefetch(mem MemoryBus, paddr uint32, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	return oc.load(mem, line, paddr)
}

// readByte and writeByteCB/writeByteWT are the width-1 primitives every
// other width is built from for unaligned accesses, matching the reference
// implementation's "lazy" byte-by-byte fallback.
func (oc *Ocache) readByte(mem MemoryBus, paddr uint32, indexEnable, cacheAsRAM bool) (byte, error) {
	if cacheAsRAM && InOcRamArea(paddr) {
		return oc.data[ocacheRAMOffset(paddr, indexEnable)], nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	key := oc.keys[line]

	switch {
	case key&OcacheKeyValidBit != 0 && oc.check(line, paddr):
		// hit
	case key&OcacheKeyValidBit != 0 && key&OcacheKeyDirtyBit != 0:
		if err := oc.writeBack(mem, line); err != nil {
			return 0, err
		}
		if err := oc.load(mem, line, paddr); err != nil {
			return 0, err
		}
	default:
		if err := oc.load(mem, line, paddr); err != nil {
			return 0, err
		}
	}
	idx := paddr & 0x1F
	return oc.lineBytes(line)[idx], nil
}

func (oc *Ocache) writeByteCB(mem MemoryBus, paddr uint32, data byte, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		oc.data[ocacheRAMOffset(paddr, indexEnable)] = data
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	idx := paddr & 0x1F

	if oc.check(line, paddr) {
		if oc.keys[line]&OcacheKeyValidBit == 0 {
			if err := oc.load(mem, line, paddr); err != nil {
				return err
			}
		}
	} else if oc.keys[line]&OcacheKeyValidBit != 0 {
		if oc.keys[line]&OcacheKeyDirtyBit != 0 {
			if err := oc.writeBack(mem, line); err != nil {
				return err
			}
		}
		if err := oc.load(mem, line, paddr); err != nil {
			return err
		}
	} else {
		if err := oc.load(mem, line, paddr); err != nil {
			return err
		}
	}
	oc.lineBytes(line)[idx] = data
	oc.keys[line] |= OcacheKeyDirtyBit
	return nil
}

func (oc *Ocache) writeByteWT(mem MemoryBus, paddr uint32, data byte, indexEnable, cacheAsRAM bool) error {
	if cacheAsRAM && InOcRamArea(paddr) {
		oc.data[ocacheRAMOffset(paddr, indexEnable)] = data
		return nil
	}
	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	if oc.check(line, paddr) && oc.keys[line]&OcacheKeyValidBit != 0 {
		oc.lineBytes(line)[paddr&0x1F] = data
	}
	buf := [1]byte{data}
	if err := mem.WritePhys(buf[:], paddr&PhysMask29); err != nil {
		return WrapError(ErrExternalIO, err, "write-through at 0x%08X", paddr)
	}
	return nil
}

// Read returns width bytes (1/2/4/8) from paddr through the cache.
func (oc *Ocache) Read(mem MemoryBus, paddr uint32, width int, indexEnable, cacheAsRAM bool) (uint64, error) {
	if !widthOK(width) {
		return 0, InvalidParam("operand cache read width %d invalid", width)
	}
	if paddr&uint32(width-1) != 0 {
		var buf [8]byte
		for i := 0; i < width; i++ {
			b, err := oc.readByte(mem, paddr+uint32(i), indexEnable, cacheAsRAM)
			if err != nil {
				return 0, err
			}
			buf[i] = b
		}
		return decodeWidth(buf[:width]), nil
	}

	if cacheAsRAM && InOcRamArea(paddr) {
		off := ocacheRAMOffset(paddr, indexEnable)
		return decodeWidth(oc.data[off : off+width]), nil
	}

	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	key := oc.keys[line]

	switch {
	case key&OcacheKeyValidBit != 0 && oc.check(line, paddr):
		// hit
	case key&OcacheKeyValidBit != 0 && key&OcacheKeyDirtyBit != 0:
		if err := oc.writeBack(mem, line); err != nil {
			return 0, err
		}
		if err := oc.load(mem, line, paddr); err != nil {
			return 0, err
		}
	default:
		if err := oc.load(mem, line, paddr); err != nil {
			return 0, err
		}
	}
	byteOff := paddr & 0x1F
	return decodeWidth(oc.lineBytes(line)[byteOff : byteOff+uint32(width)]), nil
}

// Write stores width bytes of data at paddr through the cache under mode.
func (oc *Ocache) Write(mem MemoryBus, paddr uint32, width int, data uint64, mode WriteMode, indexEnable, cacheAsRAM bool) error {
	if !widthOK(width) {
		return InvalidParam("operand cache write width %d invalid", width)
	}
	buf := make([]byte, width)
	encodeWidth(buf, data)

	if paddr&uint32(width-1) != 0 {
		for i := 0; i < width; i++ {
			var err error
			if mode == CopyBack {
				err = oc.writeByteCB(mem, paddr+uint32(i), buf[i], indexEnable, cacheAsRAM)
			} else {
				err = oc.writeByteWT(mem, paddr+uint32(i), buf[i], indexEnable, cacheAsRAM)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	if cacheAsRAM && InOcRamArea(paddr) {
		copy(oc.data[ocacheRAMOffset(paddr, indexEnable):], buf)
		return nil
	}

	line := ocacheSelector(paddr, indexEnable, cacheAsRAM)
	byteOff := paddr & 0x1F

	if mode == WriteThrough {
		if oc.check(line, paddr) && oc.keys[line]&OcacheKeyValidBit != 0 {
			copy(oc.lineBytes(line)[byteOff:], buf)
		}
		if err := mem.WritePhys(buf, paddr&PhysMask29); err != nil {
			return WrapError(ErrExternalIO, err, "write-through at 0x%08X", paddr)
		}
		return nil
	}

	// copy-back
	if oc.check(line, paddr) {
		if oc.keys[line]&OcacheKeyValidBit == 0 {
			if err := oc.load(mem, line, paddr); err != nil {
				return err
			}
		}
	} else if oc.keys[line]&OcacheKeyValidBit != 0 {
		if oc.keys[line]&OcacheKeyDirtyBit != 0 {
			if err := oc.writeBack(mem, line); err != nil {
				return err
			}
		}
		if err := oc.load(mem, line, paddr); err != nil {
			return err
		}
	} else {
		if err := oc.load(mem, line, paddr); err != nil {
			return err
		}
	}
	copy(oc.lineBytes(line)[byteOff:], buf)
	oc.keys[line] |= OcacheKeyDirtyBit
	return nil
}

func decodeWidth(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		return 0
	}
}

func encodeWidth(dst []byte, v uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}
