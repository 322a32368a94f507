package vm

import "encoding/binary"

// MemoryPermission enumerates segment permission bits, trimmed to what a
// flat physical RAM region needs.
type MemoryPermission byte

const (
	PermNone    MemoryPermission = 0
	PermRead    MemoryPermission = 1 << 0
	PermWrite   MemoryPermission = 1 << 1
	PermExecute MemoryPermission = 1 << 2
)

// MemorySegment is a named, permissioned byte range. Code/data/heap/stack
// all collapse to the single flat 29-bit physical RAM region external
// memory actually is on this part.
type MemorySegment struct {
	Start       uint32
	Size        uint32
	Data        []byte
	Permissions MemoryPermission
	Name        string
}

// ExternalMemory is the MemoryBus the caches fall through to: the physical
// RAM segment behind area P1/P2/P3 passthrough. It applies the same
// permission/alignment discipline across physical addresses instead of a
// segmented virtual layout.
type ExternalMemory struct {
	RAM         *MemorySegment
	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// NewExternalMemory allocates a single read/write/execute RAM segment
// covering [0, size) of physical address space.
func NewExternalMemory(size uint32) *ExternalMemory {
	return &ExternalMemory{
		RAM: &MemorySegment{
			Start:       0,
			Size:        size,
			Data:        make([]byte, size),
			Permissions: PermRead | PermWrite | PermExecute,
			Name:        "ram",
		},
	}
}

func (m *ExternalMemory) span(phys uint32, n int) ([]byte, error) {
	seg := m.RAM
	if phys < seg.Start || uint64(phys)+uint64(n) > uint64(seg.Start)+uint64(seg.Size) {
		return nil, NewError(ErrAddress, "physical address 0x%08X (len %d) outside RAM segment '%s' [0x%08X, 0x%08X)",
			phys, n, seg.Name, seg.Start, seg.Start+seg.Size)
	}
	off := phys - seg.Start
	return seg.Data[off : off+uint32(n)], nil
}

// ReadPhys implements MemoryBus.
func (m *ExternalMemory) ReadPhys(dst []byte, phys uint32) error {
	if m.RAM.Permissions&PermRead == 0 {
		return NewError(ErrAddress, "read permission denied for segment '%s' at 0x%08X", m.RAM.Name, phys)
	}
	src, err := m.span(phys, len(dst))
	if err != nil {
		return err
	}
	copy(dst, src)
	m.AccessCount++
	m.ReadCount++
	return nil
}

// WritePhys implements MemoryBus.
func (m *ExternalMemory) WritePhys(src []byte, phys uint32) error {
	if m.RAM.Permissions&PermWrite == 0 {
		return NewError(ErrAddress, "write permission denied for segment '%s' at 0x%08X", m.RAM.Name, phys)
	}
	dst, err := m.span(phys, len(src))
	if err != nil {
		return err
	}
	copy(dst, src)
	m.AccessCount++
	m.WriteCount++
	return nil
}

// CheckExecutePermission fails unless phys..phys+n is inside a segment
// carrying PermExecute, used by the fetch path regardless of cache state.
func (m *ExternalMemory) CheckExecutePermission(phys uint32, n int) error {
	if _, err := m.span(phys, n); err != nil {
		return err
	}
	if m.RAM.Permissions&PermExecute == 0 {
		return NewError(ErrAddress, "execute permission denied for segment '%s' at 0x%08X", m.RAM.Name, phys)
	}
	return nil
}

// CacheControlRegister is CCR, consulted by Memory to decide whether a
// fetch/read/write goes through Icache/Ocache and in which mode.
type CacheControlRegister struct {
	raw uint32
}

func NewCacheControlRegister(v uint32) CacheControlRegister { return CacheControlRegister{raw: v} }
func (c CacheControlRegister) Uint32() uint32                { return c.raw }
func (c *CacheControlRegister) SetUint32(v uint32)            { c.raw = v }

func (c CacheControlRegister) OCE() bool { return c.raw&(1<<CCRBitOCE) != 0 }
func (c CacheControlRegister) WT() bool  { return c.raw&(1<<CCRBitWT) != 0 }
func (c CacheControlRegister) CB() bool  { return c.raw&(1<<CCRBitCB) != 0 }
func (c CacheControlRegister) OIX() bool { return c.raw&(1<<CCRBitOIX) != 0 }
func (c CacheControlRegister) ORA() bool { return c.raw&(1<<CCRBitORA) != 0 }
func (c CacheControlRegister) ICE() bool { return c.raw&(1<<CCRBitICE) != 0 }
func (c CacheControlRegister) IIX() bool { return c.raw&(1<<CCRBitIIX) != 0 }

// RegisterWindow services the P4/area-7 on-chip register space memory
// routes to when DecodeAddress returns TargetRegisterWindow. The CORE
// implements only CCR in that space directly (inline in ReadData/WriteData);
// a host embedding the CORE can provide a fuller peripheral map by
// supplying its own RegisterWindow.
type RegisterWindow interface {
	ReadRegister(offset uint32, width int) (uint64, error)
	WriteRegister(offset uint32, width int, value uint64) error
}

// ccrWindowOffset is the area-7 offset of CCR relative to P4RegionBase,
// matching the real SH-4 address 0xFF00001C.
const ccrWindowOffset = 0x1C

// Memory is the funnel every instruction's fetch/load/store passes
// through: it consults CCR to decide whether Icache/Ocache participate,
// then falls through to External, implementing the layered cache-and-RAM
// model the CCR bits describe.
type Memory struct {
	External *ExternalMemory
	OC       Ocache
	IC       Icache
	CCR      CacheControlRegister
	Window   RegisterWindow
}

// NewMemory builds a Memory with size bytes of external RAM and caches
// disabled (CCR all zero), matching architectural reset.
func NewMemory(size uint32) *Memory {
	return &Memory{External: NewExternalMemory(size)}
}

func (m *Memory) route(addr uint32, kind AccessKind, userMode bool) (Route, error) {
	return DecodeAddress(addr, kind, false, userMode, m.CCR.ORA())
}

// ReadInst fetches the 16-bit opcode at a virtual address.
func (m *Memory) ReadInst(addr uint32, userMode bool) (uint16, error) {
	if err := CheckAlignment(addr, 2); err != nil {
		return 0, err
	}
	route, err := m.route(addr, AccessFetch, userMode)
	if err != nil {
		return 0, err
	}
	if route.Target == TargetRegisterWindow {
		return 0, NewError(ErrAddress, "cannot fetch instructions from the register window at 0x%08X", addr)
	}
	if err := m.External.CheckExecutePermission(route.Phys, 2); err != nil {
		return 0, err
	}
	if m.CCR.ICE() {
		return m.IC.FetchInstruction(m.External, route.Phys, m.CCR.IIX())
	}
	var buf [2]byte
	if err := m.External.ReadPhys(buf[:], route.Phys); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadData loads width bytes (1/2/4/8) from a virtual address.
func (m *Memory) ReadData(addr uint32, width int, userMode bool) (uint64, error) {
	if err := CheckAlignment(addr, width); err != nil {
		return 0, err
	}
	route, err := m.route(addr, AccessRead, userMode)
	if err != nil {
		return 0, err
	}
	switch route.Target {
	case TargetRegisterWindow:
		if route.Phys == ccrWindowOffset && width == 4 {
			return uint64(m.CCR.Uint32()), nil
		}
		if m.Window == nil {
			return 0, NewError(ErrAddress, "no register window handler for offset 0x%08X", route.Phys)
		}
		return m.Window.ReadRegister(route.Phys, width)
	case TargetCacheRAM:
		return m.OC.Read(m.External, route.Phys, width, m.CCR.OIX(), true)
	default:
		if m.CCR.OCE() {
			return m.OC.Read(m.External, route.Phys, width, m.CCR.OIX(), false)
		}
		var buf [8]byte
		if err := m.External.ReadPhys(buf[:width], route.Phys); err != nil {
			return 0, err
		}
		return decodeWidth(buf[:width]), nil
	}
}

// WriteData stores width bytes of value at a virtual address.
func (m *Memory) WriteData(addr uint32, width int, value uint64, userMode bool) error {
	if err := CheckAlignment(addr, width); err != nil {
		return err
	}
	route, err := m.route(addr, AccessWrite, userMode)
	if err != nil {
		return err
	}
	switch route.Target {
	case TargetRegisterWindow:
		if route.Phys == ccrWindowOffset && width == 4 {
			m.CCR.SetUint32(uint32(value))
			m.IC.InvalidateAll()
			return nil
		}
		if m.Window == nil {
			return NewError(ErrAddress, "no register window handler for offset 0x%08X", route.Phys)
		}
		return m.Window.WriteRegister(route.Phys, width, value)
	case TargetCacheRAM:
		return m.OC.Write(m.External, route.Phys, width, value, CopyBack, m.CCR.OIX(), true)
	default:
		if m.CCR.OCE() {
			// CB selects the write mode for P1, WT for every other area.
			mode := CopyBack
			if (route.Area == AreaP1 && !m.CCR.CB()) || (route.Area != AreaP1 && m.CCR.WT()) {
				mode = WriteThrough
			}
			return m.OC.Write(m.External, route.Phys, width, value, mode, m.CCR.OIX(), false)
		}
		buf := make([]byte, width)
		encodeWidth(buf, value)
		return m.External.WritePhys(buf, route.Phys)
	}
}
