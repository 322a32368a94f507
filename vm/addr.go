package vm

// Area identifies which of the five SH-4 virtual memory areas an address
// falls into, selected by its top three bits.
type Area int

const (
	AreaP0 Area = iota
	AreaP1
	AreaP2
	AreaP3
	AreaP4
)

func (a Area) String() string {
	switch a {
	case AreaP0:
		return "P0"
	case AreaP1:
		return "P1"
	case AreaP2:
		return "P2"
	case AreaP3:
		return "P3"
	case AreaP4:
		return "P4"
	default:
		return "?"
	}
}

// Target is where a decoded address should be routed.
type Target int

const (
	TargetExternal Target = iota
	TargetRegisterWindow
	TargetCacheRAM
)

// AccessKind distinguishes fetch/read/write for alignment and permission
// checks.
type AccessKind int

const (
	AccessFetch AccessKind = iota
	AccessRead
	AccessWrite
)

// Route is the result of decoding a virtual address.
type Route struct {
	Area   Area
	Target Target
	Phys   uint32 // valid physical (29-bit) address, register-window offset, or (TargetCacheRAM) the unmasked OC-RAM address
}

// areaOf classifies a virtual address by its top 3 bits.
func areaOf(v uint32) Area {
	switch v >> AreaShift {
	case 0, 1, 2, 3:
		return AreaP0
	case 4:
		return AreaP1
	case 5:
		return AreaP2
	case 6:
		return AreaP3
	default: // 7
		return AreaP4
	}
}

func widthOK(width int) bool {
	switch width {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// DecodeAddress maps a 32-bit virtual address to a Route.
// mmuEnabled governs whether P0/P3 would be TLB-translated; since the CORE
// does not implement the full TLB, P0/P3 behave as passthrough exactly like
// P1/P2 whenever the caller hasn't wired an MMU translation (mmuEnabled is
// always false until a full UTLB materializes).
func DecodeAddress(v uint32, kind AccessKind, mmuEnabled, userMode bool, oraEnabled bool) (Route, error) {
	width := 0
	_ = width // width alignment is checked by the caller with the known access width

	area := areaOf(v)

	if userMode && area != AreaP0 {
		return Route{}, NewError(ErrAddress, "user-mode access to privileged area %s at 0x%08X", area, v)
	}

	switch area {
	case AreaP4:
		off := v - P4RegionBase
		return Route{Area: area, Target: TargetRegisterWindow, Phys: off}, nil
	case AreaP0, AreaP3:
		// TLB-mapped in hardware when mmuEnabled; the CORE's MMU subset
		// treats this identically to passthrough.
		phys := v & PhysMask29
		if oraEnabled && (v&OcRamAreaMask) == OcRamAreaVal {
			return Route{Area: area, Target: TargetCacheRAM, Phys: v}, nil
		}
		return Route{Area: area, Target: TargetExternal, Phys: phys}, nil
	default: // P1, P2 always passthrough
		phys := v & PhysMask29
		if oraEnabled && (phys&OcRamAreaMask) == OcRamAreaVal {
			return Route{Area: area, Target: TargetCacheRAM, Phys: phys}, nil
		}
		return Route{Area: area, Target: TargetExternal, Phys: phys}, nil
	}
}

// CheckAlignment fails with AddressError when addr is not aligned to width.
func CheckAlignment(addr uint32, width int) error {
	if !widthOK(width) {
		return InvalidParam("width must be one of 1,2,4,8, got %d", width)
	}
	if uint32(width-1)&addr != 0 {
		return AddressError(addr, width, "misaligned access")
	}
	return nil
}

// InOcRamArea reports whether phys falls in the operand-cache-as-RAM window.
func InOcRamArea(phys uint32) bool {
	return phys&OcRamAreaMask == OcRamAreaVal
}
