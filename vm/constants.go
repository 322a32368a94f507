package vm

// ============================================================================
// SH-4 Architecture Constants
// ============================================================================
// These values are fixed by the Hitachi SH-4 architecture manual and should
// not be modified.

const (
	// Instruction encoding
	InstructionSize = 2 // bytes; every SH-4 opcode is a fixed 16-bit word

	// General register counts
	BankedRegisterCount = 8  // R0-R7 exist in two banks
	UnbankedRegisterCount = 8  // R8-R15 are not banked
	GeneralRegisterSlots  = 24 // BankedRegisterCount*2 + UnbankedRegisterCount

	// Sign bit helpers
	SignBitPos32 = 31
	SignBitMask32 = 0x80000000
)

// Status Register (SR) bit layout.
const (
	SRBitT     = 0 // true/false condition or carry/borrow
	SRBitS     = 1 // saturation mode for MAC instructions
	SRBitIMASK = 4 // 4-bit interrupt mask, bits 4-7
	SRBitQ     = 8
	SRBitM     = 9
	SRBitFD    = 15 // FPU disable
	SRBitBL    = 28 // interrupt block (1 == masked)
	SRBitRB    = 29 // general register bank select
	SRBitMD    = 30 // processor mode (0 = user, 1 = privileged)

	SRMaskT     = 1 << SRBitT
	SRMaskS     = 1 << SRBitS
	SRMaskIMASK = 0xF << SRBitIMASK
	SRMaskQ     = 1 << SRBitQ
	SRMaskM     = 1 << SRBitM
	SRMaskFD    = 1 << SRBitFD
	SRMaskBL    = 1 << SRBitBL
	SRMaskRB    = 1 << SRBitRB
	SRMaskMD    = 1 << SRBitMD
)

// FPSCR bit layout.
const (
	FPSCRBitRM     = 0  // rounding mode, 2 bits
	FPSCRBitFlag   = 2  // FPU exception flags, 5 bits
	FPSCRBitEnable = 7  // FPU exception enable, 5 bits
	FPSCRBitCause  = 12 // FPU exception cause, 5 bits
	FPSCRBitDN     = 18 // denormal mode
	FPSCRBitPR     = 19 // precision: 0 = single, 1 = double
	FPSCRBitSZ     = 20 // transfer size for fmov
	FPSCRBitFR     = 21 // FPU bank select

	FPSCRMaskRM = 0x3 << FPSCRBitRM
	FPSCRMaskDN = 1 << FPSCRBitDN
	FPSCRMaskPR = 1 << FPSCRBitPR
	FPSCRMaskSZ = 1 << FPSCRBitSZ
	FPSCRMaskFR = 1 << FPSCRBitFR
)

// Cache Control Register (CCR) bit layout. CCR itself is an on-chip register
// reachable through the P4 register window; the CORE keeps its bits as a
// dedicated struct (see CacheControl in memory.go) rather than modeling the
// register-window byte layout, since nothing else in the CORE needs to poke
// at CCR through ordinary loads/stores.
const (
	CCRBitOCE = 0  // operand cache enable
	CCRBitWT  = 1  // write-through (0 = copy-back)
	CCRBitCB  = 2  // copy-back override for P1 area
	CCRBitOIX = 3  // operand cache index enable
	CCRBitORA = 5  // operand cache RAM mode
	CCRBitOIX2 = 7 // (unused placeholder to keep numbering documented)
	CCRBitICE = 8  // instruction cache enable
	CCRBitIIX = 12 // instruction cache index enable
)

// Physical/virtual address layout.
const (
	AreaShift    = 29         // top 3 bits select P0..P4
	AreaMask     = 0x7        // 3-bit area selector
	PhysMask29   = 0x1FFFFFFF // low 29 bits form the physical address

	// P4 on-chip register window and its mirror in physical area 7.
	P4RegionBase   = 0xFF000000
	P4RegionTop    = 0xFFFFFFFF
	Area7RegBase   = 0x1F000000
	Area7RegTop    = 0x1FFFFFFF

	// Operand-cache-as-RAM window test, matching the hardware's
	// in_oc_ram_area check.
	OcRamAreaMask = 0xFC000000
	OcRamAreaVal  = 0x7C000000
)

// CodeSegmentStart is the conventional load address user programs target
// (P1 cached area), used by the loader and debugger as a floor below which
// an entry point is assumed to need its own low-memory region rather than
// sitting in the normal P1 code area.
const CodeSegmentStart = 0x8C000000

// StackSegmentStart/StackSegmentSize describe the conventional top-of-stack
// the loader and debugger initialize R15 to — a software calling
// convention, not an SH-4 architectural feature (the CPU has no dedicated
// stack-pointer register). Placed near the top of the default 16MB RAM
// image, leaving headroom below 0xFFFFFFFF for the descending stack.
const (
	StackSegmentSize  = 0x10000
	StackSegmentStart = 0x8D000000
)

// Reset-time architectural state.
const (
	ResetVectorPC = 0xA0000000
	ResetSR       = SRMaskMD | SRMaskBL | SRMaskIMASK | SRMaskRB
)

// Register name constants for the 16 general-purpose register positions
// (R0-R15, where R15 is banked the same as R0-R7 would be were it not
// unbanked — R8-R15 simply never consult SR.RB).
const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

const (
	GBRIndex = iota
	VBRIndex
	SSRIndex
	SPCIndex
	SGRIndex
	DBRIndex
)

// FPU register file shape.
const (
	FloatRegCount  = 16
	DoubleRegCount = 8
)

// Cache geometry shared by OC and IC.
const (
	CacheLineSize  = 32 // bytes per line
	LongsPerLine   = CacheLineSize / 4
	OcacheLineCount = 512
	IcacheLineCount = 256

	OcacheKeyTagShift = 2
	OcacheKeyTagMask  = 0x7FFFF << OcacheKeyTagShift
	OcacheKeyValidBit = 1 << 0
	OcacheKeyDirtyBit = 1 << 1

	IcacheKeyTagShift = 2
	IcacheKeyTagMask  = 0x7FFFF << IcacheKeyTagShift
	IcacheKeyValidBit = 1 << 0
)

// DebugAssertions toggles runtime sanity checks for corner cases flagged as
// worth revisiting (write-back address reconstruction dropping bits 12/13
// without checking them against the tag). Off by default; no test in the
// repository turns it on.
var DebugAssertions = false
