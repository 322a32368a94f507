package encoder

// Literal Pool Address Calculation, targeted at the SH-4's narrower
// PC-relative reach: MOV.W @(disp,PC)
// reaches +510 bytes, MOV.L @(disp,PC) reaches +1020 bytes (disp8, scaled
// by 2 or 4). The loader places every literal in one pool after the
// program's code and data; .ltorg locations are not used, and whether a
// literal lies within that reach is not checked when it is placed.
const (
	LiteralPoolOffset        = 0x400      // 1KB, about the longword reach; pool placement does not use it
	LiteralPoolAlignmentMask = 0xFFFFFFFC // align addresses to 4-byte boundaries

	// WordSize is the size of a single SH-4 instruction, used by callers
	// that still think in per-instruction strides.
	WordSize = 2
)
