package debugger

// Code View Context Constants
const (
	// CodeContextLinesBefore is the default number of lines to show before PC in the full listing
	CodeContextLinesBefore = 10

	// CodeContextLinesAfter is the default number of lines to show after PC in the full listing
	CodeContextLinesAfter = 20

	// CodeContextLinesBeforeCompact is the number of lines to show before PC in compact views
	CodeContextLinesBeforeCompact = 3

	// CodeContextLinesAfterCompact is the number of lines to show after PC in compact views
	CodeContextLinesAfterCompact = 5
)

// Scratch-pad Display Constants, sized for the 64-byte scratch-pad (spec §3).
const (
	// ScratchpadDisplayColumns is the number of bytes per row in the scratch-pad hex dump.
	ScratchpadDisplayColumns = 16

	// ScratchpadDisplayRows is the number of rows needed to show the whole scratch-pad.
	ScratchpadDisplayRows = ScratchpadSize / ScratchpadDisplayColumns
)

// ScratchpadSize mirrors machine.ScratchpadSize so this file doesn't need to
// import machine just for a display constant.
const ScratchpadSize = 64

// Call Stack Display Constants
const (
	// CallStackInspectionMaxDepth is the maximum number of frames `backtrace` prints.
	CallStackInspectionMaxDepth = 30
)

// Register Display Constants
const (
	// RegisterGroupSize is the number of registers (of 16) displayed per row.
	RegisterGroupSize = 8
)
