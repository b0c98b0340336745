package machine

// MemoryOpKind distinguishes a scratch-pad read from a write.
type MemoryOpKind int

const (
	MemFetch MemoryOpKind = iota
	MemStore
)

// MemoryOp describes a single scratch-pad access a handler wants applied.
// For MemFetch, Reg receives Scratchpad[Addr]; for MemStore,
// Scratchpad[Addr] receives the current value of Reg.
type MemoryOp struct {
	Kind MemoryOpKind
	Addr byte
	Reg  byte
}

// StateDelta is the pure result of decoding and evaluating one instruction,
// per spec §4.4: "Each handler ... returns a StateDelta ... Apply the
// delta: overwrite registers and flags ..." Handlers never mutate
// MachineState directly; Step applies the delta afterward. Zero-value
// fields mean "no change" except NextPC: when a handler leaves it zero and
// the instruction is not a control-flow op, Step sets the next PC to pc+1
// after the handler returns, so a handler that falls through normally
// doesn't need to set it.
type StateDelta struct {
	RegWritten bool
	Reg        byte
	Value      byte

	ZeroSet bool
	Zero    bool
	CarrySet bool
	Carry    bool

	NextPC uint16

	PushReturn bool
	ReturnAddr uint16
	DoReturn   bool

	MemoryOp *MemoryOp

	BankSet bool
	Bank    byte

	InterruptSet     bool
	InterruptEnabled bool
}
