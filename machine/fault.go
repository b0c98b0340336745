package machine

import "fmt"

// Fault is a runtime error that aborts a run, per spec §7: "the
// interpreter stops at the first runtime fault." It carries enough context
// (PC and mnemonic) for a host to report exactly where execution died.
type Fault struct {
	PC       uint16
	Mnemonic string
	Message  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at %03X (%s): %s", f.PC, f.Mnemonic, f.Message)
}

func fault(pc uint16, mnemonic, format string, args ...interface{}) *Fault {
	return &Fault{PC: pc, Mnemonic: mnemonic, Message: fmt.Sprintf(format, args...)}
}
