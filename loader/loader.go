// Package loader bridges an assembled assemble.Program into a runnable
// machine.MachineState, the way the teacher's loader package bridges a
// parsed parser.Program into a vm.VM's memory image.
package loader

import (
	"github.com/lookbusy1344/picosim/assemble"
	"github.com/lookbusy1344/picosim/machine"
)

// Load installs prog's instruction table into a fresh MachineState.
// buildSig becomes the value HWBUILD reads back; ports receives every
// INPUT/OUTPUT access. A nil ports uses machine.NopPorts.
func Load(prog *assemble.Program, buildSig byte, ports machine.PortHandler) *machine.MachineState {
	m := machine.NewMachineState(buildSig, ports)
	m.LoadProgram(prog.InstructionTable())
	return m
}

// LoadSource assembles source and loads the result, or returns the
// assembler's diagnostics.
func LoadSource(source string, buildSig byte, ports machine.PortHandler) (*machine.MachineState, *assemble.ErrorList) {
	prog, errs := assemble.Assemble(source)
	if errs.HasErrors() {
		return nil, errs
	}
	return Load(prog, buildSig, ports), nil
}

// LoadFile assembles the file at path and loads the result, or returns the
// assembler's diagnostics.
func LoadFile(path string, buildSig byte, ports machine.PortHandler) (*machine.MachineState, *assemble.ErrorList) {
	prog, errs := assemble.AssembleFile(path)
	if errs.HasErrors() {
		return nil, errs
	}
	return Load(prog, buildSig, ports), nil
}
