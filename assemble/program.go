package assemble

import (
	"sort"

	"github.com/lookbusy1344/picosim/machine"
)

// Entry is one emitted (address, instruction) pair.
type Entry struct {
	Address uint16
	Instr   machine.Instruction
}

// Program is the result of a successful two-pass assembly: an
// address-sorted instruction table plus the symbol tables that produced
// it, kept around for diagnostics, disassembly, and the debugger's
// symbol/source map.
type Program struct {
	Entries []Entry

	labels    *labelTable
	constants *constantTable
	aliases   *aliasTable
}

// Labels returns a copy of the label -> address table.
func (p *Program) Labels() map[string]uint16 {
	out := make(map[string]uint16, len(p.labels.addr))
	for k, v := range p.labels.addr {
		out[k] = v
	}
	return out
}

// Constants returns a copy of the constant -> value table.
func (p *Program) Constants() map[string]byte {
	out := make(map[string]byte, len(p.constants.value))
	for k, v := range p.constants.value {
		out[k] = v
	}
	return out
}

// InstructionTable builds a 1024-entry instruction store suitable for
// MachineState.LoadProgram, with nil entries left unset.
func (p *Program) InstructionTable() [1024]*machine.Instruction {
	var table [1024]*machine.Instruction
	for i := range p.Entries {
		e := &p.Entries[i]
		table[e.Address] = &e.Instr
	}
	return table
}

func (p *Program) sortEntries() {
	sort.Slice(p.Entries, func(i, j int) bool {
		return p.Entries[i].Address < p.Entries[j].Address
	})
}
