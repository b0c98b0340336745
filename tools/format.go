// Hex/text formatting helpers for rendering a program or a machine
// snapshot as human-readable listings, grounded on the teacher's
// tools.Formatter column-alignment helpers (padToColumn, FormatOptions)
// but re-purposed: the teacher formats ARM source text by walking a
// parser.Program AST, where this formats an assembled PicoBlaze program
// and a live MachineState by walking the exported assemble.Program and
// machine.MachineState surfaces.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/picosim/assemble"
	"github.com/lookbusy1344/picosim/machine"
)

// ListingOptions controls column widths for FormatListing.
type ListingOptions struct {
	LabelColumn       int
	InstructionColumn int
	TabWidth          int
}

// DefaultListingOptions matches the teacher's DefaultFormatOptions column
// widths.
func DefaultListingOptions() *ListingOptions {
	return &ListingOptions{LabelColumn: 0, InstructionColumn: 8, TabWidth: 8}
}

func padToColumn(sb *strings.Builder, col int) {
	for sb.Len() < col {
		sb.WriteByte(' ')
	}
	if sb.Len() < col+1 {
		sb.WriteByte(' ')
	}
}

// FormatListing renders an assembled program as an address-ordered
// disassembly listing, one line per instruction, with labels attached to
// their address shown inline. Used by the CLI's -dump-symbols mode.
func FormatListing(prog *assemble.Program, options *ListingOptions) string {
	if options == nil {
		options = DefaultListingOptions()
	}

	byAddr := make(map[uint16]string)
	for name, addr := range prog.Labels() {
		if existing, ok := byAddr[addr]; ok {
			byAddr[addr] = existing + "," + name
		} else {
			byAddr[addr] = name
		}
	}

	var sb strings.Builder
	for _, entry := range prog.Entries {
		line := strings.Builder{}
		if label, ok := byAddr[entry.Address]; ok {
			line.WriteString(label)
			line.WriteString(":")
		}
		padToColumn(&line, options.InstructionColumn)
		line.WriteString(fmt.Sprintf("%03X: %s", entry.Address, machine.Disassemble(&entry.Instr)))
		sb.WriteString(line.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatSymbolTable renders a program's labels and constants sorted by
// name, for the CLI's -dump-symbols flag.
func FormatSymbolTable(prog *assemble.Program) string {
	var sb strings.Builder

	labels := prog.Labels()
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("Labels\n")
	sb.WriteString("======\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("%-24s 0x%03X\n", name, labels[name]))
	}

	constants := prog.Constants()
	cnames := make([]string, 0, len(constants))
	for name := range constants {
		cnames = append(cnames, name)
	}
	sort.Strings(cnames)

	sb.WriteString("\nConstants\n")
	sb.WriteString("=========\n")
	for _, name := range cnames {
		sb.WriteString(fmt.Sprintf("%-24s 0x%02X\n", name, constants[name]))
	}

	return sb.String()
}

// FormatHexDump renders data as classic hex-editor output: offset, hex
// bytes in groups of bytesPerLine, then the printable ASCII rendering.
func FormatHexDump(data []byte, bytesPerLine int) string {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}

	var sb strings.Builder
	for offset := 0; offset < len(data); offset += bytesPerLine {
		end := offset + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]

		sb.WriteString(fmt.Sprintf("%04X  ", offset))

		for i := 0; i < bytesPerLine; i++ {
			if i < len(chunk) {
				sb.WriteString(fmt.Sprintf("%02X ", chunk[i]))
			} else {
				sb.WriteString("   ")
			}
			if i%8 == 7 {
				sb.WriteString(" ")
			}
		}

		sb.WriteString(" |")
		for _, b := range chunk {
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

// FormatRegisters renders the active bank's 16 general-purpose registers
// as a single line of "sN=XX" pairs, matching the density of the
// debugger's register-dump output.
func FormatRegisters(m *machine.MachineState) string {
	var parts []string
	for i := byte(0); i < 16; i++ {
		parts = append(parts, fmt.Sprintf("s%X=%02X", i, m.Register(i)))
	}
	return strings.Join(parts, " ")
}
