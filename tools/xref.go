package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/picosim/assemble"
	"github.com/lookbusy1344/picosim/reader"
	"github.com/lookbusy1344/picosim/token"
)

// RefType classifies how a symbol is used at a reference site.
type RefType int

const (
	RefDefinition RefType = iota
	RefJump
	RefCall
	RefData // an instruction operand naming a constant/alias; directive lines without a label are not scanned
)

func (r RefType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefJump:
		return "jump"
	case RefCall:
		return "call"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference is one place a symbol is defined or used.
type Reference struct {
	Type RefType
	Line int
}

// Symbol is a label, constant, or register alias and every place it's
// defined and referenced.
type Symbol struct {
	Name       string
	Definition *Reference
	References []*Reference
	IsConstant bool
	Value      byte
	IsFunction bool // referenced by at least one CALL/CALL@
}

// XRefGenerator builds a cross-reference table from PicoBlaze source.
type XRefGenerator struct {
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty generator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate tokenizes source and populates the symbol table. It tolerates
// assembler errors (undefined symbols still show up as references with no
// definition) so a host can cross-reference a program that doesn't yet
// assemble cleanly.
func (x *XRefGenerator) Generate(source, filename string) (map[string]*Symbol, error) {
	lines, err := reader.ReadString(source)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	toks, lexErr, _ := token.Tokenize(lines)
	if lexErr != nil {
		return nil, fmt.Errorf("line %d: %s: %q", lexErr.Line, lexErr.Message, lexErr.Lexeme)
	}

	if prog, errs := assemble.Assemble(source); !errs.HasErrors() {
		for name, value := range prog.Constants() {
			x.symbol(name).IsConstant = true
			x.symbol(name).Value = value
		}
	}

	for _, ln := range splitSourceLines(toks) {
		if ln.label != "" {
			x.symbol(ln.label).Definition = &Reference{Type: RefDefinition, Line: ln.num}
		}

		refType := RefData
		switch ln.mnemonic {
		case "jump", "jump@":
			refType = RefJump
		case "call", "call@":
			refType = RefCall
		}

		for _, w := range ln.words {
			sym := x.symbol(w)
			sym.References = append(sym.References, &Reference{Type: refType, Line: ln.num})
			if refType == RefCall {
				sym.IsFunction = true
			}
		}
	}

	return x.symbols, nil
}

func (x *XRefGenerator) symbol(name string) *Symbol {
	if s, ok := x.symbols[name]; ok {
		return s
	}
	s := &Symbol{Name: name}
	x.symbols[name] = s
	return s
}

// GetSymbols returns every symbol found.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol { return x.symbols }

// GetSymbol looks up one symbol by name.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	s, ok := x.symbols[name]
	return s, ok
}

// GetFunctions returns every symbol called at least once via CALL/CALL@.
func (x *XRefGenerator) GetFunctions() []*Symbol {
	return x.filterSorted(func(s *Symbol) bool { return s.IsFunction })
}

// GetUndefinedSymbols returns every symbol referenced but never defined or
// declared a constant.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	return x.filterSorted(func(s *Symbol) bool { return s.Definition == nil && !s.IsConstant && len(s.References) > 0 })
}

// GetUnusedSymbols returns every defined label that's never referenced.
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	return x.filterSorted(func(s *Symbol) bool {
		return s.Definition != nil && len(s.References) == 0 && !isSpecialLabel(s.Name)
	})
}

func (x *XRefGenerator) filterSorted(keep func(*Symbol) bool) []*Symbol {
	var out []*Symbol
	for _, s := range x.symbols {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// XRefReport renders a Symbol table as a readable text report.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport builds a report with symbols sorted by name.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, s := range symbols {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

func (r *XRefReport) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-30s", sym.Name))
		switch {
		case sym.IsConstant:
			sb.WriteString(fmt.Sprintf(" [constant=0x%02X]", sym.Value))
		case sym.IsFunction:
			sb.WriteString(" [function]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  defined:    line %d\n", sym.Definition.Line))
		} else {
			sb.WriteString("  defined:    (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  referenced: (never)\n")
		} else {
			lines := make([]string, len(sym.References))
			for i, ref := range sym.References {
				lines[i] = fmt.Sprintf("%d(%s)", ref.Line, ref.Type)
			}
			sb.WriteString(fmt.Sprintf("  referenced: %s\n", strings.Join(lines, ", ")))
		}
		sb.WriteString("\n")
	}

	defined, undefined, unused, functions := 0, 0, 0, 0
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsFunction {
			functions++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("total symbols: %d\n", len(r.symbols)))
	sb.WriteString(fmt.Sprintf("defined:       %d\n", defined))
	sb.WriteString(fmt.Sprintf("undefined:     %d\n", undefined))
	sb.WriteString(fmt.Sprintf("unused:        %d\n", unused))
	sb.WriteString(fmt.Sprintf("functions:     %d\n", functions))

	return sb.String()
}

// GenerateXRef is a convenience wrapper combining Generate and NewXRefReport.
func GenerateXRef(source, filename string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(source, filename)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
