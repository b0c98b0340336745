package assemble

import "github.com/lookbusy1344/picosim/token"

// runPass2 re-walks the same lines pass1 saw, this time resolving Word
// tokens and emitting a machine.Instruction for every instruction-bearing
// line. It trusts pass1's addressing (lineAddr) rather than re-deriving it,
// so the two passes can never disagree about where a line lands.
func runPass2(lines [][]token.Token, addrs pass1Result, labels *labelTable, constants *constantTable, aliases *aliasTable, errs *ErrorList) *Program {
	prog := &Program{labels: labels, constants: constants, aliases: aliases}

	for i, line := range lines {
		lineNum := i + 1

		rest := line
		if len(rest) > 0 && rest[0].Kind == token.Label {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			continue
		}
		switch rest[0].Kind {
		case token.ConstantDirective, token.NameregDirective, token.AddressDirective:
			continue
		}

		mnemonic := rest[0].Text
		operands := rest[1:]

		if mnemonic != "regbank" {
			resolved, ok := resolveWords(operands, lineNum, labels, constants, aliases, errs)
			if !ok {
				continue
			}
			operands = resolved
		}

		instr, ok := dispatchInstruction(mnemonic, rest[0], operands, lineNum, errs)
		if !ok {
			continue
		}

		prog.Entries = append(prog.Entries, Entry{Address: addrs.lineAddr[i], Instr: instr})
	}

	prog.sortEntries()
	return prog
}

// resolveWords replaces every Word token with the concrete token it names,
// trying labels, then constants, then aliases, per spec §4.3. A Word naming
// a label becomes an Address; naming a constant becomes a Number; naming an
// alias becomes a Register. Anything left unresolved is an undefined-symbol
// error and the line is abandoned.
//
// It also rejects a raw "sX" Register token for any register NAMEREG has
// renamed: once a register is aliased, the original literal is an
// unresolved word rather than a still-valid spelling of the register, per
// the strict rename reading of NAMEREG chosen in DESIGN.md.
func resolveWords(ops []token.Token, lineNum int, labels *labelTable, constants *constantTable, aliases *aliasTable, errs *ErrorList) ([]token.Token, bool) {
	out := make([]token.Token, len(ops))
	ok := true

	for i, t := range ops {
		if t.Kind == token.Register {
			if name, renamed := aliases.renamedTo(t.RegisterIndex); renamed {
				errs.add(lineNum, ErrUndefinedSymbol, "register s%X was renamed to %q by NAMEREG; use %q instead", t.RegisterIndex, name, name)
				ok = false
			}
			out[i] = t
			continue
		}

		if t.Kind != token.Word {
			out[i] = t
			continue
		}

		if addr, found := labels.lookup(t.Text); found {
			out[i] = token.Token{Kind: token.Address, AddressValue: uint32(addr), Line: t.Line}
			continue
		}
		if v, found := constants.lookup(t.Text); found {
			out[i] = token.Token{Kind: token.Number, NumberValue: uint32(v), Line: t.Line}
			continue
		}
		if reg, found := aliases.lookup(t.Text); found {
			out[i] = token.Token{Kind: token.Register, RegisterIndex: reg, Line: t.Line}
			continue
		}

		errs.add(lineNum, ErrUndefinedSymbol, "undefined symbol %q", t.Text)
		ok = false
		out[i] = t
	}

	return out, ok
}
