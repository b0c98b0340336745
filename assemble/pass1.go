package assemble

import "github.com/lookbusy1344/picosim/token"

// occupied tracks which program addresses already hold an instruction, so
// pass 1 can reject duplicate occupancy (spec §4.3) before pass 2 ever
// looks at operands.
type occupied map[uint16]bool

// pass1 walks every line, binding labels/constants/aliases and tracking the
// current emission address. It returns the address each line should use in
// pass 2 (directives don't occupy a slot, so the two passes must agree on
// addressing without re-deriving it).
type pass1Result struct {
	lineAddr []uint16 // same length as lines; the address pass 2 should use
	occupied occupied
}

func runPass1(lines [][]token.Token, labels *labelTable, constants *constantTable, aliases *aliasTable, errs *ErrorList) pass1Result {
	res := pass1Result{
		lineAddr: make([]uint16, len(lines)),
		occupied: make(occupied),
	}

	addr := uint16(0)

	for i, line := range lines {
		lineNum := i + 1

		rest := line
		if len(rest) > 0 && rest[0].Kind == token.Label {
			name := rest[0].Text
			if !labels.define(name, addr) {
				errs.add(lineNum, ErrDuplicateLabel, "label %q already defined", name)
			}
			rest = rest[1:]
		}

		res.lineAddr[i] = addr

		if len(rest) == 0 {
			continue
		}

		switch rest[0].Kind {
		case token.ConstantDirective:
			handleConstantDirective(rest, lineNum, constants, errs)
			continue
		case token.NameregDirective:
			handleNameregDirective(rest, lineNum, aliases, errs)
			continue
		case token.AddressDirective:
			newAddr, ok := resolveAddressDirective(rest, lineNum, constants, errs)
			if ok {
				addr = newAddr
				res.lineAddr[i] = addr
			}
			continue
		}

		// An instruction-bearing line: claim this address and advance.
		if res.occupied[addr] {
			errs.add(lineNum, ErrDuplicateAddress, "address %03X already has an instruction", addr)
		}
		res.occupied[addr] = true
		addr++
	}

	return res
}

// handleConstantDirective implements "CONSTANT name, value" per spec §4.3:
// value may be a Number literal or a Word naming an already-defined
// constant.
func handleConstantDirective(rest []token.Token, lineNum int, constants *constantTable, errs *ErrorList) {
	if len(rest) != 4 || rest[1].Kind != token.Word || rest[2].Kind != token.Comma {
		errs.add(lineNum, ErrBadDirective, "expected CONSTANT name, value")
		return
	}

	name := rest[1].Text
	var value byte

	switch rest[3].Kind {
	case token.Number:
		if rest[3].NumberValue > 255 {
			errs.add(lineNum, ErrImmediateRange, "constant %q value %d exceeds a byte", name, rest[3].NumberValue)
			return
		}
		value = byte(rest[3].NumberValue)
	case token.Word:
		v, ok := constants.lookup(rest[3].Text)
		if !ok {
			errs.add(lineNum, ErrUndefinedSymbol, "constant %q references undefined constant %q", name, rest[3].Text)
			return
		}
		value = v
	default:
		errs.add(lineNum, ErrBadDirective, "CONSTANT value must be a number or a defined constant")
		return
	}

	if !constants.define(name, value) {
		errs.add(lineNum, ErrDuplicateConstant, "constant %q already defined", name)
	}
}

// handleNameregDirective implements "NAMEREG sX, name" per spec §4.3.
func handleNameregDirective(rest []token.Token, lineNum int, aliases *aliasTable, errs *ErrorList) {
	if len(rest) != 4 || rest[1].Kind != token.Register || rest[2].Kind != token.Comma || rest[3].Kind != token.Word {
		errs.add(lineNum, ErrBadDirective, "expected NAMEREG sX, name")
		return
	}

	name := rest[3].Text
	if !aliases.define(name, rest[1].RegisterIndex) {
		errs.add(lineNum, ErrDuplicateAlias, "alias %q already defined", name)
	}
}

// resolveAddressDirective implements "ADDRESS value" per spec §4.3: value
// may be an Address literal, a Number, or a Word naming a defined
// constant.
func resolveAddressDirective(rest []token.Token, lineNum int, constants *constantTable, errs *ErrorList) (uint16, bool) {
	if len(rest) != 2 {
		errs.add(lineNum, ErrBadDirective, "expected ADDRESS value")
		return 0, false
	}

	switch rest[1].Kind {
	case token.Address:
		return uint16(rest[1].AddressValue), true
	case token.Number:
		if rest[1].NumberValue > 0x3FF {
			errs.add(lineNum, ErrAddressRange, "address %d exceeds 0x3FF", rest[1].NumberValue)
			return 0, false
		}
		return uint16(rest[1].NumberValue), true
	case token.Word:
		v, ok := constants.lookup(rest[1].Text)
		if !ok {
			errs.add(lineNum, ErrUndefinedSymbol, "ADDRESS references undefined constant %q", rest[1].Text)
			return 0, false
		}
		return uint16(v), true
	default:
		errs.add(lineNum, ErrBadDirective, "ADDRESS value must be an address, number, or defined constant")
		return 0, false
	}
}
