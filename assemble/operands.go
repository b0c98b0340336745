package assemble

import (
	"github.com/lookbusy1344/picosim/machine"
	"github.com/lookbusy1344/picosim/token"
)

// dispatchInstruction builds a machine.Instruction from a mnemonic and its
// already-word-resolved operand tokens. It mirrors the original
// interpreter's per-mnemonic builder functions (instr_reg_reg,
// instr_reg_num, instr_reg, instr_condition, instr_only), grouped here by
// shared operand shape rather than duplicated per mnemonic.
func dispatchInstruction(mnemonic string, instrTok token.Token, ops []token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	switch mnemonic {
	case "add", "addcy", "sub", "subcy", "and", "or", "xor", "test", "testcy", "compare", "comparecy", "load", "star":
		return buildAluShape(aluOp(mnemonic), ops, instrTok, lineNum, errs)

	case "load&return":
		return buildRegImmOnly(machine.OpLoadReturn, ops, instrTok, lineNum, errs)

	case "fetch", "store", "input", "output":
		return buildMemoryShape(memoryOp(mnemonic), ops, instrTok, lineNum, errs)

	case "outputk":
		return buildOutputK(ops, instrTok, lineNum, errs)

	case "sl0", "sl1", "sla", "slx", "sr0", "sr1", "sra", "srx", "rl", "rr":
		return buildShiftShape(shiftOp(mnemonic), ops, instrTok, lineNum, errs)

	case "jump", "jump@":
		return buildJumpCallShape(machine.OpJump, machine.OpJumpIndirect, ops, instrTok, lineNum, errs)
	case "call", "call@":
		return buildJumpCallShape(machine.OpCall, machine.OpCallIndirect, ops, instrTok, lineNum, errs)

	case "return":
		return buildReturnShape(ops, instrTok, lineNum, errs)

	case "returni":
		return buildReturnIShape(ops, instrTok, lineNum, errs)

	case "hwbuild":
		return buildRegOnly(machine.OpHwbuild, ops, instrTok, lineNum, errs)

	case "regbank":
		return buildRegbank(ops, instrTok, lineNum, errs)

	case "enable", "disable":
		return buildInterruptToggle(mnemonic, ops, instrTok, lineNum, errs)

	default:
		errs.add(lineNum, ErrUnrecognizedShape, "unrecognized mnemonic %q", mnemonic)
		return machine.Instruction{}, false
	}
}

func aluOp(mnemonic string) machine.Op {
	switch mnemonic {
	case "add":
		return machine.OpAdd
	case "addcy":
		return machine.OpAddCy
	case "sub":
		return machine.OpSub
	case "subcy":
		return machine.OpSubCy
	case "and":
		return machine.OpAnd
	case "or":
		return machine.OpOr
	case "xor":
		return machine.OpXor
	case "test":
		return machine.OpTest
	case "testcy":
		return machine.OpTestCy
	case "compare":
		return machine.OpCompare
	case "comparecy":
		return machine.OpCompareCy
	case "load":
		return machine.OpLoad
	case "star":
		return machine.OpStar
	}
	panic("unreachable alu mnemonic " + mnemonic)
}

func memoryOp(mnemonic string) machine.Op {
	switch mnemonic {
	case "fetch":
		return machine.OpFetch
	case "store":
		return machine.OpStore
	case "input":
		return machine.OpInput
	case "output":
		return machine.OpOutput
	}
	panic("unreachable memory mnemonic " + mnemonic)
}

func shiftOp(mnemonic string) machine.Op {
	switch mnemonic {
	case "sl0":
		return machine.OpSl0
	case "sl1":
		return machine.OpSl1
	case "sla":
		return machine.OpSla
	case "slx":
		return machine.OpSlx
	case "sr0":
		return machine.OpSr0
	case "sr1":
		return machine.OpSr1
	case "sra":
		return machine.OpSra
	case "srx":
		return machine.OpSrx
	case "rl":
		return machine.OpRl
	case "rr":
		return machine.OpRr
	}
	panic("unreachable shift mnemonic " + mnemonic)
}

func condOf(t token.Token) machine.Cond {
	switch t.Cond {
	case token.CondZ:
		return machine.CondZ
	case token.CondNZ:
		return machine.CondNZ
	case token.CondC:
		return machine.CondC
	case token.CondNC:
		return machine.CondNC
	}
	return machine.CondZ
}

func shapeErr(instrTok token.Token, ops []token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	full := append([]token.Token{instrTok}, ops...)
	errs.add(lineNum, ErrUnrecognizedShape, "unrecognized shape %q for %s", signature(full), instrTok.Text)
	return machine.Instruction{}, false
}

// buildAluShape handles "sDst, [~] sSrc" and "sDst, [~] kk", shared by the
// two-operand ALU and data-movement instructions.
func buildAluShape(op machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) < 3 || ops[0].Kind != token.Register || ops[1].Kind != token.Comma {
		return shapeErr(instrTok, ops, lineNum, errs)
	}

	rhs := ops[2:]
	negate := false
	if len(rhs) > 0 && rhs[0].Kind == token.Tilde {
		negate = true
		rhs = rhs[1:]
	}
	if len(rhs) != 1 {
		return shapeErr(instrTok, ops, lineNum, errs)
	}

	instr := machine.Instruction{Op: op, Dst: ops[0].RegisterIndex, Negate: negate}
	switch rhs[0].Kind {
	case token.Register:
		instr.SrcIsReg = true
		instr.Src = rhs[0].RegisterIndex
	case token.Number:
		if rhs[0].NumberValue > 255 {
			errs.add(lineNum, ErrImmediateRange, "immediate %d exceeds a byte", rhs[0].NumberValue)
			return machine.Instruction{}, false
		}
		instr.Imm = byte(rhs[0].NumberValue)
	default:
		return shapeErr(instrTok, ops, lineNum, errs)
	}

	return instr, true
}

// buildRegImmOnly handles LOAD&RETURN sDst, kk: immediate only, no register
// source form in real PicoBlaze usage (it addresses an instruction-table
// constant, not another register).
func buildRegImmOnly(op machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 3 || ops[0].Kind != token.Register || ops[1].Kind != token.Comma || ops[2].Kind != token.Number {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	if ops[2].NumberValue > 255 {
		errs.add(lineNum, ErrImmediateRange, "immediate %d exceeds a byte", ops[2].NumberValue)
		return machine.Instruction{}, false
	}
	return machine.Instruction{Op: op, Dst: ops[0].RegisterIndex, Imm: byte(ops[2].NumberValue)}, true
}

// buildMemoryShape handles "sDst, sPort", "sDst, kk" and the
// register-indirect "sDst, (sPtr)" form shared by FETCH/STORE/INPUT/OUTPUT.
func buildMemoryShape(op machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) < 3 || ops[0].Kind != token.Register || ops[1].Kind != token.Comma {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	rhs := ops[2:]

	instr := machine.Instruction{Op: op, Dst: ops[0].RegisterIndex}

	if len(rhs) == 3 && rhs[0].Kind == token.Paren && rhs[0].Paren == token.LParen &&
		rhs[1].Kind == token.Register && rhs[2].Kind == token.Paren && rhs[2].Paren == token.RParen {
		instr.Indirect = true
		instr.SrcIsReg = true
		instr.Src = rhs[1].RegisterIndex
		return instr, true
	}

	if len(rhs) != 1 {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	switch rhs[0].Kind {
	case token.Register:
		instr.SrcIsReg = true
		instr.Src = rhs[0].RegisterIndex
	case token.Number:
		if rhs[0].NumberValue > 255 {
			errs.add(lineNum, ErrImmediateRange, "address/port %d exceeds a byte", rhs[0].NumberValue)
			return machine.Instruction{}, false
		}
		instr.Imm = byte(rhs[0].NumberValue)
	default:
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	return instr, true
}

// buildOutputK handles "OUTPUTK kk, pp": a constant written to an
// immediate port, with no register operands at all.
func buildOutputK(ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 3 || ops[0].Kind != token.Number || ops[1].Kind != token.Comma || ops[2].Kind != token.Number {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	if ops[0].NumberValue > 255 || ops[2].NumberValue > 255 {
		errs.add(lineNum, ErrImmediateRange, "OUTPUTK operand exceeds a byte")
		return machine.Instruction{}, false
	}
	return machine.Instruction{Op: machine.OpOutputK, Dst: byte(ops[0].NumberValue), Imm: byte(ops[2].NumberValue)}, true
}

func buildShiftShape(op machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 1 || ops[0].Kind != token.Register {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	return machine.Instruction{Op: op, Dst: ops[0].RegisterIndex}, true
}

func buildRegOnly(op machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 1 || ops[0].Kind != token.Register {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	return machine.Instruction{Op: op, Dst: ops[0].RegisterIndex}, true
}

// buildJumpCallShape handles the unconditional/conditional direct-address
// forms ("a" / "cond, a") and the register-indirect pair form
// ("(sHi, sLo)") shared by JUMP/JUMP@ and CALL/CALL@.
func buildJumpCallShape(direct, indirect machine.Op, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) == 5 && ops[0].Kind == token.Paren && ops[0].Paren == token.LParen &&
		ops[1].Kind == token.Register && ops[2].Kind == token.Comma &&
		ops[3].Kind == token.Register && ops[4].Kind == token.Paren && ops[4].Paren == token.RParen {
		return machine.Instruction{Op: indirect, PairHi: ops[1].RegisterIndex, PairLo: ops[3].RegisterIndex}, true
	}

	if len(ops) == 1 && (ops[0].Kind == token.Address || ops[0].Kind == token.Number) {
		target, ok := addressValue(ops[0], lineNum, errs)
		if !ok {
			return machine.Instruction{}, false
		}
		return machine.Instruction{Op: direct, Target: target}, true
	}

	if len(ops) == 3 && ops[0].Kind == token.Condition && ops[1].Kind == token.Comma &&
		(ops[2].Kind == token.Address || ops[2].Kind == token.Number) {
		target, ok := addressValue(ops[2], lineNum, errs)
		if !ok {
			return machine.Instruction{}, false
		}
		return machine.Instruction{Op: direct, Target: target, Cond: condOf(ops[0]), HasCond: true}, true
	}

	return shapeErr(instrTok, ops, lineNum, errs)
}

func addressValue(t token.Token, lineNum int, errs *ErrorList) (uint16, bool) {
	var v uint32
	switch t.Kind {
	case token.Address:
		v = t.AddressValue
	case token.Number:
		v = t.NumberValue
	}
	if v > 0x3FF {
		errs.add(lineNum, ErrAddressRange, "address %d exceeds 0x3FF", v)
		return 0, false
	}
	return uint16(v), true
}

func buildReturnShape(ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) == 0 {
		return machine.Instruction{Op: machine.OpReturn}, true
	}
	if len(ops) == 1 && ops[0].Kind == token.Condition {
		return machine.Instruction{Op: machine.OpReturn, Cond: condOf(ops[0]), HasCond: true}, true
	}
	return shapeErr(instrTok, ops, lineNum, errs)
}

// buildReturnIShape handles bare RETURNI and the supplemented
// "RETURNI ENABLE"/"RETURNI DISABLE" forms, where ENABLE/DISABLE arrive as
// a second Instruction token rather than a Word.
func buildReturnIShape(ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) == 0 {
		return machine.Instruction{Op: machine.OpReturnI}, true
	}
	if len(ops) == 1 && ops[0].Kind == token.Instruction {
		switch ops[0].Text {
		case "enable":
			return machine.Instruction{Op: machine.OpReturnI, IntEnable: true}, true
		case "disable":
			return machine.Instruction{Op: machine.OpReturnI, IntEnable: false}, true
		}
	}
	return shapeErr(instrTok, ops, lineNum, errs)
}

// buildRegbank handles "REGBANK A"/"REGBANK B": the bank selector is a bare
// word, not resolved against any symbol table.
func buildRegbank(ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 1 || ops[0].Kind != token.Word {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	switch ops[0].Text {
	case "a":
		return machine.Instruction{Op: machine.OpRegbank, Bank: 0}, true
	case "b":
		return machine.Instruction{Op: machine.OpRegbank, Bank: 1}, true
	default:
		errs.add(lineNum, ErrBadDirective, "REGBANK operand must be A or B, got %q", ops[0].Text)
		return machine.Instruction{}, false
	}
}

// buildInterruptToggle handles the supplemented "ENABLE INTERRUPT" /
// "DISABLE INTERRUPT" instructions, where INTERRUPT arrives as a second
// Instruction token.
func buildInterruptToggle(mnemonic string, ops []token.Token, instrTok token.Token, lineNum int, errs *ErrorList) (machine.Instruction, bool) {
	if len(ops) != 1 || ops[0].Kind != token.Instruction || ops[0].Text != "interrupt" {
		return shapeErr(instrTok, ops, lineNum, errs)
	}
	if mnemonic == "enable" {
		return machine.Instruction{Op: machine.OpEnableInterrupt}, true
	}
	return machine.Instruction{Op: machine.OpDisableInterrupt}, true
}
