package machine

import "fmt"

// Disassemble renders an Instruction back into PicoBlaze assembly syntax,
// mirroring the teacher's disassembler closely enough to be useful for
// trace output and debugger listings, but driven entirely by the flattened
// Instruction fields rather than a decoded opcode word.
func Disassemble(instr *Instruction) string {
	if instr == nil {
		return ""
	}

	reg := func(r byte) string { return fmt.Sprintf("s%X", r) }
	cond := func() string {
		if instr.HasCond {
			return instr.Cond.String() + ", "
		}
		return ""
	}
	negate := func() string {
		if instr.Negate {
			return "~"
		}
		return ""
	}
	rhs := func() string {
		if instr.SrcIsReg {
			return negate() + reg(instr.Src)
		}
		return fmt.Sprintf("%s%02X", negate(), instr.Imm)
	}

	switch instr.Op {
	case OpAdd, OpAddCy, OpSub, OpSubCy, OpAnd, OpOr, OpXor, OpTest, OpTestCy,
		OpCompare, OpCompareCy, OpLoad, OpStar:
		return fmt.Sprintf("%s %s, %s", instr.Op, reg(instr.Dst), rhs())

	case OpLoadReturn:
		return fmt.Sprintf("LOAD&RETURN %s, %02X", reg(instr.Dst), instr.Imm)

	case OpFetch, OpStore, OpInput, OpOutput:
		if instr.Indirect {
			return fmt.Sprintf("%s %s, (%s)", instr.Op, reg(instr.Dst), reg(instr.Src))
		}
		return fmt.Sprintf("%s %s, %s", instr.Op, reg(instr.Dst), rhs())

	case OpOutputK:
		return fmt.Sprintf("OUTPUTK %02X, %02X", instr.Dst, instr.Imm)

	case OpSl0, OpSl1, OpSla, OpSlx, OpSr0, OpSr1, OpSra, OpSrx, OpRl, OpRr:
		return fmt.Sprintf("%s %s", instr.Op, reg(instr.Dst))

	case OpJump, OpCall:
		return fmt.Sprintf("%s %s%03X", instr.Op, cond(), instr.Target)

	case OpJumpIndirect, OpCallIndirect:
		return fmt.Sprintf("%s (%s, %s)", instr.Op, reg(instr.PairHi), reg(instr.PairLo))

	case OpReturn:
		if instr.HasCond {
			return fmt.Sprintf("RETURN %s", instr.Cond)
		}
		return "RETURN"

	case OpReturnI:
		if instr.IntEnable {
			return "RETURNI ENABLE"
		}
		return "RETURNI DISABLE"

	case OpHwbuild:
		return fmt.Sprintf("HWBUILD %s", reg(instr.Dst))

	case OpRegbank:
		if instr.Bank == 0 {
			return "REGBANK A"
		}
		return "REGBANK B"

	case OpEnableInterrupt:
		return "ENABLE INTERRUPT"
	case OpDisableInterrupt:
		return "DISABLE INTERRUPT"

	default:
		return instr.Op.String()
	}
}
