package machine

// handler is a pure decode-and-evaluate step: given the current state and
// a decoded instruction, produce the StateDelta Step should apply. No
// handler mutates m. A handler may return a *Fault for a condition only
// detectable at execution time (call-stack depth, address range).
type handler func(m *MachineState, instr *Instruction) (StateDelta, *Fault)

var handlers = map[Op]handler{
	OpAdd:      aluHandler,
	OpAddCy:    aluHandler,
	OpSub:      aluHandler,
	OpSubCy:    aluHandler,
	OpAnd:      aluHandler,
	OpOr:       aluHandler,
	OpXor:      aluHandler,
	OpTest:     testHandler,
	OpTestCy:   testHandler,
	OpCompare:  compareHandler,
	OpCompareCy: compareHandler,
	OpLoad:     loadHandler,
	OpStar:     loadHandler,
	OpLoadReturn: loadReturnHandler,

	OpFetch:  fetchHandler,
	OpStore:  storeHandler,
	OpInput:  inputHandler,
	OpOutput: outputHandler,
	OpOutputK: outputKHandler,

	OpSl0: shiftHandler, OpSl1: shiftHandler, OpSla: shiftHandler, OpSlx: shiftHandler,
	OpSr0: shiftHandler, OpSr1: shiftHandler, OpSra: shiftHandler, OpSrx: shiftHandler,
	OpRl: shiftHandler, OpRr: shiftHandler,

	OpJump:         jumpHandler,
	OpJumpIndirect: jumpIndirectHandler,
	OpCall:         callHandler,
	OpCallIndirect: callIndirectHandler,
	OpReturn:       returnHandler,
	OpReturnI:      returnIHandler,

	OpHwbuild:          hwbuildHandler,
	OpRegbank:          regbankHandler,
	OpEnableInterrupt:  interruptToggleHandler,
	OpDisableInterrupt: interruptToggleHandler,
}

// rhsValue resolves an instruction's right-hand operand: the named
// register or the literal immediate, with '~' negation applied before the
// ALU ever sees it (the redesigned, non-identity reading of spec §6's
// bitwise-not prefix).
func rhsValue(m *MachineState, instr *Instruction) byte {
	var v byte
	if instr.SrcIsReg {
		v = m.Register(instr.Src)
	} else {
		v = instr.Imm
	}
	if instr.Negate {
		v = ^v
	}
	return v
}

func aluHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	lhs := m.Register(instr.Dst)
	rhs := rhsValue(m, instr)

	var r aluResult
	switch instr.Op {
	case OpAdd:
		r = add(lhs, rhs)
	case OpAddCy:
		r = addCarry(lhs, rhs, m.Carry)
	case OpSub:
		r = sub(lhs, rhs)
	case OpSubCy:
		r = subCarry(lhs, rhs, m.Carry)
	case OpAnd:
		r = bitwiseAnd(lhs, rhs)
	case OpOr:
		r = bitwiseOr(lhs, rhs)
	case OpXor:
		r = bitwiseXor(lhs, rhs)
	}

	return StateDelta{
		RegWritten: true, Reg: instr.Dst, Value: r.value,
		ZeroSet: true, Zero: r.zero,
		CarrySet: true, Carry: r.carry,
	}, nil
}

func testHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	lhs := m.Register(instr.Dst)
	rhs := rhsValue(m, instr)

	var carry, zero bool
	if instr.Op == OpTestCy {
		carry, zero = testCarry(lhs, rhs, m.Carry)
	} else {
		carry, zero = test(lhs, rhs)
	}
	return StateDelta{ZeroSet: true, Zero: zero, CarrySet: true, Carry: carry}, nil
}

func compareHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	lhs := m.Register(instr.Dst)
	rhs := rhsValue(m, instr)

	var carry, zero bool
	if instr.Op == OpCompareCy {
		carry, zero = compareCarry(lhs, rhs, m.Carry)
	} else {
		carry, zero = compare(lhs, rhs)
	}
	return StateDelta{ZeroSet: true, Zero: zero, CarrySet: true, Carry: carry}, nil
}

// loadHandler backs LOAD and the supplemented STAR, which spec.md's
// grammar accepts but whose ALU behavior neither the distilled spec nor
// the original interpreter defines (DESIGN.md: treated as a LOAD alias).
func loadHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return StateDelta{RegWritten: true, Reg: instr.Dst, Value: rhsValue(m, instr)}, nil
}

func loadReturnHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return StateDelta{RegWritten: true, Reg: instr.Dst, Value: instr.Imm}, nil
}

func memoryAddress(m *MachineState, instr *Instruction) byte {
	if instr.SrcIsReg {
		return m.Register(instr.Src)
	}
	return instr.Imm
}

func fetchHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	addr := memoryAddress(m, instr)
	if int(addr) >= ScratchpadSize {
		return StateDelta{}, fault(m.PC, "FETCH", "scratch-pad address %d out of range", addr)
	}
	return StateDelta{MemoryOp: &MemoryOp{Kind: MemFetch, Addr: addr, Reg: instr.Dst}}, nil
}

func storeHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	addr := memoryAddress(m, instr)
	if int(addr) >= ScratchpadSize {
		return StateDelta{}, fault(m.PC, "STORE", "scratch-pad address %d out of range", addr)
	}
	return StateDelta{MemoryOp: &MemoryOp{Kind: MemStore, Addr: addr, Reg: instr.Dst}}, nil
}

func inputHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	port := memoryAddress(m, instr)
	return StateDelta{RegWritten: true, Reg: instr.Dst, Value: m.Ports.PortRead(port)}, nil
}

func outputHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	port := memoryAddress(m, instr)
	m.Ports.PortWrite(port, m.Register(instr.Dst))
	return StateDelta{}, nil
}

func outputKHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	m.Ports.PortWrite(instr.Imm, instr.Dst)
	return StateDelta{}, nil
}

func shiftHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	v := m.Register(instr.Dst)
	var r shiftResult

	switch instr.Op {
	case OpSl0:
		r = shiftLeft(v, 0)
	case OpSl1:
		r = shiftLeft(v, 1)
	case OpSlx:
		r = shiftLeft(v, boolByte(m.Carry))
	case OpSla:
		r = rotateLeft(v)
	case OpSr0:
		r = shiftRight(v, 0)
	case OpSr1:
		r = shiftRight(v, 1)
	case OpSrx:
		r = shiftRight(v, boolByte(m.Carry))
	case OpSra:
		r = rotateRight(v)
	case OpRl:
		r = rotateLeft(v)
	case OpRr:
		r = rotateRight(v)
	}

	return StateDelta{
		RegWritten: true, Reg: instr.Dst, Value: r.value,
		CarrySet: true, Carry: r.carry,
		ZeroSet: true, Zero: r.value == 0,
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func jumpTarget(instr *Instruction, m *MachineState) (StateDelta, *Fault) {
	if instr.Target > MaxAddress {
		return StateDelta{}, fault(m.PC, instr.Op.String(), "jump target %03X exceeds %03X", instr.Target, MaxAddress)
	}
	if instr.HasCond && !evaluateCond(instr.Cond, m.Zero, m.Carry) {
		return StateDelta{NextPC: m.PC + 1}, nil
	}
	return StateDelta{NextPC: instr.Target}, nil
}

func jumpHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return jumpTarget(instr, m)
}

func pairTarget(instr *Instruction, m *MachineState) uint16 {
	hi := m.Register(instr.PairHi)
	lo := m.Register(instr.PairLo)
	return (uint16(hi&0xF) << 8) | uint16(lo)
}

func jumpIndirectHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	target := pairTarget(instr, m)
	if target > MaxAddress {
		return StateDelta{}, fault(m.PC, "JUMP@", "jump target %03X exceeds %03X", target, MaxAddress)
	}
	return StateDelta{NextPC: target}, nil
}

func callHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	if instr.Target > MaxAddress {
		return StateDelta{}, fault(m.PC, "CALL", "call target %03X exceeds %03X", instr.Target, MaxAddress)
	}
	if instr.HasCond && !evaluateCond(instr.Cond, m.Zero, m.Carry) {
		return StateDelta{NextPC: m.PC + 1}, nil
	}
	if m.CallDepth() >= CallStackLimit {
		return StateDelta{}, fault(m.PC, "CALL", "call stack overflow (limit %d)", CallStackLimit)
	}
	return StateDelta{NextPC: instr.Target, PushReturn: true, ReturnAddr: m.PC + 1}, nil
}

func callIndirectHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	target := pairTarget(instr, m)
	if target > MaxAddress {
		return StateDelta{}, fault(m.PC, "CALL@", "call target %03X exceeds %03X", target, MaxAddress)
	}
	if m.CallDepth() >= CallStackLimit {
		return StateDelta{}, fault(m.PC, "CALL@", "call stack overflow (limit %d)", CallStackLimit)
	}
	return StateDelta{NextPC: target, PushReturn: true, ReturnAddr: m.PC + 1}, nil
}

func returnHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	if instr.HasCond && !evaluateCond(instr.Cond, m.Zero, m.Carry) {
		return StateDelta{NextPC: m.PC + 1}, nil
	}
	if m.CallDepth() == 0 {
		return StateDelta{}, fault(m.PC, "RETURN", "call stack underflow")
	}
	return StateDelta{DoReturn: true}, nil
}

// returnIHandler backs the supplemented RETURNI [ENABLE|DISABLE]: it pops
// the call stack like RETURN and also sets the observable interrupt-enable
// flag. No interrupt is ever actually delivered (§5's Non-goal on
// interrupt latency), so this only affects what a host can read back.
func returnIHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	if m.CallDepth() == 0 {
		return StateDelta{}, fault(m.PC, "RETURNI", "call stack underflow")
	}
	return StateDelta{DoReturn: true, InterruptSet: true, InterruptEnabled: instr.IntEnable}, nil
}

func hwbuildHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return StateDelta{RegWritten: true, Reg: instr.Dst, Value: m.BuildSig}, nil
}

func regbankHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return StateDelta{BankSet: true, Bank: instr.Bank}, nil
}

func interruptToggleHandler(m *MachineState, instr *Instruction) (StateDelta, *Fault) {
	return StateDelta{InterruptSet: true, InterruptEnabled: instr.Op == OpEnableInterrupt}, nil
}
