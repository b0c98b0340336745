package machine

// Step executes exactly one instruction, per the fetch-decode-apply loop
// in spec §4.4. It reports (true, nil) on normal halt (PC points at an
// empty slot), (false, fault) on a runtime fault, and (false, nil) after a
// normal step.
func (m *MachineState) Step() (halted bool, err *Fault) {
	if m.Halted {
		return true, nil
	}

	instr := m.Instrs[m.PC]
	if instr == nil {
		m.Halted = true
		return true, nil
	}

	h, ok := handlers[instr.Op]
	if !ok {
		return false, fault(m.PC, instr.Op.String(), "unknown instruction")
	}

	delta, f := h(m, instr)
	if f != nil {
		return false, f
	}
	if delta.NextPC == 0 && !delta.DoReturn && !delta.PushReturn {
		// Handlers that fall through normally leave NextPC unset; default
		// to pc+1 per spec §4.4 ("By default, next_pc = pc + 1").
		if !deltaSetsPC(instr.Op) {
			delta.NextPC = m.PC + 1
		}
	}

	m.apply(delta)

	if m.PC > MaxAddress {
		return false, fault(m.PC, instr.Op.String(), "program counter %03X exceeds %03X", m.PC, MaxAddress)
	}

	return false, nil
}

// deltaSetsPC reports whether an Op's handler always computes NextPC
// itself (control-flow ops), so Step's pc+1 default doesn't need to guess
// at a zero value that might legitimately mean "jump to address 0".
func deltaSetsPC(op Op) bool {
	switch op {
	case OpJump, OpJumpIndirect, OpCall, OpCallIndirect:
		return true
	}
	return false
}

// apply commits a StateDelta to the machine, per spec §4.4 step 4.
func (m *MachineState) apply(d StateDelta) {
	if d.RegWritten {
		m.SetRegister(d.Reg, d.Value)
	}
	if d.ZeroSet {
		m.Zero = d.Zero
	}
	if d.CarrySet {
		m.Carry = d.Carry
	}
	if d.BankSet {
		m.activeBank = d.Bank & 1
	}
	if d.InterruptSet {
		m.IntsEnabled = d.InterruptEnabled
	}

	if d.MemoryOp != nil {
		switch d.MemoryOp.Kind {
		case MemFetch:
			m.SetRegister(d.MemoryOp.Reg, m.Scratchpad[d.MemoryOp.Addr])
		case MemStore:
			m.Scratchpad[d.MemoryOp.Addr] = m.Register(d.MemoryOp.Reg)
		}
	}

	if d.DoReturn {
		addr, ok := m.popReturn()
		if !ok {
			// returnHandler already checked depth before returning this
			// delta, so reaching here would be a logic error, not a user
			// fault; fail safe by halting rather than panicking.
			m.Halted = true
			return
		}
		m.PC = addr
		return
	}

	if d.PushReturn {
		if !m.pushReturn(d.ReturnAddr) {
			m.Halted = true
			return
		}
	}

	m.PC = d.NextPC
}

// Run steps the machine until it halts or faults, or until steps
// instructions have executed (0 means unbounded), per the cooperative
// cancellation model in spec §5 — a host wanting to interrupt mid-run
// should call Step directly in its own loop instead.
func (m *MachineState) Run(maxSteps int) (halted bool, stepsRun int, err *Fault) {
	for maxSteps <= 0 || stepsRun < maxSteps {
		h, f := m.Step()
		stepsRun++
		if f != nil {
			return false, stepsRun, f
		}
		if h {
			return true, stepsRun, nil
		}
	}
	return false, stepsRun, nil
}
