package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/picosim/machine"
)

// cmdRun resets the machine and starts execution from address 0.
func (d *Debugger) cmdRun(args []string) error {
	d.VM.Reset()
	d.StepMode = StepNone
	d.Running = true
	d.Printf("Running from address 0x%03X\n", d.VM.PC)
	return nil
}

// cmdContinue resumes execution from the current PC.
func (d *Debugger) cmdContinue(args []string) error {
	d.StepMode = StepNone
	d.Running = true
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count: %s", args[0])
		}
		count = n
	}

	for i := 0; i < count; i++ {
		halted, fault := d.VM.Step()
		if fault != nil {
			return fmt.Errorf("runtime fault: %w", fault)
		}
		if halted {
			d.Printf("Halted at PC=0x%03X\n", d.VM.PC)
			return nil
		}
	}
	d.Printf("PC=0x%03X\n", d.VM.PC)
	return nil
}

func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

func (d *Debugger) cmdFinish(args []string) error {
	if d.VM.CallDepth() == 0 {
		return fmt.Errorf("not inside a subroutine")
	}
	d.SetStepOut()
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	condition := ""
	if len(args) > 2 && args[1] == "if" {
		condition = strings.Join(args[2:], " ")
	}
	bp, err := d.Breakpoints.AddBreakpoint(addr, false, condition)
	if err != nil {
		return err
	}
	d.Printf("Breakpoint %d at 0x%03X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp, err := d.Breakpoints.AddBreakpoint(addr, true, "")
	if err != nil {
		return err
	}
	d.Printf("Temporary breakpoint %d at 0x%03X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Watchpoints.Clear()
		d.Println("All breakpoints and watchpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err == nil {
		d.Printf("Deleted breakpoint %d\n", id)
		return nil
	}
	if err := d.Watchpoints.DeleteWatchpoint(id); err == nil {
		d.Printf("Deleted watchpoint %d\n", id)
		return nil
	}
	return fmt.Errorf("no breakpoint or watchpoint %d", id)
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err == nil {
		return nil
	}
	return d.Watchpoints.EnableWatchpoint(id)
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err == nil {
		return nil
	}
	return d.Watchpoints.DisableWatchpoint(id)
}

// cmdWatch adds a watchpoint on a register (sX) or scratch-pad byte ([addr]).
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <sX|[addr]>")
	}
	expr := args[0]

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrVal, err := d.Evaluator.EvaluateExpression(expr[1:len(expr)-1], d.VM, d.Symbols)
		if err != nil {
			return err
		}
		wp := d.Watchpoints.AddWatchpoint(WatchWrite, expr, byte(addrVal), false, 0)
		_ = d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM)
		d.Printf("Watchpoint %d on %s\n", wp.ID, expr)
		return nil
	}

	if val, ok := evalRegisterOrFlag(expr, d.VM); ok {
		_ = val
		lower := strings.ToLower(expr)
		reg, err := strconv.ParseUint(strings.TrimPrefix(lower, "s"), 16, 8)
		if err != nil {
			return fmt.Errorf("watch only supports registers and [addr]: %s", expr)
		}
		wp := d.Watchpoints.AddWatchpoint(WatchWrite, expr, 0, true, byte(reg))
		_ = d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM)
		d.Printf("Watchpoint %d on %s\n", wp.ID, expr)
		return nil
	}

	return fmt.Errorf("cannot watch %q", expr)
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expr>")
	}
	expr := strings.Join(args, " ")
	val, err := d.Evaluator.EvaluateExpression(expr, d.VM, d.Symbols)
	if err != nil {
		return err
	}
	d.Printf("$%d = %d (0x%X)\n", d.Evaluator.GetValueNumber(), val, val)
	return nil
}

// cmdExamine dumps scratch-pad bytes starting at addr, `x <addr> [count]`.
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <addr> [count]")
	}
	addrVal, err := d.Evaluator.EvaluateExpression(args[0], d.VM, d.Symbols)
	if err != nil {
		return err
	}
	count := ScratchpadDisplayColumns
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			count = n
		}
	}

	start := byte(addrVal)
	for i := 0; i < count; i++ {
		off := (int(start) + i) % machine.ScratchpadSize
		if i%ScratchpadDisplayColumns == 0 {
			if i > 0 {
				d.Println()
			}
			d.Printf("%02X:", off)
		}
		d.Printf(" %02X", d.VM.Scratchpad[off])
	}
	d.Println()
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|flags|breakpoints|watchpoints>")
	}
	switch args[0] {
	case "registers", "reg", "r":
		for i := 0; i < 16; i += RegisterGroupSize {
			for j := i; j < i+RegisterGroupSize && j < 16; j++ {
				d.Printf("s%X=%02X ", j, d.VM.Register(byte(j)))
			}
			d.Println()
		}
	case "flags", "f":
		d.Printf("Z=%v C=%v bank=%d ints=%v\n", d.VM.Zero, d.VM.Carry, d.VM.Bank(), d.VM.IntsEnabled)
	case "breakpoints", "b":
		for _, bp := range d.Breakpoints.GetAllBreakpoints() {
			d.Printf("%d: 0x%03X enabled=%v hits=%d %s\n", bp.ID, bp.Address, bp.Enabled, bp.HitCount, bp.Condition)
		}
	case "watchpoints", "w":
		for _, wp := range d.Watchpoints.GetAllWatchpoints() {
			d.Printf("%d: %s enabled=%v hits=%d\n", wp.ID, wp.Expression, wp.Enabled, wp.HitCount)
		}
	default:
		return fmt.Errorf("unknown info topic: %s", args[0])
	}
	return nil
}

func (d *Debugger) cmdBacktrace(args []string) error {
	stack := d.VM.CallStack()
	if len(stack) == 0 {
		d.Println("(empty call stack)")
		return nil
	}
	for i := len(stack) - 1; i >= 0; i-- {
		d.Printf("#%d  return to 0x%03X\n", len(stack)-1-i, stack[i])
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	pc := d.VM.PC
	before := CodeContextLinesBeforeCompact
	after := CodeContextLinesAfterCompact

	var start uint16
	if int(pc) > before {
		start = pc - uint16(before)
	}
	end := pc + uint16(after)
	if end > machine.MaxAddress {
		end = machine.MaxAddress
	}

	for addr := start; addr <= end; addr++ {
		marker := "  "
		if addr == pc {
			marker = "->"
		}
		if instr := d.VM.Instrs[addr]; instr != nil {
			d.Printf("%s 0x%03X: %s\n", marker, addr, machine.Disassemble(instr))
		}
		if addr == machine.MaxAddress {
			break
		}
	}
	return nil
}

// cmdSet assigns a register, e.g. "set s0 42" or "set s0=42".
func (d *Debugger) cmdSet(args []string) error {
	joined := strings.Join(args, " ")
	joined = strings.ReplaceAll(joined, "=", " ")
	parts := strings.Fields(joined)
	if len(parts) != 2 {
		return fmt.Errorf("usage: set <sX> <value>")
	}

	lower := strings.ToLower(parts[0])
	if !strings.HasPrefix(lower, "s") {
		return fmt.Errorf("set only supports registers (sX): %s", parts[0])
	}
	reg, err := strconv.ParseUint(lower[1:], 16, 8)
	if err != nil || reg > 0xF {
		return fmt.Errorf("invalid register: %s", parts[0])
	}

	val, err := d.Evaluator.EvaluateExpression(parts[1], d.VM, d.Symbols)
	if err != nil {
		return err
	}

	d.VM.SetRegister(byte(reg), byte(val))
	return nil
}

func (d *Debugger) cmdReset(args []string) error {
	d.VM.Reset()
	d.Running = false
	d.StepMode = StepNone
	d.Println("Machine reset")
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println(`Available commands:
  run, r              reset and start execution
  continue, c         resume execution
  step, s [n]         execute n instructions (default 1)
  next, n             step over a CALL/CALL@
  finish, fin         run until the current subroutine returns
  break, b <addr>     set a breakpoint
  tbreak, tb <addr>   set a one-shot breakpoint
  delete, d [id]      delete a breakpoint/watchpoint (or all)
  enable/disable <id> toggle a breakpoint/watchpoint
  watch, w <sX|[a]>   watch a register or scratch-pad byte
  print, p <expr>     evaluate and print an expression
  x <addr> [n]        dump n scratch-pad bytes
  info <topic>        registers, flags, breakpoints, watchpoints
  backtrace, bt       print the call stack
  list, l             list instructions around PC
  set <sX> <val>      assign a register
  reset               reset the machine
  help, h, ?          this message`)
	return nil
}
