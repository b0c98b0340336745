package debugger

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/picosim/machine"
)

// Debugger wraps a running MachineState with breakpoints, watchpoints,
// command history, and expression evaluation, the way the teacher's
// Debugger wraps an ARM vm.VM.
type Debugger struct {
	VM *machine.MachineState

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running           bool
	StepMode          StepMode
	StepOverCallDepth int
	StepOverPC        uint16

	// Symbols maps label names to addresses, loaded from the assembler.
	Symbols map[string]uint16

	// SourceMap maps an address to its source line, for `list`.
	SourceMap map[uint16]string

	LastCommand string

	Output strings.Builder
}

// StepMode represents different stepping modes.
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over CALL/CALL@
	StepOut                    // Step out of the current subroutine
)

// NewDebugger creates a new debugger instance wrapping m.
func NewDebugger(m *machine.MachineState) *Debugger {
	return &Debugger{
		VM:          m,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		StepMode:    StepNone,
		Symbols:     make(map[string]uint16),
		SourceMap:   make(map[uint16]string),
	}
}

// LoadSymbols loads the symbol table for label resolution.
func (d *Debugger) LoadSymbols(symbols map[string]uint16) {
	d.Symbols = symbols
}

// LoadSourceMap loads the address -> source line mapping.
func (d *Debugger) LoadSourceMap(sourceMap map[uint16]string) {
	d.SourceMap = sourceMap
}

// ResolveAddress resolves a label to an address, or parses a numeric one.
func (d *Debugger) ResolveAddress(addrStr string) (uint16, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint64
	var err error
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		_, err = fmt.Sscanf(addrStr, "0x%x", &addr)
	} else {
		_, err = fmt.Sscanf(addrStr, "%d", &addr)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	if addr > machine.MaxAddress {
		return 0, fmt.Errorf("address %#x exceeds %#x", addr, machine.MaxAddress)
	}
	return uint16(addr), nil
}

// ExecuteCommand processes and executes a debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

// handleCommand dispatches to the command implementations in commands.go.
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)

	case "set":
		return d.cmdSet(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause at the current PC.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		if d.VM.CallDepth() < d.StepOverCallDepth {
			d.StepMode = StepNone
			return true, "step out complete"
		}

	case StepNone:
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		bp.HitCount++

		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}

		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver configures the debugger to step over a CALL/CALL@ at the
// current PC, or fall back to a single step for any other instruction.
func (d *Debugger) SetStepOver() {
	instr := d.VM.Instrs[d.VM.PC]
	if instr != nil && (instr.Op == machine.OpCall || instr.Op == machine.OpCallIndirect) {
		d.StepOverPC = d.VM.PC + 1
		d.StepMode = StepOver
		d.Running = true
		return
	}

	d.StepMode = StepSingle
	d.Running = true
}

// SetStepOut configures the debugger to run until the call stack unwinds
// below its current depth.
func (d *Debugger) SetStepOut() {
	d.StepOverCallDepth = d.VM.CallDepth()
	d.StepMode = StepOut
	d.Running = true
}
