package debugger

import (
	"testing"

	"github.com/lookbusy1344/picosim/machine"
)

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}
	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}
	if wp.Type != WatchWrite {
		t.Errorf("Wrong watchpoint type: got %d, want %d", wp.Type, WatchWrite)
	}
	if wp.Expression != "s0" {
		t.Errorf("Expression = %s, want s0", wp.Expression)
	}
	if !wp.IsRegister {
		t.Error("Should be register watchpoint")
	}
	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}
	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_AddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)
	wp2 := wm.AddWatchpoint(WatchRead, "[0x10]", 0x10, false, 0)

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}
	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}
	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("Watchpoint not deleted")
	}
	if err := wm.DeleteWatchpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_EnableDisable(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)

	if err := wm.DisableWatchpoint(wp.ID); err != nil {
		t.Fatalf("DisableWatchpoint failed: %v", err)
	}
	if wp.Enabled {
		t.Error("Watchpoint not disabled")
	}

	if err := wm.EnableWatchpoint(wp.ID); err != nil {
		t.Fatalf("EnableWatchpoint failed: %v", err)
	}
	if !wp.Enabled {
		t.Error("Watchpoint not enabled")
	}
}

func TestWatchpointManager_CheckWatchpoints_Register(t *testing.T) {
	wm := NewWatchpointManager()
	m := machine.NewMachineState(0, nil)

	wp := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)

	m.SetRegister(0, 100)
	if err := wm.InitializeWatchpoint(wp.ID, m); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}
	if wp.LastValue != 100 {
		t.Errorf("LastValue = %d, want 100", wp.LastValue)
	}

	if triggered, changed := wm.CheckWatchpoints(m); triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	m.SetRegister(0, 200)
	triggered, changed := wm.CheckWatchpoints(m)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}
	if wp.LastValue != 200 {
		t.Errorf("LastValue not updated: got %d, want 200", wp.LastValue)
	}
}

func TestWatchpointManager_CheckWatchpoints_Scratchpad(t *testing.T) {
	wm := NewWatchpointManager()
	m := machine.NewMachineState(0, nil)

	var addr byte = 0x10
	wp := wm.AddWatchpoint(WatchWrite, "[0x10]", addr, false, 0)

	m.Scratchpad[addr] = 0x12
	if err := wm.InitializeWatchpoint(wp.ID, m); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	if triggered, changed := wm.CheckWatchpoints(m); triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	m.Scratchpad[addr] = 0xAB
	triggered, changed := wm.CheckWatchpoints(m)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
}

func TestWatchpointManager_Disabled(t *testing.T) {
	wm := NewWatchpointManager()
	m := machine.NewMachineState(0, nil)

	wp := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)
	_ = wm.InitializeWatchpoint(wp.ID, m)
	_ = wm.DisableWatchpoint(wp.ID)

	m.SetRegister(0, 100)

	triggered, _ := wm.CheckWatchpoints(m)
	if triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManager_GetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)
	wm.AddWatchpoint(WatchRead, "s1", 0, true, 1)
	wm.AddWatchpoint(WatchReadWrite, "[0x10]", 0x10, false, 0)

	if all := wm.GetAllWatchpoints(); len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)
	wm.AddWatchpoint(WatchRead, "s1", 0, true, 1)

	wm.Clear()

	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}

func TestWatchpoint_Types(t *testing.T) {
	wm := NewWatchpointManager()

	wpWrite := wm.AddWatchpoint(WatchWrite, "s0", 0, true, 0)
	wpRead := wm.AddWatchpoint(WatchRead, "s1", 0, true, 1)
	wpAccess := wm.AddWatchpoint(WatchReadWrite, "s2", 0, true, 2)

	if wpWrite.Type != WatchWrite {
		t.Error("Wrong type for write watchpoint")
	}
	if wpRead.Type != WatchRead {
		t.Error("Wrong type for read watchpoint")
	}
	if wpAccess.Type != WatchReadWrite {
		t.Error("Wrong type for access watchpoint")
	}
}
