package debugger

import (
	"testing"

	"github.com/lookbusy1344/picosim/machine"
)

func TestBreakpointManager_AddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp, err := bm.AddBreakpoint(0x100, false, "")
	if err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}

	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}

	if bp.Address != 0x100 {
		t.Errorf("Expected address 0x100, got 0x%03X", bp.Address)
	}

	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}

	if bp.Temporary {
		t.Error("Breakpoint should not be temporary")
	}

	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManager_AddBreakpoint_OutOfRange(t *testing.T) {
	bm := NewBreakpointManager()

	_, err := bm.AddBreakpoint(machine.MaxAddress+1, false, "")
	if err == nil {
		t.Fatal("expected an error for an out-of-range address")
	}

	if bm.Count() != 0 {
		t.Errorf("an out-of-range breakpoint should not be stored, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, _ := bm.AddBreakpoint(0x100, false, "")
	bp2, _ := bm.AddBreakpoint(0x200, false, "")

	if bp1.ID == bp2.ID {
		t.Error("Breakpoint IDs should be unique")
	}

	if bm.Count() != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddDuplicate(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, _ := bm.AddBreakpoint(0x100, false, "")
	bp2, _ := bm.AddBreakpoint(0x100, false, "s0 == 5")

	// Adding to same address should update existing breakpoint
	if bp1.ID != bp2.ID {
		t.Error("Duplicate address should update existing breakpoint")
	}

	if bp2.Condition != "s0 == 5" {
		t.Error("Condition not updated")
	}
}

func TestBreakpointManager_DeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp, _ := bm.AddBreakpoint(0x100, false, "")

	err := bm.DeleteBreakpoint(bp.ID)
	if err != nil {
		t.Fatalf("DeleteBreakpoint failed: %v", err)
	}

	if bm.GetBreakpoint(0x100) != nil {
		t.Error("Breakpoint not deleted")
	}

	// Try to delete non-existent breakpoint
	err = bm.DeleteBreakpoint(999)
	if err == nil {
		t.Error("Expected error when deleting non-existent breakpoint")
	}
}

func TestBreakpointManager_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()

	bp, _ := bm.AddBreakpoint(0x100, false, "")

	// Disable
	err := bm.DisableBreakpoint(bp.ID)
	if err != nil {
		t.Fatalf("DisableBreakpoint failed: %v", err)
	}

	if bp.Enabled {
		t.Error("Breakpoint not disabled")
	}

	// Enable
	err = bm.EnableBreakpoint(bp.ID)
	if err != nil {
		t.Fatalf("EnableBreakpoint failed: %v", err)
	}

	if !bp.Enabled {
		t.Error("Breakpoint not enabled")
	}
}

func TestBreakpointManager_GetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x100, false, "")
	bm.AddBreakpoint(0x200, false, "")

	bp := bm.GetBreakpoint(0x100)
	if bp == nil {
		t.Fatal("GetBreakpoint returned nil")
	}

	if bp.Address != 0x100 {
		t.Errorf("Wrong breakpoint returned: got 0x%03X, want 0x100", bp.Address)
	}

	bp = bm.GetBreakpoint(0x300)
	if bp != nil {
		t.Error("GetBreakpoint should return nil for non-existent address")
	}
}

func TestBreakpointManager_GetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()

	bp1, _ := bm.AddBreakpoint(0x100, false, "")
	bp2, _ := bm.AddBreakpoint(0x200, false, "")

	found := bm.GetBreakpointByID(bp1.ID)
	if found != bp1 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}

	found = bm.GetBreakpointByID(bp2.ID)
	if found != bp2 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}

	found = bm.GetBreakpointByID(999)
	if found != nil {
		t.Error("GetBreakpointByID should return nil for non-existent ID")
	}
}

func TestBreakpointManager_GetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x100, false, "")
	bm.AddBreakpoint(0x200, false, "")
	bm.AddBreakpoint(0x300, false, "")

	all := bm.GetAllBreakpoints()

	if len(all) != 3 {
		t.Errorf("Expected 3 breakpoints, got %d", len(all))
	}
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x100, false, "")
	bm.AddBreakpoint(0x200, false, "")

	bm.Clear()

	if bm.Count() != 0 {
		t.Errorf("Expected 0 breakpoints after clear, got %d", bm.Count())
	}
}

func TestBreakpointManager_HasBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x100, false, "")

	if !bm.HasBreakpoint(0x100) {
		t.Error("HasBreakpoint returned false for existing breakpoint")
	}

	if bm.HasBreakpoint(0x200) {
		t.Error("HasBreakpoint returned true for non-existent breakpoint")
	}
}

func TestBreakpointManager_DeleteBreakpointAt(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x100, false, "")

	if err := bm.DeleteBreakpointAt(0x100); err != nil {
		t.Fatalf("DeleteBreakpointAt failed: %v", err)
	}

	if err := bm.DeleteBreakpointAt(0x100); err == nil {
		t.Error("expected an error deleting an address with no breakpoint")
	}
}

func TestBreakpoint_Temporary(t *testing.T) {
	bm := NewBreakpointManager()

	bp, _ := bm.AddBreakpoint(0x100, true, "")

	if !bp.Temporary {
		t.Error("Breakpoint should be temporary")
	}
}

func TestBreakpoint_Condition(t *testing.T) {
	bm := NewBreakpointManager()

	condition := "s0 == 42"
	bp, _ := bm.AddBreakpoint(0x100, false, condition)

	if bp.Condition != condition {
		t.Errorf("Condition = %s, want %s", bp.Condition, condition)
	}
}

func TestBreakpoint_HitCount(t *testing.T) {
	bm := NewBreakpointManager()

	bp, _ := bm.AddBreakpoint(0x100, false, "")

	if bp.HitCount != 0 {
		t.Errorf("Initial hit count = %d, want 0", bp.HitCount)
	}

	bp.HitCount++
	bp.HitCount++

	if bp.HitCount != 2 {
		t.Errorf("Hit count = %d, want 2", bp.HitCount)
	}
}

func TestBreakpointManager_ProcessHit(t *testing.T) {
	bm := NewBreakpointManager()

	bp, _ := bm.AddBreakpoint(0x100, true, "")

	hit := bm.ProcessHit(0x100)
	if hit == nil {
		t.Fatal("ProcessHit returned nil for a set breakpoint")
	}
	if hit.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", hit.HitCount)
	}

	if bm.GetBreakpoint(0x100) != nil {
		t.Error("temporary breakpoint should be removed after its hit")
	}

	if bp.Address != 0x100 {
		t.Errorf("unexpected mutation of original breakpoint address: 0x%03X", bp.Address)
	}
}
