package api

import (
	"strings"
	"testing"
)

const validSource = `
start:	LOAD s0, 0A
	JUMP start
`

func TestSessionManager_CreateAndGet(t *testing.T) {
	sm := NewSessionManager()

	session, assembleErrs, err := sm.CreateSession(SessionCreateRequest{Source: validSource})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assembleErrs != nil {
		t.Fatalf("unexpected assemble errors: %v", assembleErrs.Errors)
	}
	if session.ID == "" {
		t.Fatal("expected a non-empty session ID")
	}

	got, err := sm.GetSession(session.ID)
	if err != nil {
		t.Fatalf("unexpected error fetching session: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, got.ID)
	}
}

func TestSessionManager_CreateSession_AssembleError(t *testing.T) {
	sm := NewSessionManager()

	session, assembleErrs, err := sm.CreateSession(SessionCreateRequest{Source: "JUMP undefined_label"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session != nil {
		t.Fatal("expected no session for a program that fails to assemble")
	}
	if assembleErrs == nil || len(assembleErrs.Errors) == 0 {
		t.Fatal("expected assemble errors for an undefined label")
	}
}

func TestSessionManager_DestroySession(t *testing.T) {
	sm := NewSessionManager()
	session, _, err := sm.CreateSession(SessionCreateRequest{Source: validSource})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := sm.DestroySession(session.ID); err != nil {
		t.Fatalf("unexpected error destroying session: %v", err)
	}
	if _, err := sm.GetSession(session.ID); err == nil {
		t.Error("expected an error fetching a destroyed session")
	}
	if err := sm.DestroySession(session.ID); err == nil {
		t.Error("expected an error destroying an already-destroyed session")
	}
}

func TestSessionManager_ListAndCount(t *testing.T) {
	sm := NewSessionManager()
	if sm.Count() != 0 {
		t.Fatalf("expected 0 sessions, got %d", sm.Count())
	}

	s1, _, err := sm.CreateSession(SessionCreateRequest{Source: validSource})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, _, err := sm.CreateSession(SessionCreateRequest{Source: validSource})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sm.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", sm.Count())
	}

	ids := sm.ListSessions()
	joined := strings.Join(ids, ",")
	if !strings.Contains(joined, s1.ID) || !strings.Contains(joined, s2.ID) {
		t.Errorf("expected both session IDs in list, got %v", ids)
	}
}

func TestSessionPorts_CannedReadAndWriteDrain(t *testing.T) {
	ports := newSessionPorts()

	if v := ports.PortRead(0x05); v != 0 {
		t.Errorf("expected default canned read of 0, got %d", v)
	}

	ports.setCanned(0x05, 0x42)
	if v := ports.PortRead(0x05); v != 0x42 {
		t.Errorf("expected canned read 0x42, got 0x%02X", v)
	}
	// Canned values persist across reads until replaced by another setCanned.
	if v := ports.PortRead(0x05); v != 0x42 {
		t.Errorf("expected canned read to persist, got 0x%02X", v)
	}

	ports.PortWrite(0x10, 0x01)
	ports.PortWrite(0x11, 0x02)

	writes := ports.drainWrites()
	if len(writes) != 2 {
		t.Fatalf("expected 2 queued writes, got %d", len(writes))
	}
	if writes[0].Port != 0x10 || writes[0].Value != 0x01 {
		t.Errorf("unexpected first write: %+v", writes[0])
	}

	// drainWrites empties the queue.
	if writes := ports.drainWrites(); len(writes) != 0 {
		t.Errorf("expected drained queue to be empty, got %v", writes)
	}
}
