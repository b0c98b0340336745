package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/lookbusy1344/picosim/loader"
	"github.com/lookbusy1344/picosim/machine"
)

// sessionPorts is a machine.PortHandler that lets an API client act as the
// host side of INPUT/OUTPUT: it supplies canned values for PortRead and
// records every PortWrite for later draining, the way a bench harness
// stands in for real PicoBlaze peripherals.
type sessionPorts struct {
	mu      sync.Mutex
	canned  map[byte]byte
	writes  []PortWriteEvent
}

func newSessionPorts() *sessionPorts {
	return &sessionPorts{canned: make(map[byte]byte)}
}

func (p *sessionPorts) PortRead(port byte) byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canned[port]
}

func (p *sessionPorts) PortWrite(port byte, value byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, PortWriteEvent{Port: port, Value: value})
}

func (p *sessionPorts) setCanned(port, value byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.canned[port] = value
}

func (p *sessionPorts) drainWrites() []PortWriteEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.writes
	p.writes = nil
	return out
}

// Session wraps a running machine.MachineState with its I/O harness.
type Session struct {
	ID        string
	VM        *machine.MachineState
	Ports     *sessionPorts
	CreatedAt time.Time
}

// SessionManager owns the set of live debugging sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// CreateSession assembles req.Source and wraps the result in a new session.
func (sm *SessionManager) CreateSession(req SessionCreateRequest) (*Session, *AssembleErrorResponse, error) {
	ports := newSessionPorts()
	m, errs := loader.LoadSource(req.Source, req.BuildSig, ports)
	if errs.HasErrors() {
		list := make([]string, len(errs.Errors))
		for i, e := range errs.Errors {
			list[i] = e.Error()
		}
		return nil, &AssembleErrorResponse{Errors: list}, nil
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, nil, fmt.Errorf("generating session id: %w", err)
	}

	session := &Session{
		ID:        id,
		VM:        m,
		Ports:     ports,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	sm.sessions[id] = session
	sm.mu.Unlock()

	debugLog("created session %s", id)
	return session, nil, nil
}

func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return s, nil
}

func (sm *SessionManager) DestroySession(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[id]; !ok {
		return fmt.Errorf("session %s not found", id)
	}
	delete(sm.sessions, id)
	debugLog("destroyed session %s", id)
	return nil
}

func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
