package session

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core/account"
)

// Phase is the session lifecycle phase. A restored snapshot is trusted
// optimistically and presented immediately; the backend's asynchronous
// confirmation later resolves it to Confirmed or tears it down.
type Phase int

const (
	NoSession Phase = iota
	RestoredOptimistically
	Confirmed
)

func (p Phase) String() string {
	switch p {
	case RestoredOptimistically:
		return "restored"
	case Confirmed:
		return "confirmed"
	default:
		return "none"
	}
}

// SnapshotStore persists the single session slot across reloads.
// The snapshot must round-trip exactly: same fields, same values.
type SnapshotStore interface {
	SaveSnapshot(acct account.Account) error
	LoadSnapshot() (*account.Account, error)
	ClearSnapshot() error
}

// Subscriber is notified on every session change; nil means no session.
type Subscriber func(acct *account.Account)

// Manager owns the single current-account record for the process lifetime.
// All other components read it; none mutate it except through Update.
type Manager struct {
	mu      sync.RWMutex
	store   SnapshotStore
	phase   Phase
	current *account.Account
	subs    []Subscriber
}

func NewManager(store SnapshotStore) *Manager {
	return &Manager{store: store}
}

// Establish sets the session and persists the snapshot for reload survival.
func (m *Manager) Establish(acct account.Account) error {
	m.mu.Lock()
	m.phase = Confirmed
	m.current = &acct
	m.mu.Unlock()

	if err := m.store.SaveSnapshot(acct); err != nil {
		return errors.Wrap(err, "persisting session snapshot")
	}
	m.notify(&acct)
	return nil
}

// Update is the only mutation entrypoint for the current account record.
func (m *Manager) Update(acct account.Account) error {
	m.mu.Lock()
	if m.current == nil || m.current.ID != acct.ID {
		m.mu.Unlock()
		return errors.New("no matching active session")
	}
	m.current = &acct
	m.mu.Unlock()

	if err := m.store.SaveSnapshot(acct); err != nil {
		return errors.Wrap(err, "persisting session snapshot")
	}
	m.notify(&acct)
	return nil
}

// Teardown clears the session and its persisted snapshot. It is a pure
// local-state operation and is idempotent; it never contacts the backend
// (callers invoke Backend.SignOut separately).
func (m *Manager) Teardown() {
	m.mu.Lock()
	wasActive := m.current != nil
	m.phase = NoSession
	m.current = nil
	m.mu.Unlock()

	_ = m.store.ClearSnapshot() // best effort; local state is already cleared
	if wasActive {
		m.notify(nil)
	}
}

// Restore loads a persisted snapshot, if any, and presents it immediately
// without blocking on a backend round trip. Returns true when a session was
// restored (optimistically).
func (m *Manager) Restore() bool {
	acct, err := m.store.LoadSnapshot()
	if err != nil || acct == nil {
		return false
	}

	m.mu.Lock()
	m.phase = RestoredOptimistically
	m.current = acct
	m.mu.Unlock()

	m.notify(acct)
	return true
}

// ConfirmRestored resolves an optimistically restored session against the
// backend: Confirmed when the backend still recognizes the identity, torn
// down otherwise. No-op unless the session is in the optimistic phase.
func (m *Manager) ConfirmRestored(backend account.Backend) error {
	m.mu.RLock()
	phase, cur := m.phase, m.current
	m.mu.RUnlock()
	if phase != RestoredOptimistically || cur == nil {
		return nil
	}

	ok, err := backend.ConfirmSession(cur.ID)
	if err != nil {
		return errors.Wrap(err, "confirming restored session")
	}
	if !ok {
		m.Teardown()
		return nil
	}

	m.mu.Lock()
	// the session may have been torn down while the check was in flight
	if m.phase == RestoredOptimistically {
		m.phase = Confirmed
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) Current() *account.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.IsAdmin()
}

func (m *Manager) IsVerified() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.Verified
}

// Subscribe registers fn for session-change notifications (UI refresh).
func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) notify(acct *account.Account) {
	m.mu.RLock()
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(acct)
	}
}
