package activity

import (
	"fmt"
	"sort"
	"time"

	"github.com/kymoja/darasa/core"
)

// Kinds tag entries for display filtering.
const (
	KindInfo     = "info"
	KindWarning  = "warning"
	KindSecurity = "security"
)

// Entry is one append-only activity log line.
type Entry struct {
	At     time.Time `json:"at"` // UTC
	Action string    `json:"action"`
	Actor  string    `json:"actor"` // acting user email
	Kind   string    `json:"kind"`
}

// Store holds the activity collection, read and written whole.
type Store interface {
	LoadAll() ([]Entry, error)
	ReplaceAll(entries []Entry) error
}

var nowFunc = time.Now // mockable

// Service appends to and reads the activity log. Entries are never updated or
// deleted individually; the only removal is the admin bulk Clear.
type Service struct {
	store  Store
	logger core.Logger
}

func NewService(store Store, logger core.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an entry. A failing append never fails the operation that
// triggered it; the error is logged and swallowed.
func (svc *Service) Record(action, actor, kind string) {
	if kind == "" {
		kind = KindInfo
	}
	entry := Entry{At: nowFunc().UTC(), Action: action, Actor: actor, Kind: kind}

	all, err := svc.store.LoadAll()
	if err == nil {
		err = svc.store.ReplaceAll(append(all, entry))
	}
	if err != nil && svc.logger != nil {
		svc.logger.Warn(fmt.Sprintf("recording activity %q: %v", action, err), err)
	}
}

// Entries returns the log, newest first.
func (svc *Service) Entries() ([]Entry, error) {
	all, err := svc.store.LoadAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].At.After(all[j].At) })
	return all, nil
}

// Clear wipes the log (explicit administrative action).
func (svc *Service) Clear() error {
	return svc.store.ReplaceAll([]Entry{})
}
