package localstore

import (
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/auth"
	"github.com/kymoja/darasa/core/session"
)

// sessionStore persists the single session snapshot and the auth markers.
// It is always file-backed regardless of which identity backend is active,
// so a restart restores the session the same way in both modes.
type sessionStore struct{ db *DB }

var (
	_ session.SnapshotStore = (*sessionStore)(nil)
	_ auth.MarkerStore      = (*sessionStore)(nil)
)

func NewSessionStore(db *DB) *sessionStore { return &sessionStore{db: db} }

func (s *sessionStore) SaveSnapshot(acct account.Account) error {
	return s.db.Put(keySession, acct)
}

func (s *sessionStore) LoadSnapshot() (*account.Account, error) {
	var acct account.Account
	ok, err := s.db.Get(keySession, &acct)
	if err != nil || !ok {
		return nil, err
	}
	return &acct, nil
}

func (s *sessionStore) ClearSnapshot() error {
	return s.db.Delete(keySession)
}

func (s *sessionStore) SavePendingVerification(pv auth.PendingVerification) error {
	return s.db.Put(keyPendingVerif, pv)
}

func (s *sessionStore) LoadPendingVerification() (*auth.PendingVerification, error) {
	var pv auth.PendingVerification
	ok, err := s.db.Get(keyPendingVerif, &pv)
	if err != nil || !ok {
		return nil, err
	}
	return &pv, nil
}

func (s *sessionStore) ClearPendingVerification() error {
	return s.db.Delete(keyPendingVerif)
}

func (s *sessionStore) SaveRememberedEmail(email string) error {
	return s.db.Put(keyRememberedEmail, email)
}

func (s *sessionStore) LoadRememberedEmail() (string, error) {
	var email string
	if _, err := s.db.Get(keyRememberedEmail, &email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *sessionStore) ClearRememberedEmail() error {
	return s.db.Delete(keyRememberedEmail)
}
