package localstore

import (
	"testing"
	"time"

	"github.com/kymoja/darasa/core/account"
)

func TestTokenExpiry(t *testing.T) {
	secret := []byte("secret")
	timeout := 3 * 24 * time.Hour
	rec := accountRecord{
		Account:        account.Account{ID: "acct-1"},
		CredentialHash: []byte("$2a$10$fakehash"),
	}

	token, err := makeToken(rec, secret)
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}
	if err = verifyToken(rec, token, secret, timeout); err != nil {
		t.Errorf("fresh token must verify, got %v", err)
	}

	// jump past the timeout
	tokenNowFunc = func() time.Time { return time.Now().Add(4 * 24 * time.Hour) }
	defer func() { tokenNowFunc = time.Now }()
	if err = verifyToken(rec, token, secret, timeout); err != errTokenExpired {
		t.Errorf("expected errTokenExpired, got %v", err)
	}
}

func TestTokenTampering(t *testing.T) {
	secret := []byte("secret")
	rec := accountRecord{Account: account.Account{ID: "acct-1"}, CredentialHash: []byte("h")}

	token, err := makeToken(rec, secret)
	if err != nil {
		t.Fatalf("makeToken(): %v", err)
	}

	other := rec
	other.ID = "acct-2"
	if err = verifyToken(other, token, secret, time.Hour*72); err != errInvalidToken {
		t.Errorf("token must be bound to the account, got %v", err)
	}
	if err = verifyToken(rec, token, []byte("wrong"), time.Hour*72); err != errInvalidToken {
		t.Errorf("token must be bound to the secret, got %v", err)
	}
	if err = verifyToken(rec, "", secret, time.Hour*72); err != errInvalidToken {
		t.Errorf("empty token must be rejected, got %v", err)
	}
}
