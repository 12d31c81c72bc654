package remote

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
)

const keyToken = "backend:remote_token"

// KV is the slot persistence the backend needs for its auth token; the local
// flat-file store satisfies it.
type KV interface {
	Get(key string, out interface{}) (bool, error)
	Put(key string, v interface{}) error
	Delete(key string) error
}

// token is the hosted service's session material, persisted locally so a
// restart can resume the session optimistically.
type token struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	AccountID    string `json:"account_id"`
}

// Backend implements the identity contract against the hosted
// identity/document service over REST. Identity and profile live in two
// separate resources; a crash between the two writes can leave a partial
// account behind, which the registration flow compensates for.
type Backend struct {
	cfg    *core.Config
	kv     KV
	client *rest.Client
	logger core.Logger
}

var _ account.Backend = (*Backend)(nil)

func NewBackend(cfg *core.Config, kv KV, logger core.Logger) *Backend {
	return &Backend{
		cfg:    cfg,
		kv:     kv,
		client: &rest.Client{HTTPClient: http.DefaultClient},
		logger: logger,
	}
}

func (b *Backend) token() (*token, error) {
	var tok token
	ok, err := b.kv.Get(keyToken, &tok)
	if err != nil || !ok {
		return nil, err
	}
	return &tok, nil
}

// wire shapes

type signUpResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

type profileDoc struct {
	account.Account
}

// CreateAccount creates the identity, stores the session token, then writes
// the profile document. The two calls are not atomic.
func (b *Backend) CreateAccount(na account.NewAccount, credential string) (account.Account, error) {
	var res signUpResponse
	err := b.call(rest.Post, "/v1/accounts:signUp", nil, map[string]interface{}{
		"email":             na.Email,
		"password":          credential,
		"returnSecureToken": true,
	}, &res, "")
	if err != nil {
		return account.Account{}, err
	}

	tok := token{IDToken: res.IDToken, RefreshToken: res.RefreshToken, AccountID: res.LocalID}
	if err = b.kv.Put(keyToken, tok); err != nil {
		return account.Account{}, err
	}

	acct := account.Account{
		ID:         res.LocalID,
		Email:      na.Email,
		Role:       na.Role,
		Name:       na.Name,
		Phone:      na.Phone,
		MaskedNRIC: na.MaskedNRIC,
		NRICHash:   na.NRICHash,
		AdminNo:    na.AdminNo,
		StudentNo:  na.StudentNo,
		Program:    na.Program,
		Semester:   na.Semester,
	}
	err = b.call(rest.Put, "/v1/documents/profiles/"+acct.ID, nil, profileDoc{Account: acct}, &acct, tok.IDToken)
	if err != nil {
		return account.Account{}, err
	}

	// verification challenge is part of sign-up on this backend
	if err = b.SendVerification(acct.ID); err != nil && b.logger != nil {
		b.logger.Warn(fmt.Sprintf("sending verification challenge: %v", err), err)
	}
	return acct, nil
}

func (b *Backend) SignIn(email, credential string) (account.Account, error) {
	var res signUpResponse
	err := b.call(rest.Post, "/v1/accounts:signInWithPassword", nil, map[string]interface{}{
		"email":             email,
		"password":          credential,
		"returnSecureToken": true,
	}, &res, "")
	if err != nil {
		return account.Account{}, err
	}

	tok := token{IDToken: res.IDToken, RefreshToken: res.RefreshToken, AccountID: res.LocalID}
	if err = b.kv.Put(keyToken, tok); err != nil {
		return account.Account{}, err
	}
	return b.FetchProfile(res.LocalID)
}

// SignOut revokes the session best-effort; the local token is cleared no
// matter what the service says.
func (b *Backend) SignOut() error {
	if tok, err := b.token(); err == nil && tok != nil {
		if err = b.call(rest.Post, "/v1/accounts:signOut", nil, map[string]interface{}{
			"idToken": tok.IDToken,
		}, nil, tok.IDToken); err != nil && b.logger != nil {
			b.logger.Warn(fmt.Sprintf("revoking remote session: %v", err), err)
		}
	}
	return b.kv.Delete(keyToken)
}

func (b *Backend) FetchProfile(accountID string) (account.Account, error) {
	tok, err := b.token()
	if err != nil {
		return account.Account{}, err
	}
	idToken := ""
	if tok != nil {
		idToken = tok.IDToken
	}

	var doc profileDoc
	if err = b.call(rest.Get, "/v1/documents/profiles/"+accountID, nil, nil, &doc, idToken); err != nil {
		return account.Account{}, err
	}
	return doc.Account, nil
}

// UpdateProfile fetches, merges and rewrites the whole document; the service
// has no partial update.
func (b *Backend) UpdateProfile(accountID string, fields account.ProfileUpdate) (account.Account, error) {
	orig, err := b.FetchProfile(accountID)
	if err != nil {
		return account.Account{}, err
	}
	merged := fields.Merge(orig)

	tok, err := b.token()
	if err != nil {
		return account.Account{}, err
	}
	idToken := ""
	if tok != nil {
		idToken = tok.IDToken
	}
	if err = b.call(rest.Put, "/v1/documents/profiles/"+accountID, nil, profileDoc{Account: merged}, nil, idToken); err != nil {
		return account.Account{}, err
	}
	return merged, nil
}

// ReserveIdentifierHash claims the hash slot; the service rejects a slot held
// by another account with a conflict.
func (b *Backend) ReserveIdentifierHash(hash, accountID string) error {
	tok, err := b.token()
	if err != nil {
		return err
	}
	idToken := ""
	if tok != nil {
		idToken = tok.IDToken
	}
	return b.call(rest.Post, "/v1/documents/nric_index/"+hash, nil, map[string]string{
		"account_id": accountID,
	}, nil, idToken)
}

func (b *Backend) SendVerification(accountID string) error {
	tok, err := b.token()
	if err != nil {
		return err
	}
	if tok == nil || tok.AccountID != accountID {
		return account.ErrPermissionDenied
	}
	return b.call(rest.Post, "/v1/accounts:sendOobCode", nil, map[string]string{
		"requestType": "VERIFY_EMAIL",
		"idToken":     tok.IDToken,
	}, nil, tok.IDToken)
}

func (b *Backend) ConfirmVerificationStatus(accountID string) (bool, error) {
	tok, err := b.token()
	if err != nil {
		return false, err
	}
	if tok == nil || tok.AccountID != accountID {
		return false, account.ErrPermissionDenied
	}

	var res lookupResponse
	err = b.call(rest.Post, "/v1/accounts:lookup", nil, map[string]string{
		"idToken": tok.IDToken,
	}, &res, tok.IDToken)
	if err != nil {
		return false, err
	}
	if len(res.Users) == 0 {
		return false, account.ErrNotFound
	}
	return res.Users[0].EmailVerified, nil
}

func (b *Backend) ResetCredential(email string) error {
	err := b.call(rest.Post, "/v1/accounts:sendOobCode", nil, map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil, "")
	if err == account.ErrInvalidCredentials || err == account.ErrNotFound {
		// do not leak account existence
		return nil
	}
	return err
}

// ConfirmSession resolves an optimistically restored session by asking the
// service whether the stored token is still good. A rejected token means no;
// a transport failure is surfaced so the caller can keep waiting.
func (b *Backend) ConfirmSession(accountID string) (bool, error) {
	tok, err := b.token()
	if err != nil {
		return false, err
	}
	if tok == nil || tok.AccountID != accountID {
		return false, nil
	}

	var res lookupResponse
	err = b.call(rest.Post, "/v1/accounts:lookup", nil, map[string]string{
		"idToken": tok.IDToken,
	}, &res, tok.IDToken)
	switch err {
	case nil:
	case account.ErrPermissionDenied:
		return false, nil
	default:
		return false, err
	}
	return len(res.Users) > 0 && res.Users[0].LocalID == accountID && !res.Users[0].Disabled, nil
}

func (b *Backend) Accounts(role string) ([]account.Account, error) {
	tok, err := b.token()
	if err != nil {
		return nil, err
	}
	idToken := ""
	if tok != nil {
		idToken = tok.IDToken
	}

	var query map[string]string
	if role != "" {
		query = map[string]string{"role": role}
	}
	var res struct {
		Documents []profileDoc `json:"documents"`
	}
	if err = b.call(rest.Get, "/v1/documents/profiles", query, nil, &res, idToken); err != nil {
		return nil, err
	}
	accts := make([]account.Account, 0, len(res.Documents))
	for _, doc := range res.Documents {
		accts = append(accts, doc.Account)
	}
	return accts, nil
}

// DeleteAccount is not offered remotely; removal goes through the hosted
// service's own console.
func (b *Backend) DeleteAccount(string) error {
	return account.ErrUnsupported
}
