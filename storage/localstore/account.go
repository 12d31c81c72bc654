package localstore

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
)

var nowFunc = time.Now // mockable

// accountRecord is the stored shape of an account; the credential hash never
// leaves this package.
type accountRecord struct {
	account.Account
	CredentialHash []byte `json:"credential_hash"`
}

// Backend implements the identity contract on a flat JSON file. All data
// stays on the machine; there is no network and so no partial-create gap.
type Backend struct {
	mu      sync.Mutex // serializes read-modify-write cycles
	db      *DB
	cfg     *core.Config
	mailSvc core.EmailService
}

var (
	_ account.Backend                  = (*Backend)(nil)
	_ account.CredentialResetConfirmer = (*Backend)(nil)
)

func NewBackend(db *DB, cfg *core.Config, mailSvc core.EmailService) *Backend {
	return &Backend{db: db, cfg: cfg, mailSvc: mailSvc}
}

func (b *Backend) loadAccounts() ([]accountRecord, error) {
	var recs []accountRecord
	if _, err := b.db.Get(keyAccounts, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (b *Backend) find(recs []accountRecord, id string) int {
	for i, rec := range recs {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// CreateAccount stores the account and signs it in, mirroring the remote
// service where a successful sign-up yields an authenticated session.
func (b *Backend) CreateAccount(na account.NewAccount, credential string) (account.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.loadAccounts()
	if err != nil {
		return account.Account{}, err
	}
	for _, rec := range recs {
		if rec.Email == na.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "hashing credential")
	}

	rec := accountRecord{
		Account: account.Account{
			ID:         uuid.NewString(),
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
			CreatedAt:  nowFunc().UTC(),
		},
		CredentialHash: hash,
	}

	if err = b.db.Put(keyAccounts, append(recs, rec)); err != nil {
		return account.Account{}, err
	}
	if err = b.db.Put(keyAuthedAccount, rec.ID); err != nil {
		return account.Account{}, err
	}
	return rec.Account, nil
}

func (b *Backend) SignIn(email, credential string) (account.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.loadAccounts()
	if err != nil {
		return account.Account{}, err
	}
	for _, rec := range recs {
		if rec.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(rec.CredentialHash, []byte(credential)) != nil {
			return account.Account{}, account.ErrInvalidCredentials
		}
		if rec.Disabled {
			return account.Account{}, account.ErrAccountDisabled
		}
		if err = b.db.Put(keyAuthedAccount, rec.ID); err != nil {
			return account.Account{}, err
		}
		return rec.Account, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (b *Backend) SignOut() error {
	return b.db.Delete(keyAuthedAccount)
}

func (b *Backend) FetchProfile(accountID string) (account.Account, error) {
	recs, err := b.loadAccounts()
	if err != nil {
		return account.Account{}, err
	}
	if i := b.find(recs, accountID); i >= 0 {
		return recs[i].Account, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (b *Backend) UpdateProfile(accountID string, fields account.ProfileUpdate) (account.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.loadAccounts()
	if err != nil {
		return account.Account{}, err
	}
	i := b.find(recs, accountID)
	if i < 0 {
		return account.Account{}, account.ErrNotFound
	}
	recs[i].Account = fields.Merge(recs[i].Account)
	if err = b.db.Put(keyAccounts, recs); err != nil {
		return account.Account{}, err
	}
	return recs[i].Account, nil
}

func (b *Backend) ReserveIdentifierHash(hash, accountID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := make(map[string]string)
	if _, err := b.db.Get(keyNRICIndex, &index); err != nil {
		return err
	}
	if owner, ok := index[hash]; ok && owner != accountID {
		return account.ErrDuplicateIdentifier
	}
	index[hash] = accountID
	return b.db.Put(keyNRICIndex, index)
}

// SendVerification short-circuits the email challenge: with no hosted
// verification service to click through, the account is flagged verified
// directly and a notice is mailed for the record.
func (b *Backend) SendVerification(accountID string) error {
	verified := true
	acct, err := b.UpdateProfile(accountID, account.ProfileUpdate{Verified: &verified})
	if err != nil {
		return err
	}

	if b.mailSvc != nil {
		b.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: acct.Name, Address: acct.Email}},
			Subject: fmt.Sprintf("Welcome to %s", b.cfg.AppName),
			TextContent: fmt.Sprintf(
				"Hi %s,\n\nYour %s account has been verified. You can now log in at %s.",
				acct.Name, b.cfg.AppName, b.cfg.FrontendBaseURL,
			),
		})
	}
	return nil
}

func (b *Backend) ConfirmVerificationStatus(accountID string) (bool, error) {
	acct, err := b.FetchProfile(accountID)
	if err != nil {
		return false, err
	}
	return acct.Verified, nil
}

// ResetCredential emails a signed reset link. An unknown email is not an
// error; account existence must not leak through this endpoint.
func (b *Backend) ResetCredential(email string) error {
	recs, err := b.loadAccounts()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.Email != email {
			continue
		}
		token, err := makeToken(rec, b.cfg.SecretKey)
		if err != nil {
			return errors.Wrap(err, "generating reset token")
		}
		if b.mailSvc != nil {
			b.mailSvc.SendMessages(&core.EmailMessage{
				To:      []mail.Address{{Name: rec.Name, Address: rec.Email}},
				Subject: fmt.Sprintf("%s password reset", b.cfg.AppName),
				TextContent: fmt.Sprintf(
					"Hi %s,\n\nFollow this link to choose a new password:\n%s/password-reset/%s/%s",
					rec.Name, b.cfg.FrontendBaseURL, encodeUID(rec.ID), token,
				),
			})
		}
		return nil
	}
	return nil
}

// ConfirmCredentialReset completes the reset started by ResetCredential.
func (b *Backend) ConfirmCredentialReset(uid, token, newCredential string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := decodeUID(uid)
	if err != nil {
		return errInvalidToken
	}

	recs, err := b.loadAccounts()
	if err != nil {
		return err
	}
	i := b.find(recs, id)
	if i < 0 {
		return errInvalidToken
	}
	if err = verifyToken(recs[i], token, b.cfg.SecretKey, b.cfg.PasswordResetTimeoutDelta); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newCredential), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing credential")
	}
	recs[i].CredentialHash = hash
	return b.db.Put(keyAccounts, recs)
}

// SetCredential replaces an account's credential directly; admin tooling only.
func (b *Backend) SetCredential(email, credential string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.loadAccounts()
	if err != nil {
		return err
	}
	for i, rec := range recs {
		if rec.Email != email {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hashing credential")
		}
		recs[i].CredentialHash = hash
		return b.db.Put(keyAccounts, recs)
	}
	return account.ErrNotFound
}

func (b *Backend) ConfirmSession(accountID string) (bool, error) {
	var authed string
	ok, err := b.db.Get(keyAuthedAccount, &authed)
	if err != nil {
		return false, err
	}
	return ok && authed == accountID, nil
}

func (b *Backend) Accounts(role string) ([]account.Account, error) {
	recs, err := b.loadAccounts()
	if err != nil {
		return nil, err
	}
	accts := make([]account.Account, 0, len(recs))
	for _, rec := range recs {
		if role == "" || rec.Role == role {
			accts = append(accts, rec.Account)
		}
	}
	return accts, nil
}

// DeleteAccount removes the account along with its identifier reservation and
// enrolments. Attendance history is kept.
func (b *Backend) DeleteAccount(accountID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	recs, err := b.loadAccounts()
	if err != nil {
		return err
	}
	i := b.find(recs, accountID)
	if i < 0 {
		return account.ErrNotFound
	}
	if err = b.db.Put(keyAccounts, append(recs[:i], recs[i+1:]...)); err != nil {
		return err
	}

	index := make(map[string]string)
	if _, err = b.db.Get(keyNRICIndex, &index); err != nil {
		return err
	}
	for hash, owner := range index {
		if owner == accountID {
			delete(index, hash)
		}
	}
	if err = b.db.Put(keyNRICIndex, index); err != nil {
		return err
	}

	enrols := make(map[string]json.RawMessage)
	if _, err = b.db.Get(keyEnrolments, &enrols); err != nil {
		return err
	}
	if _, ok := enrols[accountID]; ok {
		delete(enrols, accountID)
		return b.db.Put(keyEnrolments, enrols)
	}
	return nil
}
