package auth

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/session"
)

// Status is the registration/login machine state. The non-Idle states exist
// to make a second in-flight submission detectable and rejectable.
type Status int

const (
	Idle Status = iota
	Validating
	Submitting
	AwaitingVerification
	Established
)

func (s Status) String() string {
	switch s {
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case AwaitingVerification:
		return "awaiting-verification"
	case Established:
		return "established"
	default:
		return "idle"
	}
}

var (
	ErrBusy = errors.New("another submission is already in flight")

	nowFunc = time.Now // mockable
)

// Flow drives account registration and login against the configured identity
// backend and hands successful logins to the session manager. One Flow serves
// one dashboard session.
type Flow struct {
	mu       sync.Mutex
	status   Status
	backend  account.Backend
	session  *session.Manager
	marker   MarkerStore
	validate *validator.Validate
}

func NewFlow(backend account.Backend, sess *session.Manager, marker MarkerStore, validate *validator.Validate) *Flow {
	return &Flow{
		backend:  backend,
		session:  sess,
		marker:   marker,
		validate: validate,
	}
}

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// begin moves the machine into Validating, rejecting concurrent submissions.
func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != Idle && f.status != AwaitingVerification {
		return ErrBusy
	}
	f.status = Validating
	return nil
}

func (f *Flow) setStatus(s Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

// Register validates the input, creates the account and reserves the
// identifier hash. Creation and reservation are two non-atomic calls: on a
// hash conflict the just-created account is signed out again (mandatory
// compensation) and ErrDuplicateIdentifier is surfaced; the orphaned identity
// stays behind in the backend.
func (f *Flow) Register(in RegisterInput) (PendingVerification, error) {
	if err := f.begin(); err != nil {
		return PendingVerification{}, err
	}

	if err := in.Validate(f.validate); err != nil {
		f.setStatus(Idle)
		return PendingVerification{}, err
	}
	f.setStatus(Submitting)

	na := account.NewAccount{
		Email:      in.Email,
		Role:       in.Role,
		Name:       in.Name,
		Phone:      in.Phone,
		MaskedNRIC: account.Mask(in.NRIC),
		NRICHash:   account.HashIdentifier(in.NRIC),
		Program:    in.Program,
		Semester:   in.Semester,
	}
	switch in.Role {
	case account.RoleAdmin:
		na.AdminNo = account.NewAdminNo()
	default:
		na.StudentNo = account.NewStudentNo()
	}

	acct, err := f.backend.CreateAccount(na, in.Password)
	if err != nil {
		f.setStatus(Idle)
		if errors.Cause(err) == account.ErrEmailExists {
			return PendingVerification{}, core.NewValidationError(account.ErrEmailExists,
				core.FieldError{Field: "email", Error: account.ErrEmailExists.Error()})
		}
		return PendingVerification{}, errors.Wrap(err, "creating account")
	}

	if err := f.backend.ReserveIdentifierHash(na.NRICHash, acct.ID); err != nil {
		// the compensating sign-out runs regardless of what the user does next
		_ = f.backend.SignOut()
		f.setStatus(Idle)
		if errors.Cause(err) == account.ErrDuplicateIdentifier {
			return PendingVerification{}, core.NewValidationError(account.ErrDuplicateIdentifier,
				core.FieldError{Field: "nric", Error: account.ErrDuplicateIdentifier.Error()})
		}
		return PendingVerification{}, errors.Wrap(err, "reserving identifier hash")
	}

	pv := PendingVerification{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
		AdminNo:   acct.AdminNo,
	}
	if err := f.marker.SavePendingVerification(pv); err != nil {
		f.setStatus(Idle)
		return PendingVerification{}, errors.Wrap(err, "storing pending-verification marker")
	}
	f.setStatus(AwaitingVerification)
	return pv, nil
}

// Login authenticates against the backend and establishes the session only
// after every check passes: role match, verification, and (for admins) the
// 4-digit code against the stored AD-#### suffix.
func (f *Flow) Login(in LoginInput) (account.Account, error) {
	if err := f.begin(); err != nil {
		return account.Account{}, err
	}

	if err := in.Validate(f.validate); err != nil {
		f.setStatus(Idle)
		return account.Account{}, err
	}
	f.setStatus(Submitting)

	acct, err := f.backend.SignIn(in.Email, in.Password)
	if err != nil {
		f.setStatus(Idle)
		switch errors.Cause(err) {
		case account.ErrNotFound, account.ErrInvalidCredentials:
			return account.Account{}, account.ErrInvalidCredentials
		case account.ErrAccountDisabled:
			return account.Account{}, account.ErrAccountDisabled
		}
		return account.Account{}, errors.Wrap(err, "signing in")
	}

	if acct.Role != in.Role {
		f.setStatus(Idle)
		return account.Account{}, account.ErrRoleMismatch
	}

	verified, err := f.backend.ConfirmVerificationStatus(acct.ID)
	if err != nil {
		f.setStatus(Idle)
		return account.Account{}, errors.Wrap(err, "confirming verification status")
	}
	if !verified {
		// no local session for unverified accounts; the backend session is
		// explicitly signed out and the marker kept for the resume flow
		_ = f.marker.SavePendingVerification(PendingVerification{
			AccountID: acct.ID,
			Email:     acct.Email,
			Role:      acct.Role,
			AdminNo:   acct.AdminNo,
		})
		_ = f.backend.SignOut()
		f.setStatus(AwaitingVerification)
		return account.Account{}, account.ErrNotVerified
	}

	if acct.IsAdmin() {
		prof, err := f.backend.FetchProfile(acct.ID)
		if err != nil {
			f.setStatus(Idle)
			return account.Account{}, errors.Wrap(err, "fetching admin profile")
		}
		if !account.AdminCodeMatches(prof.AdminNo, in.AdminCode) {
			_ = f.backend.SignOut()
			f.setStatus(Idle)
			return account.Account{}, account.ErrInvalidCredentials
		}
		acct = prof
	}

	now := nowFunc().UTC()
	if updated, err := f.backend.UpdateProfile(acct.ID, account.ProfileUpdate{LastLogin: &now}); err == nil {
		acct = updated
	}

	if err := f.session.Establish(acct); err != nil {
		f.setStatus(Idle)
		return account.Account{}, errors.Wrap(err, "establishing session")
	}
	_ = f.marker.ClearPendingVerification()

	if in.RememberEmail {
		_ = f.marker.SaveRememberedEmail(acct.Email)
	} else {
		_ = f.marker.ClearRememberedEmail()
	}

	f.setStatus(Established)
	return acct, nil
}

// Logout tears the local session down and signs the backend out. Teardown
// happens even when the backend call fails.
func (f *Flow) Logout() error {
	err := f.backend.SignOut()
	f.session.Teardown()
	f.setStatus(Idle)
	return errors.Wrap(err, "signing out")
}

// ResendVerification re-sends the verification challenge for the pending
// account, if any.
func (f *Flow) ResendVerification() error {
	pv, err := f.marker.LoadPendingVerification()
	if err != nil {
		return errors.Wrap(err, "loading pending-verification marker")
	}
	if pv == nil {
		return account.ErrNotFound
	}
	return errors.Wrap(f.backend.SendVerification(pv.AccountID), "sending verification")
}

// PendingVerification returns the stored marker so a restart can resume the
// verification flow.
func (f *Flow) PendingVerification() (*PendingVerification, error) {
	pv, err := f.marker.LoadPendingVerification()
	if err != nil {
		return nil, errors.Wrap(err, "loading pending-verification marker")
	}
	if pv != nil {
		f.setStatus(AwaitingVerification)
	}
	return pv, nil
}

// CheckVerification polls the backend; once verified the marker is cleared
// and the machine returns to Idle so login can proceed.
func (f *Flow) CheckVerification() (bool, error) {
	pv, err := f.marker.LoadPendingVerification()
	if err != nil {
		return false, errors.Wrap(err, "loading pending-verification marker")
	}
	if pv == nil {
		return false, account.ErrNotFound
	}
	verified, err := f.backend.ConfirmVerificationStatus(pv.AccountID)
	if err != nil {
		return false, errors.Wrap(err, "confirming verification status")
	}
	if verified {
		_ = f.marker.ClearPendingVerification()
		f.setStatus(Idle)
	}
	return verified, nil
}

// RequestCredentialReset asks the backend to send the reset challenge.
func (f *Flow) RequestCredentialReset(email string) error {
	return errors.Wrap(f.backend.ResetCredential(core.CleanString(email, true)), "requesting credential reset")
}

// RememberedEmail returns the stored login email, or "".
func (f *Flow) RememberedEmail() string {
	email, err := f.marker.LoadRememberedEmail()
	if err != nil {
		return ""
	}
	return email
}
