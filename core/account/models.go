package account

import (
	"errors"
	"time"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var Roles = []Role{
	{Name: "Student", Value: RoleStudent},
	{Name: "Admin", Value: RoleAdmin},
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var (
	// backend error taxonomy; both backends map their failures onto these.
	ErrNotFound            = errors.New("account not found")
	ErrEmailExists         = errors.New("an account with this email already exists")
	ErrDuplicateIdentifier = errors.New("an account with this identifier already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrNotVerified         = errors.New("account not verified")
	ErrRoleMismatch        = errors.New("account role does not match")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNetworkFailure      = errors.New("network failure, try again later")
	ErrUnsupported         = errors.New("operation not supported by this backend")
)

// Account is an identity record. The raw sensitive identifier is never stored;
// only its masked form and one-way hash survive registration.
type Account struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"` // unique, lower-cased
	Role       string    `json:"role"`
	Verified   bool      `json:"verified"`
	Disabled   bool      `json:"disabled"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	MaskedNRIC string    `json:"masked_nric"`
	NRICHash   string    `json:"nric_hash"`
	AdminNo    string    `json:"admin_no,omitempty"`   // AD-####
	StudentNo  string    `json:"student_no,omitempty"` // STU<YY>-####
	Program    string    `json:"program,omitempty"`
	Semester   string    `json:"semester,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	LastLogin  time.Time `json:"last_login"` // UTC
}

func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }

// HumanNo returns the role-specific human-readable id.
func (a *Account) HumanNo() string {
	if a.IsAdmin() {
		return a.AdminNo
	}
	return a.StudentNo
}

// NewAccount carries the already-validated, already-masked fields needed to
// create an Account. The raw identifier must not appear here.
type NewAccount struct {
	Email      string
	Role       string
	Name       string
	Phone      string
	MaskedNRIC string
	NRICHash   string
	AdminNo    string
	StudentNo  string
	Program    string
	Semester   string
}

// ProfileUpdate defines what may be modified on an existing Account.
// Empty fields are left untouched (merge semantics, enforced by the backend
// fetching-merging-writing, never by naive overwrite).
type ProfileUpdate struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Program   string `json:"program"`
	Semester  string `json:"semester"`
	Verified  *bool  `json:"-"`
	LastLogin *time.Time
}

// Merge applies the update on top of orig.
func (pu ProfileUpdate) Merge(orig Account) Account {
	if pu.Name != "" {
		orig.Name = pu.Name
	}
	if pu.Phone != "" {
		orig.Phone = pu.Phone
	}
	if pu.Program != "" {
		orig.Program = pu.Program
	}
	if pu.Semester != "" {
		orig.Semester = pu.Semester
	}
	if pu.Verified != nil {
		orig.Verified = *pu.Verified
	}
	if pu.LastLogin != nil {
		orig.LastLogin = pu.LastLogin.UTC()
	}
	return orig
}

// Backend is the uniform contract over the two interchangeable identity
// backends (remote identity/document service, local flat-file store).
type Backend interface {
	// CreateAccount fails with ErrEmailExists if the email is taken. The
	// remote backend additionally sends a verification challenge as a side
	// effect; a failure between identity creation and profile write can leave
	// a partial account behind (documented gap, not a guarantee).
	CreateAccount(na NewAccount, credential string) (Account, error)
	SignIn(email, credential string) (Account, error)
	// SignOut always clears local authentication state, even when the remote
	// call fails.
	SignOut() error
	FetchProfile(accountID string) (Account, error)
	UpdateProfile(accountID string, fields ProfileUpdate) (Account, error)
	// ReserveIdentifierHash fails with ErrDuplicateIdentifier when the hash is
	// already held by a different account. Creation and reservation are two
	// non-atomic calls; the caller must sign the new account out on conflict.
	ReserveIdentifierHash(hash, accountID string) error
	SendVerification(accountID string) error
	ConfirmVerificationStatus(accountID string) (bool, error)
	ResetCredential(email string) error
	// ConfirmSession reports whether the backend still recognizes accountID as
	// authenticated; used to resolve an optimistically restored session.
	ConfirmSession(accountID string) (bool, error)
	// Accounts lists accounts by role (empty role: all).
	Accounts(role string) ([]Account, error)
	// DeleteAccount is deliberately unsupported on the remote backend and
	// returns ErrUnsupported there.
	DeleteAccount(accountID string) error
}

// CredentialResetConfirmer is implemented by backends that complete the
// credential reset themselves instead of delegating it to a hosted service.
type CredentialResetConfirmer interface {
	ConfirmCredentialReset(uid, token, newCredential string) error
}
