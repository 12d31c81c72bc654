package auth

import (
	"github.com/go-playground/validator/v10"

	"github.com/kymoja/darasa/core"
)

// PendingVerification is the locally stored note of an account awaiting email
// verification, used to resume the flow after a process restart.
type PendingVerification struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AdminNo   string `json:"admin_no,omitempty"`
}

// MarkerStore persists the pending-verification marker and the remembered
// login email. Both are plain convenience slots; neither holds credentials.
type MarkerStore interface {
	SavePendingVerification(pv PendingVerification) error
	LoadPendingVerification() (*PendingVerification, error)
	ClearPendingVerification() error

	SaveRememberedEmail(email string) error
	LoadRememberedEmail() (string, error)
	ClearRememberedEmail() error
}

// RegisterInput contains information needed to register a new account.
// NRIC is the raw sensitive identifier; it is masked and hashed at the point
// of capture and never persisted.
type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	NRIC            string `json:"nric" validate:"required,min=6"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"accept_terms"`
	Role            string `json:"role" validate:"required,oneof=admin student"`
	Program         string `json:"program"`
	Semester        string `json:"semester"`
}

func (ri *RegisterInput) Validate(validate *validator.Validate) error {
	ri.Name = core.CleanString(ri.Name)
	ri.Email = core.CleanString(ri.Email, true /* lower */)
	ri.NRIC = core.CleanString(ri.NRIC)
	ri.Phone = core.CleanString(ri.Phone)
	return validate.Struct(ri)
}

// LoginInput contains login form data. AdminCode is the 4-digit code admins
// must submit in addition to their credentials.
type LoginInput struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	Role          string `json:"role" validate:"required,oneof=admin student"`
	AdminCode     string `json:"admin_code"`
	RememberEmail bool   `json:"remember_email"`
}

func (li *LoginInput) Validate(validate *validator.Validate) error {
	li.Email = core.CleanString(li.Email, true /* lower */)
	li.AdminCode = core.CleanString(li.AdminCode)
	return validate.Struct(li)
}
