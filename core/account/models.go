package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mwalimu/darasa/core"
)

// Hash schemes. The sha256 scheme is the tutorial's chapter 8 toy (unsalted
// hex digest); bcrypt is the chapter 12 upgrade. New accounts always get
// bcrypt; sha256 survives only on seeded demo accounts until their first
// successful login.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

type Account struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	HashScheme   string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

// SetPassword hashes pwd with bcrypt; the demo scheme is never applied to
// passwords we set ourselves.
func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	a.HashScheme = SchemeBcrypt
	return nil
}

// SetDemoPassword stores the unsalted sha256 digest the original tutorial
// uses. Seed data only.
func (a *Account) SetDemoPassword(pwd string) {
	a.PasswordHash = sha256Hex(pwd)
	a.HashScheme = SchemeSHA256
}

// CheckPassword verifies pwd against the stored hash under the account's
// scheme.
func (a *Account) CheckPassword(pwd string) bool {
	switch a.HashScheme {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(pwd)) == nil
	case SchemeSHA256:
		return subtle.ConstantTimeCompare([]byte(a.PasswordHash), []byte(sha256Hex(pwd))) == 1
	}
	return false
}

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NewAccount contains information needed to register a new Account.
type NewAccount struct {
	Username        string `json:"username" validate:"required,min=4,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAccount) Clean() {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
	if na.Role == "" {
		na.Role = RoleUser
	}
}

type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}
