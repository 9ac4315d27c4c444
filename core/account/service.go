package account

import (
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/mwalimu/darasa/core"
)

var (
	// errors; the strings are the tutorial's user-facing messages
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrTooManyAttempts    = errors.New("too many login attempts, slow down")
	ErrUsernameExists     = errors.New("an account with this username already exists")
	ErrEmailExists        = errors.New("an account with this email already exists")
)

// Login attempts per username: a small token bucket, refilled twice a minute.
const (
	loginBurst    = 5
	loginInterval = 30 * time.Second
)

// Service owns the demo account table. Deliberately a toy, like the chapters
// it illustrates: everything lives in process memory and resets on restart.
type Service struct {
	mu       sync.RWMutex
	accounts map[string]*Account // by username

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter // by username

	conf    *core.Config
	logger  core.Logger
	mailSvc core.EmailService
}

func NewService(conf *core.Config, logger core.Logger, mailSvc core.EmailService) *Service {
	svc := &Service{
		accounts: make(map[string]*Account),
		limiters: make(map[string]*rate.Limiter),
		conf:     conf,
		logger:   logger,
		mailSvc:  mailSvc,
	}
	svc.seed()
	return svc
}

// seed loads the chapter 8 demo accounts, sha256-hashed exactly as the
// tutorial stores them.
func (svc *Service) seed() {
	seedData := []struct {
		username, password, email, role, created string
	}{
		{"admin", "admin123", "admin@example.com", RoleAdmin, "2024-01-01"},
		{"user1", "user123", "user1@example.com", RoleUser, "2024-01-15"},
		{"viewer", "viewer123", "viewer@example.com", RoleViewer, "2024-02-01"},
	}
	for _, s := range seedData {
		created, _ := time.Parse("2006-01-02", s.created)
		acct := &Account{
			Username:  s.username,
			Email:     s.email,
			Role:      s.role,
			IsActive:  true,
			CreatedAt: created,
		}
		acct.SetDemoPassword(s.password)
		svc.accounts[acct.Username] = acct
	}
}

func (svc *Service) Register(na NewAccount) (Account, error) {
	na.Clean()

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, exists := svc.accounts[na.Username]; exists {
		return Account{}, core.NewValidationError(ErrUsernameExists,
			core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	for _, acct := range svc.accounts {
		if acct.Email == na.Email {
			return Account{}, core.NewValidationError(ErrEmailExists,
				core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
	}

	acct := &Account{
		Username:  na.Username,
		Email:     na.Email,
		Role:      na.Role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	svc.accounts[acct.Username] = acct
	return *acct, nil
}

// Authenticate checks credentials and, on success against a legacy sha256
// hash, upgrades the stored hash to bcrypt in place.
func (svc *Service) Authenticate(username, password string) (Account, error) {
	username = core.CleanString(username, true /* lower */)

	if !svc.limiter(username).Allow() {
		return Account{}, ErrTooManyAttempts
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	acct := svc.lookup(username)
	if acct == nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acct.CheckPassword(password) {
		return Account{}, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return Account{}, ErrAccountDeactivated
	}

	if acct.HashScheme == SchemeSHA256 {
		if err := acct.SetPassword(password); err != nil {
			return Account{}, errors.Wrap(err, "upgrading password hash")
		}
	}
	acct.LastLogin = time.Now().UTC()
	return *acct, nil
}

// lookup finds by username or email; the caller must hold the lock.
func (svc *Service) lookup(username string) *Account {
	if acct, ok := svc.accounts[username]; ok {
		return acct
	}
	for _, acct := range svc.accounts {
		if acct.Email == username {
			return acct
		}
	}
	return nil
}

func (svc *Service) GetByUsername(username string) (Account, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	acct, ok := svc.accounts[core.CleanString(username, true /* lower */)]
	if !ok {
		return Account{}, ErrNotFound
	}
	return *acct, nil
}

func (svc *Service) QueryAll() []Account {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	all := make([]Account, 0, len(svc.accounts))
	for _, acct := range svc.accounts {
		all = append(all, *acct)
	}
	return all
}

// SetActive flips the account's active flag.
func (svc *Service) SetActive(username string, active bool) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	acct, ok := svc.accounts[core.CleanString(username, true /* lower */)]
	if !ok {
		return ErrNotFound
	}
	acct.IsActive = active
	return nil
}

// SetPassword force-sets an account password (admin CLI).
func (svc *Service) SetPassword(username, password string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	acct := svc.lookup(core.CleanString(username, true /* lower */))
	if acct == nil {
		return ErrNotFound
	}
	return acct.SetPassword(password)
}

// RequestPasswordReset mails a reset token to the account behind email.
// An unknown email is deliberately not an error: the endpoint must not leak
// which addresses exist.
func (svc *Service) RequestPasswordReset(email string) error {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	email = core.CleanString(email, true /* lower */)
	var acct *Account
	for _, a := range svc.accounts {
		if a.Email == email {
			acct = a
			break
		}
	}
	if acct == nil {
		svc.logger.Debug("password reset requested for unknown email", map[string]interface{}{"email": email})
		return nil
	}

	token := svc.MakeToken(*acct)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acct.Username, Address: acct.Email}},
		Subject: "Password reset",
		TextContent: "Hi " + acct.Username + ",\n\n" +
			"Use this token to reset your password: " + token + "\n\n" +
			"If you did not request a reset, ignore this message.",
	})
	return nil
}

// ConfirmPasswordReset verifies the token and sets the new password (bcrypt;
// a reset is also the upgrade path for a legacy demo account).
func (svc *Service) ConfirmPasswordReset(rp ResetPassword) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	acct, ok := svc.accounts[core.CleanString(rp.Username, true /* lower */)]
	if !ok {
		return ErrNotFound
	}
	if err := svc.VerifyToken(*acct, rp.Token); err != nil {
		return err
	}
	return acct.SetPassword(rp.Password)
}

func (svc *Service) limiter(username string) *rate.Limiter {
	svc.limMu.Lock()
	defer svc.limMu.Unlock()

	lim, ok := svc.limiters[username]
	if !ok {
		lim = rate.NewLimiter(rate.Every(loginInterval), loginBurst)
		svc.limiters[username] = lim
	}
	return lim
}
