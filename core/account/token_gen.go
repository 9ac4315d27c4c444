package account

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	salt    = []byte("darasa.core.account.token_gen")
	NowFunc = time.Now // mockable

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

	// errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// MakeToken generates a password reset token for acct. The signature covers
// the current password hash and last login, so a token dies as soon as it is
// used.
func (svc *Service) MakeToken(acct Account) string {
	return svc.makeTokenWithTimestamp(acct, numDaysSince2001(NowFunc()))
}

// VerifyToken checks that a password reset token for acct is genuine and
// still within the reset timeout.
func (svc *Service) VerifyToken(acct Account, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidToken
	}

	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that the token has not been tampered with
	expected := svc.makeTokenWithTimestamp(acct, ts)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 0 {
		return ErrInvalidToken
	}

	// check that the timestamp is within limit
	timeoutDays := int(svc.conf.Server.PasswordResetTimeoutDelta / (24 * time.Hour))
	if (numDaysSince2001(NowFunc()) - ts) > timeoutDays {
		return ErrTokenExpired
	}
	return nil
}

func (svc *Service) makeTokenWithTimestamp(acct Account, ts int) string {
	tsB32 := b32.EncodeToString([]byte(strconv.Itoa(ts)))
	return tsB32 + "-" + svc.sign(hashValue(acct, ts))
}

func (svc *Service) sign(value string) string {
	mac := hmac.New(sha256.New, append(salt, []byte(svc.conf.SecretKey)...))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func hashValue(acct Account, ts int) string {
	return fmt.Sprintf("%s|%s|%d|%d", acct.Username, acct.PasswordHash, acct.LastLogin.Unix(), ts)
}

func numDaysSince2001(t time.Time) int {
	return int(t.Sub(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)) / (24 * time.Hour))
}
