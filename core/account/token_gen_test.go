package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeAndVerifyToken(t *testing.T) {
	svc, _ := newTestService()
	acct, err := svc.GetByUsername("user1")
	require.NoError(t, err)

	token := svc.MakeToken(acct)
	assert.NoError(t, svc.VerifyToken(acct, token))
}

func TestVerifyToken_Malformed(t *testing.T) {
	svc, _ := newTestService()
	acct, _ := svc.GetByUsername("user1")

	for _, token := range []string{"", "no-dash?", "garbage", "!!!-???"} {
		assert.Equal(t, ErrInvalidToken, svc.VerifyToken(acct, token), "token=%q", token)
	}
}

func TestVerifyToken_WrongAccount(t *testing.T) {
	svc, _ := newTestService()
	usr1, _ := svc.GetByUsername("user1")
	admin, _ := svc.GetByUsername("admin")

	token := svc.MakeToken(usr1)
	assert.Equal(t, ErrInvalidToken, svc.VerifyToken(admin, token))
}

func TestVerifyToken_Expired(t *testing.T) {
	svc, _ := newTestService()
	acct, _ := svc.GetByUsername("user1")

	origNow := NowFunc
	defer func() { NowFunc = origNow }()

	token := svc.MakeToken(acct)

	// just inside the 3-day timeout
	NowFunc = func() time.Time { return origNow().Add(3 * 24 * time.Hour) }
	assert.NoError(t, svc.VerifyToken(acct, token))

	// past it
	NowFunc = func() time.Time { return origNow().Add(4*24*time.Hour + time.Hour) }
	assert.Equal(t, ErrTokenExpired, svc.VerifyToken(acct, token))
}
