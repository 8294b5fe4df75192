package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/errors"
)

func TestIssueAndParseUserToken(t *testing.T) {
	token, expiresAt, err := IssueUserToken("user@test.com", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	email, err := ParseUserToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "user@test.com", email)
}

func TestParseUserToken_WrongSecret(t *testing.T) {
	token, _, err := IssueUserToken("user@test.com", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseUserToken(token, "other-secret")
	require.Error(t, err)

	base, convErr := errors.ConvertToErrorBase(err)
	require.NoError(t, convErr)
	require.Equal(t, errors.ErrJWTVerification, base.Code)
}

func TestParseUserToken_Expired(t *testing.T) {
	token, _, err := IssueUserToken("user@test.com", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseUserToken(token, "secret")
	require.Error(t, err)

	base, convErr := errors.ConvertToErrorBase(err)
	require.NoError(t, convErr)
	require.Equal(t, errors.ErrExpiredToken, base.Code)
}

func TestParseUserToken_Garbage(t *testing.T) {
	_, err := ParseUserToken("not.a.token", "secret")
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, 32) // 16바이트 hex

	// 같은 입력이면 항상 같은 해시
	require.Equal(t, HashPassword("pw1234", salt), HashPassword("pw1234", salt))
	require.NotEqual(t, HashPassword("pw1234", salt), HashPassword("pw1235", salt))

	otherSalt, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, salt, otherSalt)
	require.NotEqual(t, HashPassword("pw1234", salt), HashPassword("pw1234", otherSalt))
}
