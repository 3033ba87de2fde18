package sessions_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-school-portal/sessions"
	"github.com/jrsteele09/go-school-portal/users"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("1234"))
	require.NoError(t, err)
	return raw
}

func TestSession_Active(t *testing.T) {
	require.False(t, sessions.Session{}.Active())
	require.False(t, sessions.Session{RefreshToken: "R1", Role: users.RoleStudent}.Active())
	require.True(t, sessions.Session{AccessToken: "A1"}.Active())
}

func TestSession_Identity(t *testing.T) {
	s := sessions.Session{AccessToken: "A1", Role: users.RoleTeacher, Name: "Aziz", UserID: "7"}
	require.Equal(t, users.Identity{UserID: "7", Name: "Aziz", Role: users.RoleTeacher}, s.Identity())
}

func TestSession_AccessTokenExpiry(t *testing.T) {
	t.Run("jwt access token", func(t *testing.T) {
		exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		s := sessions.Session{AccessToken: signedToken(t, exp)}

		got, ok := s.AccessTokenExpiry()
		require.True(t, ok)
		require.True(t, exp.Equal(got))
	})

	t.Run("expired jwt still reports its expiry", func(t *testing.T) {
		exp := time.Now().Add(-time.Hour).Truncate(time.Second)
		got, ok := sessions.TokenExpiry(signedToken(t, exp))
		require.True(t, ok)
		require.True(t, exp.Equal(got))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := sessions.Session{AccessToken: "A1"}.AccessTokenExpiry()
		require.False(t, ok)
	})

	t.Run("no token", func(t *testing.T) {
		_, ok := sessions.Session{}.AccessTokenExpiry()
		require.False(t, ok)
	})
}
