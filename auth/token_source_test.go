package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestManager_TokenSource(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.TokenSource().Token()
		require.ErrorIs(t, err, auth.ErrNoSession)
	})

	t.Run("opaque token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.withSession(t, teacherSession())

		tok, err := f.manager.TokenSource().Token()
		require.NoError(t, err)
		require.Equal(t, "A1", tok.AccessToken)
		require.Equal(t, "R1", tok.RefreshToken)
		require.Equal(t, "Bearer", tok.TokenType)
		require.True(t, tok.Expiry.IsZero())
	})

	t.Run("jwt expiry", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
			"exp": exp.Unix(),
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		f := setupTestFixture(t)
		s := teacherSession()
		s.AccessToken = signed
		f.withSession(t, s)

		tok, err := f.manager.TokenSource().Token()
		require.NoError(t, err)
		require.True(t, exp.Equal(tok.Expiry))
		require.True(t, tok.Valid())
	})

	t.Run("oauth2 client sends the bearer", func(t *testing.T) {
		f := setupTestFixture(t)
		f.withSession(t, teacherSession())

		client := oauth2.NewClient(context.Background(), f.manager.TokenSource())
		resp, err := client.Get(f.manager.URL("/api/groups/my-groups/"))
		require.NoError(t, err)
		resp.Body.Close()

		reqs := f.backend.byPath("/api/groups/my-groups/")
		require.Len(t, reqs, 1)
		require.Equal(t, "Bearer A1", reqs[0].Authorization)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
