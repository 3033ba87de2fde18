package auth

import (
	"golang.org/x/oauth2"
)

// TokenSource exposes the stored access token as an oauth2.TokenSource. Do
// authorizes every attempt with the token it serves, and it can back an
// oauth2.NewClient for callers that want plain bearer requests. The source
// never refreshes on its own: refresh happens through Do on a 401.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return managerTokenSource{m: m}
}

type managerTokenSource struct {
	m *Manager
}

func (ts managerTokenSource) Token() (*oauth2.Token, error) {
	session, ok := ts.m.current()
	if !ok {
		return nil, ErrNoSession
	}

	token := &oauth2.Token{
		AccessToken:  session.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: session.RefreshToken,
	}
	if exp, ok := session.AccessTokenExpiry(); ok {
		token.Expiry = exp
	}
	return token, nil
}
