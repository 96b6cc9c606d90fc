// Package session owns the authenticated-session lifecycle. A Session
// is created on login and passed explicitly to everything that needs the
// current user or token; there is no module-level singleton.
package session

import (
	"context"
	"fmt"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/credential"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// Keys under which session state lives in the system keyring.
const (
	tokenKey  = "session-token"
	userIDKey = "session-user-id"
)

// Session is the authenticated user context.
type Session struct {
	User  model.User
	Token string
}

// Login authenticates against the backend, persists the token in the
// system keyring, and returns the new session.
func Login(ctx context.Context, client *api.Client, email, password string) (*Session, error) {
	token, user, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := credential.Set(tokenKey, token); err != nil {
		return nil, fmt.Errorf("storing session token: %w", err)
	}
	if err := credential.Set(userIDKey, user.ID); err != nil {
		return nil, fmt.Errorf("storing session user: %w", err)
	}

	return &Session{User: user, Token: token}, nil
}

// Resume restores a previous session from the keyring and validates the
// token against the backend. Returns nil (no error) when no stored
// session exists or the token has expired.
func Resume(ctx context.Context, client *api.Client) (*Session, error) {
	token, err := credential.Get(tokenKey)
	if err != nil || token == "" {
		return nil, nil
	}

	client.SetToken(token)
	user, err := client.FetchMe(ctx)
	if err != nil {
		if api.IsAuth(err) {
			// Stored token expired; clear it and fall through to login.
			_ = credential.Delete(tokenKey)
			_ = credential.Delete(userIDKey)
			return nil, nil
		}
		return nil, fmt.Errorf("validating stored session: %w", err)
	}

	return &Session{User: user, Token: token}, nil
}

// Logout discards the stored session.
func Logout() error {
	if err := credential.Delete(tokenKey); err != nil {
		return err
	}
	return credential.Delete(userIDKey)
}
