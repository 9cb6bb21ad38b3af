/*
Package auth manages OAuth credentials for the docmd CLI: a client
credentials file supplied by the user, and a cached token obtained
through the browser login flow and refreshed silently thereafter.
*/
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
)

// ErrNotAuthenticated means no cached token exists; the caller should
// prompt the user to run login.
var ErrNotAuthenticated = errors.New("not authenticated, run `docmd auth login` first")

// Credentials identifies the OAuth client application.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// Token is a cached OAuth grant.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the access token is still usable, with a small
// margin so a token does not expire mid-request.
func (t *Token) Valid() bool {
	return t.AccessToken != "" &&
		(t.Expiry.IsZero() || time.Until(t.Expiry) > 30*time.Second)
}

// Store reads and writes credential files under a single directory.
type Store struct {
	Dir string
}

// DefaultStore keeps credentials under the user's config directory.
func DefaultStore() (Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Store{}, fmt.Errorf("locating config directory: %w", err)
	}
	return Store{Dir: filepath.Join(base, "docmd")}, nil
}

func (s Store) tokenPath() string       { return filepath.Join(s.Dir, "token.json") }
func (s Store) credentialsPath() string { return filepath.Join(s.Dir, "credentials.json") }

// Credentials loads the OAuth client file, which the user must place in
// the store directory before first login.
func (s Store) Credentials() (Credentials, error) {
	var creds Credentials
	if err := s.readJSON(s.credentialsPath(), &creds); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return creds, fmt.Errorf("no client credentials at %s", s.credentialsPath())
		}
		return creds, err
	}
	if creds.AuthURI == "" {
		creds.AuthURI = "https://accounts.google.com/o/oauth2/auth"
	}
	if creds.TokenURI == "" {
		creds.TokenURI = "https://oauth2.googleapis.com/token"
	}
	return creds, nil
}

// Token loads the cached token, or ErrNotAuthenticated.
func (s Store) Token() (*Token, error) {
	var tok Token
	if err := s.readJSON(s.tokenPath(), &tok); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return &tok, nil
}

// SaveToken writes the token atomically so a crash mid-write never
// leaves a truncated credential file.
func (s Store) SaveToken(tok *Token) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.tokenPath(), append(data, '\n'), 0600)
}

// Clear removes the cached token; missing is not an error.
func (s Store) Clear() error {
	if err := os.Remove(s.tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s Store) readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
