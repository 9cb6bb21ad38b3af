package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Scopes requested at login: full document editing plus file metadata
// for listing and trashing.
var Scopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

// Source yields bearer tokens for API calls, refreshing the cached
// token through the store when it expires.
type Source struct {
	Store  Store
	Client *http.Client

	mu  sync.Mutex
	tok *Token
}

func NewSource(store Store) *Source {
	return &Source{Store: store, Client: http.DefaultClient}
}

// Token returns a valid access token, loading and refreshing as needed.
func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok == nil {
		tok, err := s.Store.Token()
		if err != nil {
			return "", err
		}
		s.tok = tok
	}
	if s.tok.Valid() {
		return s.tok.AccessToken, nil
	}
	if s.tok.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}

	creds, err := s.Store.Credentials()
	if err != nil {
		return "", err
	}
	tok, err := refresh(ctx, s.Client, creds, s.tok.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	if err := s.Store.SaveToken(tok); err != nil {
		return "", err
	}
	s.tok = tok
	return tok.AccessToken, nil
}

func refresh(ctx context.Context, client *http.Client, creds Credentials, refreshToken string) (*Token, error) {
	tok, err := tokenRequest(ctx, client, creds.TokenURI, url.Values{
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		// The server only returns a refresh token on first grant.
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

func tokenRequest(ctx context.Context, client *http.Client, tokenURI string, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var wire struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	tok := &Token{
		AccessToken:  wire.AccessToken,
		RefreshToken: wire.RefreshToken,
		TokenType:    wire.TokenType,
	}
	if wire.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(wire.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// Login runs the installed-app authorization flow: it starts a loopback
// listener, hands the user an authorization URL via prompt, and trades
// the redirected code for a token, which it caches in the store.
//
// prompt receives the URL the user must open in a browser; Login blocks
// until the redirect arrives or ctx is done.
func Login(ctx context.Context, store Store, prompt func(authURL string)) error {
	creds, err := store.Credentials()
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting loopback listener: %w", err)
	}
	defer lis.Close()
	redirect := fmt.Sprintf("http://%s/", lis.Addr())

	state, err := randomState()
	if err != nil {
		return err
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("authorization redirect state mismatch")}
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))}
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("authorization redirect missing code")}
		default:
			io.WriteString(w, "Authorized. You can close this tab and return to the terminal.\n")
			results <- result{code: q.Get("code")}
		}
	})}
	go srv.Serve(lis)
	defer srv.Close()

	authURL := creds.AuthURI + "?" + url.Values{
		"client_id":     {creds.ClientID},
		"redirect_uri":  {redirect},
		"response_type": {"code"},
		"scope":         {strings.Join(Scopes, " ")},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}.Encode()
	prompt(authURL)

	var code string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		code = res.code
	}

	tok, err := tokenRequest(ctx, http.DefaultClient, creds.TokenURI, url.Values{
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirect},
	})
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	return store.SaveToken(tok)
}

func randomState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
