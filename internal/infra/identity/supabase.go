package identity

import (
	"errors"

	"github.com/supabase-community/auth-go"

	"github.com/hossamdev/portfolio-api/internal/config"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Email        string `json:"email"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider is the identity-provider surface the rest of the server sees.
// Authentication is fully delegated; no credentials are stored locally.
type Provider interface {
	SignIn(email, password string) (*Session, error)
	Verify(accessToken string) (*User, error)
	SignOut(accessToken string) error
}

type supabaseProvider struct {
	client auth.Client
}

func NewSupabase(cfg *config.Config) Provider {
	c := auth.New(cfg.Auth.ProjectReference, cfg.Auth.APIKey)
	if cfg.Auth.BaseURL != "" {
		c = c.WithCustomAuthURL(cfg.Auth.BaseURL)
	}
	return &supabaseProvider{client: c}
}

func (p *supabaseProvider) SignIn(email, password string) (*Session, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		Email:        resp.User.Email,
	}, nil
}

func (p *supabaseProvider) Verify(accessToken string) (*User, error) {
	resp, err := p.client.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, err
	}
	return &User{ID: resp.ID.String(), Email: resp.Email}, nil
}

func (p *supabaseProvider) SignOut(accessToken string) error {
	return p.client.WithToken(accessToken).Logout()
}
