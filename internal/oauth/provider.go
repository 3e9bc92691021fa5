package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/Aphidet6/earth-bettashop/internal/config"
)

// Profile is the subset of a provider account used to resolve a local user.
type Profile struct {
	// ID is the provider's stable account identifier.
	ID string
	// Email may be empty when the provider account has no visible email.
	Email string
	// Name is the provider's display name for the account.
	Name string
}

// Provider wraps one OAuth provider's authorization-code flow and profile
// endpoint.
type Provider struct {
	name       string
	config     *oauth2.Config
	httpClient *http.Client
	profileURL string
	emailsURL  string
}

// NewProvider builds a provider from configured credentials. Supported names
// are "google" and "github".
func NewProvider(creds config.ProviderCredentials) (*Provider, error) {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.CallbackURL,
	}

	p := &Provider{
		name:       creds.Name,
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	switch creds.Name {
	case "google":
		cfg.Endpoint = endpoints.Google
		cfg.Scopes = []string{"openid", "profile", "email"}
		p.profileURL = googleUserInfoURL
	case "github":
		cfg.Endpoint = endpoints.GitHub
		cfg.Scopes = []string{"read:user", "user:email"}
		p.profileURL = githubUserURL
		p.emailsURL = githubEmailsURL
	default:
		return nil, fmt.Errorf("unsupported oauth provider: %q", creds.Name)
	}

	return p, nil
}

// Name reports the provider's registered name.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the provider's consent page URL carrying the given state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the provider account's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange %s authorization code: %w", p.name, err)
	}

	client := p.config.Client(ctx, token)
	switch p.name {
	case "google":
		return fetchGoogleProfile(ctx, client, p.profileURL)
	case "github":
		return fetchGithubProfile(ctx, client, p.profileURL, p.emailsURL)
	}
	return nil, fmt.Errorf("unsupported oauth provider: %q", p.name)
}

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

func fetchGoogleProfile(ctx context.Context, client *http.Client, url string) (*Profile, error) {
	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch google profile: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("google profile missing account id")
	}

	return &Profile{ID: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func fetchGithubProfile(ctx context.Context, client *http.Client, profileURL, emailsURL string) (*Profile, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, profileURL, &payload); err != nil {
		return nil, fmt.Errorf("fetch github profile: %w", err)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("github profile missing account id")
	}

	name := payload.Name
	if name == "" {
		name = payload.Login
	}

	// The public profile email is often hidden; fall back to the primary
	// verified address from the emails endpoint.
	email := payload.Email
	if email == "" {
		email = fetchGithubPrimaryEmail(ctx, client, emailsURL)
	}

	return &Profile{ID: fmt.Sprintf("%d", payload.ID), Email: email, Name: name}, nil
}

func fetchGithubPrimaryEmail(ctx context.Context, client *http.Client, url string) string {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, url, &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
