package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/metrics"
)

// OIDCConfig holds the sign-in provider configuration. An empty IssuerURL
// disables provider sign-in and the login page falls back to a local
// profile form.
type OIDCConfig struct {
	IssuerURL    string // e.g. https://accounts.google.com
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Enabled reports whether provider sign-in is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// oidcClient discovers the provider lazily so a flow that never reaches
// the sign-in button does not need network access.
type oidcClient struct {
	cfg OIDCConfig

	mu       sync.Mutex
	provider *oidc.Provider
}

func newOIDCClient(cfg OIDCConfig) *oidcClient {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}
	return &oidcClient{cfg: cfg}
}

func (c *oidcClient) discover(ctx context.Context) (*oidc.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return c.provider, nil
	}
	p, err := oidc.NewProvider(ctx, c.cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider init: %w", err)
	}
	c.provider = p
	return p, nil
}

func (c *oidcClient) oauthConfig(p *oidc.Provider, baseURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     p.Endpoint(),
		RedirectURL:  baseURL + "/oauth/callback",
		Scopes:       c.cfg.Scopes,
	}
}

// profileClaims are the standard userinfo claims mapped onto a User.
type profileClaims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (s *Server) handleOAuthStart(f *flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.oidc.discover(r.Context())
		if err != nil {
			s.logger.Error("oidc discovery failed", "error", err)
			http.Error(w, "Sign-in provider unavailable", http.StatusBadGateway)
			return
		}

		f.mu.Lock()
		f.state = oauth2.GenerateVerifier()
		f.verifier = oauth2.GenerateVerifier()
		state, verifier := f.state, f.verifier
		f.mu.Unlock()

		target := s.oidc.oauthConfig(p, f.baseURL).AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// handleOAuthCallback exchanges the code, reads the profile from the userinfo
// endpoint and hands it to /authenticated like the local form does. The ID
// token is not verified.
func (s *Server) handleOAuthCallback(f *flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		state, verifier := f.state, f.verifier
		f.mu.Unlock()

		q := r.URL.Query()
		if state == "" || q.Get("state") != state {
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			s.failOAuth(w, f, http.StatusBadRequest, fmt.Errorf("provider returned %s", errCode))
			return
		}

		p, err := s.oidc.discover(r.Context())
		if err != nil {
			s.failOAuth(w, f, http.StatusBadGateway, err)
			return
		}
		cfg := s.oidc.oauthConfig(p, f.baseURL)
		token, err := cfg.Exchange(r.Context(), q.Get("code"), oauth2.VerifierOption(verifier))
		if err != nil {
			s.failOAuth(w, f, http.StatusBadGateway, fmt.Errorf("code exchange: %w", err))
			return
		}

		info, err := p.UserInfo(r.Context(), oauth2.StaticTokenSource(token))
		if err != nil {
			s.failOAuth(w, f, http.StatusBadGateway, fmt.Errorf("userinfo: %w", err))
			return
		}
		var claims profileClaims
		if err := info.Claims(&claims); err != nil {
			s.failOAuth(w, f, http.StatusBadGateway, fmt.Errorf("parse userinfo: %w", err))
			return
		}

		encoded, err := user.Encode(user.User{
			UID:         claims.Subject,
			DisplayName: claims.Name,
			Email:       claims.Email,
			PhotoURL:    claims.Picture,
		})
		if err != nil {
			s.failOAuth(w, f, http.StatusInternalServerError, err)
			return
		}
		http.Redirect(w, r, "/authenticated?user="+encoded, http.StatusFound)
	}
}

func (s *Server) failOAuth(w http.ResponseWriter, f *flow, status int, err error) {
	http.Error(w, "Authentication failed", status)
	if f.claim() {
		metrics.RecordAuthFlow("provider_error")
		f.finish(outcome{err: err})
	}
}
