package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// OAuthIdentity is the subset of provider claims used to find or create a user.
type OAuthIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// OAuthProvider performs the OIDC authorization code flow.
type OAuthProvider interface {
	AuthURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*OAuthIdentity, error)
}

// OIDCConfig configures the relying party.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	HTTPClient   *http.Client
}

// OIDCProvider implements OAuthProvider on a discovered OIDC relying party.
type OIDCProvider struct {
	rp rp.RelyingParty
}

var _ OAuthProvider = (*OIDCProvider)(nil)

// NewOIDCProvider runs discovery against the issuer and returns a provider.
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		cfg.Scopes,
		rp.WithHTTPClient(cfg.HTTPClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}
	return &OIDCProvider{rp: relyingParty}, nil
}

// AuthURL builds the provider redirect carrying state and the PKCE challenge.
func (p *OIDCProvider) AuthURL(state, codeChallenge string) string {
	return rp.AuthURL(state, p.rp, rp.WithCodeChallenge(codeChallenge))
}

// Exchange trades the authorization code for verified ID token claims.
func (p *OIDCProvider) Exchange(ctx context.Context, code, codeVerifier string) (*OAuthIdentity, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, p.rp, rp.WithCodeVerifier(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	if tokens.IDTokenClaims == nil {
		return nil, fmt.Errorf("code exchange: no id token claims")
	}

	claims := tokens.IDTokenClaims
	return &OAuthIdentity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// NewPKCE returns a random code verifier and its S256 challenge.
func NewPKCE() (verifier, challenge string, err error) {
	verifier, err = randomToken(32)
	if err != nil {
		return "", "", err
	}
	return verifier, oidc.NewSHACodeChallenge(verifier), nil
}

// NewState returns an unguessable OAuth state value.
func NewState() (string, error) {
	return randomToken(24)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
