package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/grantlyhq/grantly/backend/internal/config"
)

// Claims is the verified identity attached to a request.
type Claims struct {
	Subject string
	Email   string
	Scopes  []string
}

// HasScope reports whether the token was granted the given scope.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenVerifier validates a raw bearer token and extracts its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// NewVerifier picks the verifier from config: when an issuer is configured,
// tokens are checked against the identity provider's published signing keys;
// otherwise they are verified locally with the shared HS256 secret.
func NewVerifier(ctx context.Context, cfg *config.AuthConfig) (TokenVerifier, error) {
	if cfg.Issuer != "" {
		return NewOIDCVerifier(ctx, cfg.Issuer, cfg.Audience)
	}
	return NewLocalVerifier(cfg.LocalSecret), nil
}

// OIDCVerifier verifies RS256 tokens against a remote OIDC issuer.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuerURL, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: audience,
	})

	return &OIDCVerifier{verifier: verifier}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Email string `json:"email"`
		Scope string `json:"scope"`
	}
	if err := token.Claims(&payload); err != nil {
		return nil, err
	}

	return &Claims{
		Subject: token.Subject,
		Email:   payload.Email,
		Scopes:  splitScopes(payload.Scope),
	}, nil
}

// localClaims is the HS256 token payload used in development and tests.
type localClaims struct {
	Email string `json:"email,omitempty"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// LocalVerifier verifies HS256 tokens signed with a shared secret.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

func (v *LocalVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(rawToken, &localClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*localClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Scopes:  splitScopes(claims.Scope),
	}, nil
}

// GenerateToken signs an HS256 token for local development and tests.
func (v *LocalVerifier) GenerateToken(subject, email string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := localClaims{
		Email: email,
		Scope: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func splitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Fields(scope)
}
