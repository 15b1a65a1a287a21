package auth

import (
	"context"
	"errors"
	"time"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/globals"
	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru"
)

// ErrInvalidToken is returned when a bearer credential cannot be resolved to
// a user id by any configured method.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator resolves bearer tokens to stable user ids. The built-in
// HS256 tokens are checked first, then any configured OIDC providers.
// Successful verifications are cached so that the per-message websocket path
// and the REST middleware do not re-verify the same credential.
type Authenticator struct {
	cfg   *config.Config
	cache *lru.Cache
}

func NewAuthenticator(cfg *config.Config) (*Authenticator, error) {
	if cfg.AuthConfig.JWTSecret == "" && len(cfg.AuthConfig.OIDCConfigs) == 0 {
		return nil, errors.New("no auth method configured: set auth.jwt_secret or an oidc provider")
	}
	size := cfg.AuthConfig.TokenCacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Authenticator{cfg: cfg, cache: cache}, nil
}

// Verify returns the user id encoded in token, or ErrInvalidToken.
func (a *Authenticator) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	if userId, ok := a.cache.Get(token); ok {
		return userId.(string), nil
	}
	if a.cfg.AuthConfig.JWTSecret != "" {
		if userId, err := a.verifyJWT(token); err == nil {
			a.cache.Add(token, userId)
			return userId, nil
		}
	}
	for i := range a.cfg.AuthConfig.OIDCConfigs {
		userId, err := verifyOIDC(ctx, token, &a.cfg.AuthConfig.OIDCConfigs[i])
		if err != nil {
			globals.AppLogger.Debug("oidc verification failed", "provider", a.cfg.AuthConfig.OIDCConfigs[i].Name, "error", err)
			continue
		}
		if userId != "" {
			a.cache.Add(token, userId)
			return userId, nil
		}
	}
	return "", ErrInvalidToken
}

func (a *Authenticator) verifyJWT(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(a.cfg.AuthConfig.JWTSecret), nil
	})
	if err != nil || !parsed.Valid || claims.UserId == "" {
		return "", ErrInvalidToken
	}
	return claims.UserId, nil
}

// GenerateToken mints an HS256 token for userId, used by the admin CLI and
// in tests.
func (a *Authenticator) GenerateToken(userId string, validity time.Duration) (string, error) {
	if a.cfg.AuthConfig.JWTSecret == "" {
		return "", errors.New("auth.jwt_secret is not set")
	}
	claims := Claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.AuthConfig.JWTSecret))
}
