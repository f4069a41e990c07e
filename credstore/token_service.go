package credstore

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	session "github.com/goliatone/go-session"
)

// Claims are the bearer token claims
type Claims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid"`
	UserRole string `json:"role"`
}

// UserID returns the id of the token owner
func (c *Claims) UserID() string {
	return c.UID
}

// Role returns the role the token was issued for
func (c *Claims) Role() session.Role {
	return session.Role(c.UserRole)
}

// TokenConfig provides the token settings
type TokenConfig interface {
	GetSigningKey() []byte
	GetIssuer() string
	GetAudience() []string
	GetTokenExpiration() time.Duration
}

// TokenService issues and validates HS256 tokens
type TokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	now        func() time.Time
	logger     session.Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenConfig, logger session.Logger) *TokenService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &TokenService{
		signingKey: cfg.GetSigningKey(),
		expiration: cfg.GetTokenExpiration(),
		issuer:     cfg.GetIssuer(),
		audience:   jwt.ClaimStrings(cfg.GetAudience()),
		now:        time.Now,
		logger:     logger,
	}
}

// Generate creates a token for user
func (ts *TokenService) Generate(user session.User) (string, error) {
	now := ts.now()
	id := user.GetAccount().ID
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   id,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		UID:      id,
		UserRole: string(user.Role()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// Validate parses and validates a token string
func (ts *TokenService) Validate(tokenString string) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithTimeFunc(ts.now))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		e := ErrTokenMalformed.Clone()
		e.Source = err
		return nil, e
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
