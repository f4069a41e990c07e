// Package credstore is a runnable reference implementation of the credential
// store HTTP contract consumed by the session core: signup, login, profile
// fetch and partial profile update under /api/auth.
package credstore

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the store settings
type Config struct {
	Port                 string   `env:"PORT,                   default=5000"`
	JWTSecret            string   `env:"JWT_SECRET,             default=change-me-in-production"`
	JWTIssuer            string   `env:"JWT_ISSUER,             default=tiffin-credstore"`
	JWTAudience          []string `env:"JWT_AUDIENCE,           default=tiffin"`
	TokenExpirationHours int      `env:"TOKEN_EXPIRATION_HOURS, default=24"`
	DatabaseDSN          string   `env:"DATABASE_DSN,           default=credstore.db"`
	PhoneRegion          string   `env:"PHONE_REGION,           default=US"`
	UseHashid            bool     `env:"USE_HASHID,             default=false"`
	BcryptCost           int      `env:"BCRYPT_COST,            default=10"`
	Debug                bool     `env:"DEBUG,                  default=false"`
	LogLevel             string   `env:"LOG_LEVEL,              default=info"`
	LogPretty            bool     `env:"LOG_PRETTY,             default=false"`
}

// LoadConfig reads configuration from environment variables using go-envconfig.
func LoadConfig(ctx context.Context) (*Config, error) {
	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom reads configuration from lookuper
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load credential store configuration")
	}
	return &cfg, nil
}

func (c Config) GetSigningKey() []byte {
	return []byte(c.JWTSecret)
}

func (c Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c Config) GetAudience() []string {
	return c.JWTAudience
}

func (c Config) GetTokenExpiration() time.Duration {
	hours := c.TokenExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) GetAddr() string {
	return ":" + c.Port
}
