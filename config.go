package session

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sethvargo/go-envconfig"
)

// ClientConfig is the environment backed Config for the session core
type ClientConfig struct {
	BaseURL   string        `env:"AUTH_API_URL,       default=http://localhost:5000/api"`
	Timeout   time.Duration `env:"AUTH_API_TIMEOUT,   default=10s"`
	TokenKey  string        `env:"AUTH_TOKEN_KEY,     default=token"`
	TokenFile string        `env:"AUTH_TOKEN_FILE"`
	RedisAddr string        `env:"AUTH_REDIS_ADDR"`

	KitchenRoute string `env:"AUTH_ROUTE_KITCHEN, default=/chef"`
	HomeRoute    string `env:"AUTH_ROUTE_HOME,    default=/"`
	LoginRoute   string `env:"AUTH_ROUTE_LOGIN,   default=/login"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

// LoadClientConfig reads configuration from environment variables using go-envconfig.
func LoadClientConfig(ctx context.Context) (*ClientConfig, error) {
	return LoadClientConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadClientConfigFrom reads configuration from the given lookuper,
// tests use envconfig.MapLookuper.
func LoadClientConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to load session configuration")
	}
	return &cfg, nil
}

func (c ClientConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c ClientConfig) GetTimeout() time.Duration {
	return c.Timeout
}

func (c ClientConfig) GetTokenKey() string {
	return c.TokenKey
}

func (c ClientConfig) GetRoutes() Routes {
	return Routes{
		Kitchen: c.KitchenRoute,
		Home:    c.HomeRoute,
		Login:   c.LoginRoute,
	}
}
