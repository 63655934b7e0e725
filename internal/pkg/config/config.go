package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Client holds the configuration of the rfqcli binary.
type Client struct {
	// APIBaseURL is the marketplace API the client talks to.
	APIBaseURL string `env:"RFQ_API_URL,        default=http://localhost:8080"`
	// StorePath is the sqlite file mirroring the session across runs.
	StorePath string `env:"RFQ_STORE_PATH,     default=rfq-session.db"`
	// RefreshInterval is the silent token refresh cadence.
	RefreshInterval time.Duration `env:"RFQ_REFRESH_INTERVAL, default=50m"`
	LogLevel        string        `env:"LOG_LEVEL,  default=info"`
	LogPretty       bool          `env:"LOG_PRETTY, default=true"`
}

// Stub holds the configuration of the marketstub binary.
type Stub struct {
	Port      string        `env:"PORT,       default=8080"`
	JWTSecret string        `env:"JWT_SECRET, default=marketstub-dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=1h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	LogPretty bool          `env:"LOG_PRETTY, default=true"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient(ctx context.Context) (*Client, error) {
	var cfg Client
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	return &cfg, nil
}

// LoadStub reads the stub configuration from the environment.
func LoadStub(ctx context.Context) (*Stub, error) {
	var cfg Stub
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load stub config: %w", err)
	}
	return &cfg, nil
}
