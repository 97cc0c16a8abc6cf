package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`              // dev, staging, prod
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`       // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`      // json, text
	Port                int           `env:"PORT" envDefault:"8080"`            // HTTP server port
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite, postgres
	DatabaseFile   string `env:"DATABASE_FILE" envDefault:"oauth1d.db"`
	DatabaseURL    string `env:"DATABASE_URL"` // Required for postgres

	// Which permissions an access token carries: the client's declared set
	// ("client") or the user's grant ("granted").
	ScopeSource     string `env:"EXCHANGE_SCOPE_SOURCE" envDefault:"client"`
	RequireVerifier bool   `env:"EXCHANGE_REQUIRE_VERIFIER"`
	StrictCallbacks bool   `env:"AUTHORIZE_STRICT_CALLBACKS"`

	RequestTokenTTL      time.Duration `env:"REQUEST_TOKEN_TTL" envDefault:"24h"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	SessionAlgorithm string   `env:"SESSION_ALGORITHM" envDefault:"EdDSA"` // EdDSA, RS256
	SessionIssuer    string   `env:"SESSION_ISSUER" envDefault:"oauth1d"`
	SessionAudience  []string `env:"SESSION_AUDIENCE" envSeparator:","`

	// Exactly one key source is used, in this order.
	SessionSigningKey     string        `env:"SESSION_SIGNING_KEY"` // PEM
	SessionSigningKeyFile string        `env:"SESSION_SIGNING_KEY_FILE"`
	SessionKeyID          string        `env:"SESSION_KEY_ID" envDefault:"oauth1d-session"`
	SessionJWKSFile       string        `env:"SESSION_JWKS_FILE"`
	SessionJWKSURL        string        `env:"SESSION_JWKS_URL"`
	SessionJWKSRefresh    time.Duration `env:"SESSION_JWKS_REFRESH" envDefault:"10m"`

	// LoginURL receives browsers that arrive without a session.
	LoginURL string `env:"LOGIN_URL"`

	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not one of sqlite, postgres", c.DatabaseDriver))
	}

	if _, err := service.ParseScopeSource(c.ScopeSource); err != nil {
		errs = append(errs, fmt.Errorf("EXCHANGE_SCOPE_SOURCE %q is not one of client, granted", c.ScopeSource))
	}

	if c.SessionAlgorithm != jwtx.AlgorithmEdDSA && c.SessionAlgorithm != jwtx.AlgorithmRS256 {
		errs = append(errs, fmt.Errorf("SESSION_ALGORITHM %q is not one of EdDSA, RS256", c.SessionAlgorithm))
	}

	if c.RequestTokenTTL <= 0 {
		errs = append(errs, errors.New("REQUEST_TOKEN_TTL must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}

	if c.sessionKeySource() == keySourceEphemeral && !c.IsDev() {
		errs = append(errs, errors.New("one of SESSION_SIGNING_KEY, SESSION_SIGNING_KEY_FILE, SESSION_JWKS_FILE or SESSION_JWKS_URL is required outside dev"))
	}

	return errors.Join(errs...)
}

func (c Config) IsDev() bool { return c.Env == "dev" }

// ExchangeScopeSource returns the parsed EXCHANGE_SCOPE_SOURCE. Validate
// has already rejected unknown values.
func (c Config) ExchangeScopeSource() service.ScopeSource {
	s, _ := service.ParseScopeSource(c.ScopeSource)
	return s
}

func (c Config) sessionKeyOptions() jwtx.KeyManagerOptions {
	return jwtx.KeyManagerOptions{
		Algorithm: c.SessionAlgorithm,
		Issuer:    c.SessionIssuer,
		Audience:  c.SessionAudience,
	}
}
