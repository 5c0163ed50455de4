package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

// Identity providers.
const (
	IdentityLocal    = "local"
	IdentitySupabase = "supabase"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// CORSOrigins is a comma-separated allow list; empty allows any origin.
	CORSOrigins []string `env:"CORS_ORIGINS"`

	StoreBackend string `env:"STORE_BACKEND, default=redis"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Admin    AdminConfig
	Jobs     JobsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type IdentityConfig struct {
	Provider string `env:"IDENTITY_PROVIDER, default=local"`
	// JWTSecret signs tokens issued by the local provider.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	// SupabaseJWTSecret enables local token verification; without it every
	// token is checked against the auth API.
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`
}

type AdminConfig struct {
	// BootstrapToken mounts POST /admin/make-admin when set.
	BootstrapToken string `env:"ADMIN_BOOTSTRAP_TOKEN"`
}

type JobsConfig struct {
	ReconcileSchedule string `env:"RECONCILE_SCHEDULE, default=@every 5m"`
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set in the environment win
// over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.Identity.Provider = strings.ToLower(strings.TrimSpace(c.Identity.Provider))

	switch c.StoreBackend {
	case StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreRedis, StoreMongo, c.StoreBackend)
	}

	switch c.Identity.Provider {
	case IdentityLocal:
		if c.Identity.JWTSecret == "" {
			return errors.New("JWT_SECRET is required for the local identity provider")
		}
	case IdentitySupabase:
		if c.Identity.SupabaseURL == "" || c.Identity.SupabaseAnonKey == "" || c.Identity.SupabaseServiceRoleKey == "" {
			return errors.New("SUPABASE_URL, SUPABASE_ANON_KEY and SUPABASE_SERVICE_ROLE_KEY are required for the supabase identity provider")
		}
	default:
		return fmt.Errorf("IDENTITY_PROVIDER must be %q or %q, got %q", IdentityLocal, IdentitySupabase, c.Identity.Provider)
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
