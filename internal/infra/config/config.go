package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends understood by the wiring layer.
const (
	CacheBackendValkey = "valkey"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	FAQ         FAQConfig         `yaml:"faq"`
	Cache       CacheConfig       `yaml:"cache"`
	Translation TranslationConfig `yaml:"translation"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Export      ExportConfig      `yaml:"export"`
	Auth        AuthConfig        `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// FAQConfig controls languages and list behavior.
type FAQConfig struct {
	PrimaryLanguage string   `yaml:"primaryLanguage"`
	Languages       []string `yaml:"languages"`
	ListActiveOnly  bool     `yaml:"listActiveOnly"`
}

// CacheConfig selects and tunes the shared cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
	Timeout time.Duration `yaml:"timeout"`
}

// TranslationConfig contains machine translation provider settings.
type TranslationConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	Temperature    float32       `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
	MaxRetries     int           `yaml:"maxRetries"`
	RetryBaseDelay time.Duration `yaml:"retryBaseDelay"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// ExportConfig controls translation catalog exports.
type ExportConfig struct {
	Prefix string            `yaml:"prefix"`
	S3     ObjectStoreConfig `yaml:"s3"`
}

// ObjectStoreConfig locates an S3-compatible bucket.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Enabled reports whether enough settings are present to reach a bucket.
func (c ObjectStoreConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// AuthConfig configures editor authentication.
type AuthConfig struct {
	Secret          string         `yaml:"secret"`
	Issuer          string         `yaml:"issuer"`
	TokenTTL        time.Duration  `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration  `yaml:"refreshTokenTtl"`
	Editors         []EditorConfig `yaml:"editors"`
}

// EditorConfig is one account allowed to write FAQ content.
type EditorConfig struct {
	Username     string `yaml:"username"`
	DisplayName  string `yaml:"displayName"`
	PasswordHash string `yaml:"passwordHash"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	envDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	if v := os.Getenv("FAQ_PRIMARY_LANGUAGE"); v != "" {
		cfg.FAQ.PrimaryLanguage = v
	}
	if v := os.Getenv("FAQ_LANGUAGES"); v != "" {
		cfg.FAQ.Languages = splitList(v)
	}
	envBool("FAQ_LIST_ACTIVE_ONLY", &cfg.FAQ.ListActiveOnly)

	if v := os.Getenv("FAQ_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FAQ_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("FAQ_CACHE_PREFIX"); v != "" {
		cfg.Cache.Prefix = v
	}
	envDuration("FAQ_CACHE_TTL", &cfg.Cache.TTL)
	envDuration("FAQ_CACHE_TIMEOUT", &cfg.Cache.Timeout)

	if v := os.Getenv("TRANSLATION_API_KEY"); v != "" {
		cfg.Translation.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Translation.APIKey == "" {
		cfg.Translation.APIKey = v
	}
	if v := os.Getenv("TRANSLATION_BASE_URL"); v != "" {
		cfg.Translation.BaseURL = v
	}
	if v := os.Getenv("TRANSLATION_MODEL"); v != "" {
		cfg.Translation.Model = v
	}
	if v := os.Getenv("TRANSLATION_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Translation.Temperature = float32(parsed)
		}
	}
	envDuration("TRANSLATION_TIMEOUT", &cfg.Translation.Timeout)
	envInt("TRANSLATION_MAX_RETRIES", &cfg.Translation.MaxRetries)

	if v := os.Getenv("FAQ_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("FAQ_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAQ_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	envBool("FAQ_POSTGRES_AUTO_MIGRATE", &cfg.Postgres.AutoMigrate)

	if v := os.Getenv("EXPORT_S3_ENDPOINT"); v != "" {
		cfg.Export.S3.Endpoint = v
	}
	if v := os.Getenv("EXPORT_S3_ACCESS_KEY"); v != "" {
		cfg.Export.S3.AccessKey = v
	}
	if v := os.Getenv("EXPORT_S3_SECRET_KEY"); v != "" {
		cfg.Export.S3.SecretKey = v
	}
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		cfg.Export.S3.Bucket = v
	}
	if v := os.Getenv("EXPORT_S3_REGION"); v != "" {
		cfg.Export.S3.Region = v
	}

	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	envDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	if v := os.Getenv("AUTH_EDITORS"); v != "" {
		cfg.Auth.Editors = parseEditors(v)
	}
}

// parseEditors reads "username:bcrypt-hash" pairs separated by commas.
func parseEditors(raw string) []EditorConfig {
	var editors []EditorConfig
	for _, entry := range splitList(raw) {
		username, hash, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(username) == "" || strings.TrimSpace(hash) == "" {
			continue
		}
		editors = append(editors, EditorConfig{Username: strings.TrimSpace(username), PasswordHash: strings.TrimSpace(hash)})
	}
	return editors
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             40,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/metrics",
					"/healthz",
				},
			},
		},
		FAQ: FAQConfig{
			PrimaryLanguage: "en",
			ListActiveOnly:  false,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			Prefix:  "faq",
			TTL:     time.Hour,
			Timeout: 250 * time.Millisecond,
		},
		Translation: TranslationConfig{
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			Timeout:        10 * time.Second,
			AttemptTimeout: 4 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: 200 * time.Millisecond,
		},
		Postgres: PostgresConfig{
			MaxConns:    4,
			AutoMigrate: true,
		},
		Export: ExportConfig{
			Prefix: "exports",
		},
		Auth: AuthConfig{
			Issuer:          "polyglot-faq",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.FAQ.PrimaryLanguage) == "" {
		return errors.New("faq.primaryLanguage cannot be empty")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendValkey, CacheBackendRedis:
		if strings.TrimSpace(c.Cache.Addr) == "" {
			return fmt.Errorf("cache.addr cannot be empty when cache.backend is %s", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if strings.TrimSpace(c.Cache.Prefix) == "" {
		return errors.New("cache.prefix cannot be empty")
	}
	if c.Cache.TTL < time.Second {
		return errors.New("cache.ttl must be at least 1s")
	}
	if c.Cache.Timeout <= 0 {
		return errors.New("cache.timeout must be positive")
	}
	if c.Translation.Timeout <= 0 {
		return errors.New("translation.timeout must be positive")
	}
	if c.Translation.MaxRetries < 0 {
		return errors.New("translation.maxRetries cannot be negative")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	for i, editor := range c.Auth.Editors {
		if strings.TrimSpace(editor.Username) == "" || strings.TrimSpace(editor.PasswordHash) == "" {
			return fmt.Errorf("auth.editors[%d] needs username and passwordHash", i)
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
