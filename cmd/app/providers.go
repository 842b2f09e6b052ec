package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/polyglot-faq/internal/domain/auth"
	"github.com/yanqian/polyglot-faq/internal/domain/faq"
	"github.com/yanqian/polyglot-faq/internal/infra/config"
	"github.com/yanqian/polyglot-faq/internal/infra/faqcache"
	"github.com/yanqian/polyglot-faq/internal/infra/faqrepo"
	"github.com/yanqian/polyglot-faq/internal/infra/objectstore"
	"github.com/yanqian/polyglot-faq/internal/infra/translate"
)

const startupProbeTimeout = 5 * time.Second

func provideLanguages(cfg *config.Config) (*faq.Languages, error) {
	return faq.NewLanguages(cfg.FAQ.PrimaryLanguage, cfg.FAQ.Languages)
}

func provideFAQConfig(cfg *config.Config, languages *faq.Languages) faq.Config {
	return faq.Config{
		PrimaryLanguage:    languages.Primary().Code,
		CachePrefix:        cfg.Cache.Prefix,
		CacheTTL:           cfg.Cache.TTL,
		CacheTimeout:       cfg.Cache.Timeout,
		TranslationTimeout: cfg.Translation.Timeout,
		ListActiveOnly:     cfg.FAQ.ListActiveOnly,
		ExportPrefix:       cfg.Export.Prefix,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	editors := make([]auth.Editor, 0, len(cfg.Auth.Editors))
	for _, editor := range cfg.Auth.Editors {
		editors = append(editors, auth.Editor{
			Username:     editor.Username,
			DisplayName:  editor.DisplayName,
			PasswordHash: editor.PasswordHash,
		})
	}
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		Issuer:          cfg.Auth.Issuer,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Editors:         editors,
	}
}

func provideFAQRepository(cfg *config.Config, languages *faq.Languages, logger *slog.Logger) (faq.Repository, func()) {
	primary := languages.Primary().Code
	fallback := faqrepo.NewMemoryRepository(primary)
	noop := func() {}

	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("faq postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupProbeTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := faqrepo.NewPostgresRepository(pool, primary)
	if cfg.Postgres.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("faq schema migration failed, using memory repository", "error", err)
			pool.Close()
			return fallback, noop
		}
	}
	logger.Info("faq postgres repository enabled")
	return repo, pool.Close
}

func provideFAQCache(cfg *config.Config, logger *slog.Logger) (faq.Cache, func()) {
	noop := func() {}
	switch cfg.Cache.Backend {
	case config.CacheBackendValkey:
		opt, err := buildValkeyOptions(cfg.Cache.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			break
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), startupProbeTimeout)
		defer cancel()
		// Unreachable at boot is tolerated: reads fall through to the store.
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Warn("valkey ping failed at startup", "addr", cfg.Cache.Addr, "error", err)
		}
		logger.Info("faq valkey cache enabled", "addr", cfg.Cache.Addr)
		return faqcache.NewValkeyCache(client), client.Close
	case config.CacheBackendRedis:
		client, err := buildRedisClient(cfg.Cache.Addr)
		if err != nil {
			logger.Error("invalid redis configuration, falling back to memory cache", "error", err)
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), startupProbeTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed at startup", "addr", cfg.Cache.Addr, "error", err)
		}
		logger.Info("faq redis cache enabled", "addr", cfg.Cache.Addr)
		cache := faqcache.NewRedisCache(client)
		return cache, func() {
			if err := cache.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		}
	}
	logger.Info("using in-process memory cache")
	return faqcache.NewMemoryCache(), noop
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func buildRedisClient(addr string) (redis.UniversalClient, error) {
	if strings.Contains(addr, "://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}}), nil
}

func provideTranslator(cfg *config.Config, languages *faq.Languages, logger *slog.Logger) faq.Translator {
	var backend translate.Backend = translate.DisabledBackend{}
	if strings.TrimSpace(cfg.Translation.APIKey) != "" {
		backend = translate.NewOpenAIBackend(translate.OpenAIConfig{
			APIKey:      cfg.Translation.APIKey,
			BaseURL:     cfg.Translation.BaseURL,
			Model:       cfg.Translation.Model,
			Temperature: cfg.Translation.Temperature,
		})
		logger.Info("openai translation backend enabled", "model", cfg.Translation.Model)
	} else {
		logger.Warn("translation api key not set, translated reads will serve primary text")
	}
	retry := translate.DefaultRetryConfig()
	retry.MaxRetries = cfg.Translation.MaxRetries
	if cfg.Translation.RetryBaseDelay > 0 {
		retry.BaseDelay = cfg.Translation.RetryBaseDelay
	}
	return translate.NewAdapter(backend, languages, retry, cfg.Translation.AttemptTimeout, logger)
}

func provideSnapshotStorage(cfg *config.Config, logger *slog.Logger) faq.SnapshotStorage {
	if !cfg.Export.S3.Enabled() {
		logger.Info("export object storage not configured, keeping exports in memory")
		return objectstore.NewMemoryStorage()
	}
	storage, err := objectstore.NewS3Storage(objectstore.S3Config{
		Endpoint:  cfg.Export.S3.Endpoint,
		AccessKey: cfg.Export.S3.AccessKey,
		SecretKey: cfg.Export.S3.SecretKey,
		Bucket:    cfg.Export.S3.Bucket,
		Region:    cfg.Export.S3.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to init export storage, keeping exports in memory", "error", err)
		return objectstore.NewMemoryStorage()
	}
	logger.Info("export object storage enabled", "bucket", cfg.Export.S3.Bucket)
	return storage
}
