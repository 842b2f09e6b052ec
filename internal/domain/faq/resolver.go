package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

// Resolver returns one field of an entry in a requested language. Lookups go
// field cache, then persisted translations, then the translator; fresh
// translations are persisted before they are cached.
type Resolver struct {
	languages  *Languages
	keys       cacheKeys
	cache      *cacheGuard
	repo       Repository
	translator Translator
	ttl        time.Duration
	timeout    time.Duration
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewResolver wires a resolver.
func NewResolver(cfg Config, languages *Languages, cache Cache, repo Repository, translator Translator, recorder *metrics.Recorder, logger *slog.Logger) *Resolver {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "faq.resolver")
	return &Resolver{
		languages:  languages,
		keys:       cacheKeys{prefix: cfg.CachePrefix},
		cache:      newCacheGuard(cache, cfg.CacheTimeout, recorder, logger),
		repo:       repo,
		translator: translator,
		ttl:        cfg.CacheTTL,
		timeout:    cfg.TranslationTimeout,
		metrics:    recorder,
		logger:     logger,
	}
}

// Resolve never fails because of the cache or the translator: those degrade to
// the primary text. Only invalid arguments return an error.
func (r *Resolver) Resolve(ctx context.Context, entity *Entity, field Field, lang string) (string, error) {
	if entity == nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "entity is required", nil)
	}
	if !field.Valid() {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown field %q", field), nil)
	}
	if !r.languages.IsSupported(lang) {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unsupported language %q", lang), nil)
	}

	source := entity.primary(field)
	if lang == r.languages.Primary().Code || strings.TrimSpace(source) == "" {
		return source, nil
	}

	key := r.keys.field(entity.ID, field, lang)
	if cached, ok := r.cache.get(ctx, metrics.LevelField, key); ok {
		return string(cached), nil
	}

	if stored := entity.Translations.Get(lang, field); stored != "" {
		return stored, nil
	}

	translated, err := r.translate(ctx, source, lang)
	if err != nil {
		r.logger.Warn("translation unavailable, serving primary text",
			"faq_id", entity.ID, "field", field, "lang", lang, "error", err)
		return source, nil
	}

	if err := r.repo.MergeTranslation(ctx, entity.ID, lang, field, translated); err != nil {
		r.logger.Error("persist translation failed",
			"faq_id", entity.ID, "field", field, "lang", lang, "error", err)
		return translated, nil
	}
	entity.setTranslation(lang, field, translated)
	r.cache.set(ctx, key, []byte(translated), r.ttl)
	return translated, nil
}

func (r *Resolver) translate(ctx context.Context, text, lang string) (string, error) {
	if r.translator == nil {
		return "", apperrors.Wrap(apperrors.CodeProvider, "translator not configured", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	translated, err := r.translator.Translate(ctx, text, lang)
	elapsed := time.Since(start)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = apperrors.Wrap(apperrors.CodeProvider, "translator returned empty text", nil)
	}
	if err != nil {
		r.metrics.ProviderCall(metrics.ResultFailure, elapsed)
		return "", err
	}
	r.metrics.ProviderCall(metrics.ResultSuccess, elapsed)
	return translated, nil
}
