package faq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/polyglot-faq/pkg/metrics"
)

const degradeBound = 2 * time.Second

func TestResolveServesPrimaryWhenTranslatorTimesOut(t *testing.T) {
	repo := newFakeRepo(nil)
	entity := repo.seed(Entity{Question: "Q?", Answer: "A", IsActive: true})
	translator := &blockingTranslator{}
	cfg := Config{PrimaryLanguage: "en", CachePrefix: "faq", CacheTTL: time.Hour, TranslationTimeout: 50 * time.Millisecond}
	resolver := NewResolver(cfg, testLanguages(), newFakeCache(nil), repo, translator, metrics.New(), newTestLogger())

	start := time.Now()
	got, err := resolver.Resolve(context.Background(), &entity, FieldQuestion, "fr")
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, "Q?", got)
	require.Less(t, elapsed, degradeBound)
	require.Equal(t, 1, translator.calls)
	require.Zero(t, repo.mergeCalls)
	require.Empty(t, repo.stored(entity.ID).Translations.Get("fr", FieldQuestion))
}

func TestResolveServesPrimaryWhenCallerCancels(t *testing.T) {
	repo := newFakeRepo(nil)
	entity := repo.seed(Entity{Question: "Q?", Answer: "A", IsActive: true})
	cfg := Config{PrimaryLanguage: "en", CachePrefix: "faq", TranslationTimeout: time.Minute}
	resolver := NewResolver(cfg, testLanguages(), newFakeCache(nil), repo, &blockingTranslator{}, metrics.New(), newTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	got, err := resolver.Resolve(ctx, &entity, FieldAnswer, "de")

	require.NoError(t, err)
	require.Equal(t, "A", got)
	require.Less(t, time.Since(start), degradeBound)
}

func TestServiceSurvivesHangingCache(t *testing.T) {
	repo := newFakeRepo(nil)
	repo.seed(Entity{Question: "Q?", Answer: "A", IsActive: true})
	cfg := Config{
		PrimaryLanguage:    "en",
		CachePrefix:        "faq",
		CacheTTL:           time.Hour,
		CacheTimeout:       20 * time.Millisecond,
		TranslationTimeout: 50 * time.Millisecond,
	}
	langs := testLanguages()
	recorder := metrics.New()
	logger := newTestLogger()
	cache := hangingCache{}
	resolver := NewResolver(cfg, langs, cache, repo, &blockingTranslator{}, recorder, logger)
	svc := NewService(cfg, langs, repo, cache, resolver, &fakeSnapshots{}, recorder, logger)
	ctx := context.Background()

	start := time.Now()
	views, err := svc.List(ctx, "fr")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Q?", views[0].Question)
	require.Equal(t, "A", views[0].Answer)
	require.Less(t, time.Since(start), degradeBound)
	require.Equal(t, float64(1), counterValue(t, recorder, metrics.LevelList, metrics.ResultError))

	start = time.Now()
	created, err := svc.Create(ctx, CreateRequest{Question: "New?", Answer: "Yes"})
	require.NoError(t, err)
	require.Equal(t, "New?", created.Question)
	require.Less(t, time.Since(start), degradeBound)

	start = time.Now()
	report := svc.Health(ctx)
	require.Equal(t, HealthDegraded, report.Status)
	require.Equal(t, componentDown, report.Cache)
	require.Less(t, time.Since(start), degradeBound)
}
