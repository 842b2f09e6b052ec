package faq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
	"github.com/yanqian/polyglot-faq/pkg/metrics"
	"github.com/yanqian/polyglot-faq/pkg/util"
)

// Service exposes the multilingual FAQ catalog.
type Service interface {
	List(ctx context.Context, lang string) ([]FAQView, error)
	Get(ctx context.Context, id int64, lang string) (FAQView, error)
	Translations(ctx context.Context, id int64) (TranslationsView, error)
	Languages() []Language
	Create(ctx context.Context, req CreateRequest) (FAQView, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (FAQView, error)
	Delete(ctx context.Context, id int64) error
	ExportTranslations(ctx context.Context) (ExportResult, error)
	Health(ctx context.Context) HealthReport
}

const (
	HealthOK          = "ok"
	HealthDegraded    = "degraded"
	HealthUnavailable = "unavailable"

	componentUp   = "up"
	componentDown = "down"

	exportVersion = 1
)

type service struct {
	cfg       Config
	languages *Languages
	keys      cacheKeys
	cache     *cacheGuard
	repo      Repository
	resolver  *Resolver
	snapshots SnapshotStorage
	logger    *slog.Logger
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, languages *Languages, repo Repository, cache Cache, resolver *Resolver, snapshots SnapshotStorage, recorder *metrics.Recorder, logger *slog.Logger) Service {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "faq.service")
	return &service{
		cfg:       cfg,
		languages: languages,
		keys:      cacheKeys{prefix: cfg.CachePrefix},
		cache:     newCacheGuard(cache, cfg.CacheTimeout, recorder, logger),
		repo:      repo,
		resolver:  resolver,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context, rawLang string) ([]FAQView, error) {
	lang := s.languages.Normalize(rawLang)
	key := s.keys.list(lang.Code)

	var views []FAQView
	if s.loadCached(ctx, metrics.LevelList, key, &views) {
		return views, nil
	}

	entities, err := s.repo.List(ctx, ListFilter{ActiveOnly: s.cfg.ListActiveOnly})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStore, "failed to list faqs", err)
	}
	views = make([]FAQView, 0, len(entities))
	for i := range entities {
		view, err := s.present(ctx, &entities[i], lang)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	s.storeCached(ctx, key, views)
	return views, nil
}

func (s *service) Get(ctx context.Context, id int64, rawLang string) (FAQView, error) {
	lang := s.languages.Normalize(rawLang)
	key := s.keys.detail(id, lang.Code)

	var view FAQView
	if s.loadCached(ctx, metrics.LevelDetail, key, &view) {
		return view, nil
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return FAQView{}, err
	}
	view, err = s.present(ctx, &entity, lang)
	if err != nil {
		return FAQView{}, err
	}
	s.storeCached(ctx, key, view)
	return view, nil
}

func (s *service) Translations(ctx context.Context, id int64) (TranslationsView, error) {
	key := s.keys.translations(id)

	var view TranslationsView
	if s.loadCached(ctx, metrics.LevelTranslations, key, &view) {
		return view, nil
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return TranslationsView{}, err
	}
	view = TranslationsView{ID: entity.ID, Translations: s.catalog(entity)}
	s.storeCached(ctx, key, view)
	return view, nil
}

func (s *service) Languages() []Language {
	return s.languages.All()
}

func (s *service) Create(ctx context.Context, req CreateRequest) (FAQView, error) {
	question := trimmed(req.Question)
	answer := trimmed(req.Answer)
	if question == "" {
		return FAQView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	if answer == "" {
		return FAQView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "answer cannot be empty", nil)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	entity, err := s.repo.Create(ctx, NewEntity{Question: question, Answer: answer, IsActive: active})
	if err != nil {
		return FAQView{}, apperrors.Wrap(apperrors.CodeStore, "failed to create faq", err)
	}
	s.invalidate(ctx)
	s.logger.Info("faq created", "faq_id", entity.ID)
	return s.primaryView(entity), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (FAQView, error) {
	patch := EntityPatch{IsActive: req.IsActive}
	if req.Question != nil {
		question := trimmed(*req.Question)
		if question == "" {
			return FAQView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
		}
		patch.Question = &question
	}
	if req.Answer != nil {
		answer := trimmed(*req.Answer)
		if answer == "" {
			return FAQView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "answer cannot be empty", nil)
		}
		patch.Answer = &answer
	}
	if patch.Empty() {
		return FAQView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "nothing to update", nil)
	}

	entity, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return FAQView{}, apperrors.Wrap(apperrors.CodeStore, "failed to update faq", err)
	}
	if !found {
		return FAQView{}, notFound(id)
	}
	s.invalidate(ctx)
	s.logger.Info("faq updated", "faq_id", id)
	return s.primaryView(entity), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStore, "failed to delete faq", err)
	}
	if !found {
		return notFound(id)
	}
	s.invalidate(ctx)
	s.logger.Info("faq deleted", "faq_id", id)
	return nil
}

type exportEntry struct {
	ID           int64        `json:"id"`
	IsActive     bool         `json:"isActive"`
	Translations Translations `json:"translations"`
}

type exportDocument struct {
	Version         int           `json:"version"`
	PrimaryLanguage string        `json:"primaryLanguage"`
	ExportedAt      time.Time     `json:"exportedAt"`
	Entries         []exportEntry `json:"entries"`
}

func (s *service) ExportTranslations(ctx context.Context) (ExportResult, error) {
	if s.snapshots == nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeExport, "export storage not configured", nil)
	}
	entities, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeStore, "failed to list faqs", err)
	}

	now := util.NowUTC()
	doc := exportDocument{
		Version:         exportVersion,
		PrimaryLanguage: s.languages.Primary().Code,
		ExportedAt:      now,
		Entries:         make([]exportEntry, 0, len(entities)),
	}
	for _, entity := range entities {
		doc.Entries = append(doc.Entries, exportEntry{
			ID:           entity.ID,
			IsActive:     entity.IsActive,
			Translations: s.catalog(entity),
		})
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeExport, "failed to encode export", err)
	}

	key := fmt.Sprintf("%s/faq-translations-%s-%s.json", s.cfg.ExportPrefix, util.CompactTimestamp(now), uuid.NewString())
	stored, err := s.snapshots.Put(ctx, key, payload, "application/json")
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeExport, "failed to store export", err)
	}
	s.logger.Info("translation catalog exported", "key", stored.Key, "entries", len(doc.Entries), "bytes", stored.Size)
	return ExportResult{
		Key:        stored.Key,
		Entries:    len(doc.Entries),
		Size:       stored.Size,
		ETag:       stored.ETag,
		ExportedAt: now,
	}, nil
}

func (s *service) Health(ctx context.Context) HealthReport {
	report := HealthReport{Status: HealthOK, Store: componentUp, Cache: componentUp}
	if err := s.cache.ping(ctx); err != nil {
		s.logger.Warn("cache ping failed", "error", err)
		report.Cache = componentDown
		report.Status = HealthDegraded
	}
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("store ping failed", "error", err)
		report.Store = componentDown
		report.Status = HealthUnavailable
	}
	return report
}

func (s *service) load(ctx context.Context, id int64) (Entity, error) {
	entity, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entity{}, apperrors.Wrap(apperrors.CodeStore, "failed to load faq", err)
	}
	if !found {
		return Entity{}, notFound(id)
	}
	return entity, nil
}

func (s *service) present(ctx context.Context, entity *Entity, lang Language) (FAQView, error) {
	question, err := s.resolver.Resolve(ctx, entity, FieldQuestion, lang.Code)
	if err != nil {
		return FAQView{}, err
	}
	answer, err := s.resolver.Resolve(ctx, entity, FieldAnswer, lang.Code)
	if err != nil {
		return FAQView{}, err
	}
	view := s.primaryView(*entity)
	view.Question = question
	view.Answer = answer
	view.TranslatedLanguage = lang
	return view, nil
}

func (s *service) primaryView(entity Entity) FAQView {
	return FAQView{
		ID:                 entity.ID,
		Question:           entity.Question,
		Answer:             entity.Answer,
		CreatedAt:          entity.CreatedAt,
		UpdatedAt:          entity.UpdatedAt,
		IsActive:           entity.IsActive,
		TranslatedLanguage: s.languages.Primary(),
	}
}

// catalog returns the primary content keyed by the primary code plus every persisted translation.
func (s *service) catalog(entity Entity) Translations {
	primary := s.languages.Primary().Code
	out := entity.Translations.Without(primary)
	out[primary] = map[Field]string{
		FieldQuestion: entity.Question,
		FieldAnswer:   entity.Answer,
	}
	return out
}

func (s *service) invalidate(ctx context.Context) {
	s.cache.purge(ctx, s.keys.namespace())
}

func (s *service) loadCached(ctx context.Context, level, key string, dst any) bool {
	raw, ok := s.cache.get(ctx, level, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (s *service) storeCached(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	s.cache.set(ctx, key, raw, s.cfg.CacheTTL)
}

func notFound(id int64) error {
	return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("faq %d not found", id), nil)
}
