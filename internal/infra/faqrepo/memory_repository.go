package faqrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
	"github.com/yanqian/polyglot-faq/pkg/util"
)

// MemoryRepository is an in-memory faq.Repository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	primary string
	records map[int64]faq.Entity
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository(primaryLanguage string) *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		primary: primaryLanguage,
		records: make(map[int64]faq.Entity),
	}
}

// List implements faq.Repository.
func (r *MemoryRepository) List(_ context.Context, filter faq.ListFilter) ([]faq.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faq.Entity, 0, len(r.records))
	for _, record := range r.records {
		if filter.ActiveOnly && !record.IsActive {
			continue
		}
		out = append(out, clone(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements faq.Repository.
func (r *MemoryRepository) Get(_ context.Context, id int64) (faq.Entity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return faq.Entity{}, false, nil
	}
	return clone(record), true, nil
}

// Create implements faq.Repository.
func (r *MemoryRepository) Create(_ context.Context, input faq.NewEntity) (faq.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := util.NowUTC()
	record := faq.Entity{
		ID:           r.nextID,
		Question:     input.Question,
		Answer:       input.Answer,
		Translations: faq.Translations{},
		IsActive:     input.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.records[record.ID] = record
	return clone(record), nil
}

// Update implements faq.Repository.
func (r *MemoryRepository) Update(_ context.Context, id int64, patch faq.EntityPatch) (faq.Entity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return faq.Entity{}, false, nil
	}
	if patch.Question != nil {
		record.Question = *patch.Question
	}
	if patch.Answer != nil {
		record.Answer = *patch.Answer
	}
	if patch.IsActive != nil {
		record.IsActive = *patch.IsActive
	}
	record.UpdatedAt = util.NowUTC()
	r.records[id] = record
	return clone(record), true, nil
}

// Delete implements faq.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

// MergeTranslation implements faq.Repository.
func (r *MemoryRepository) MergeTranslation(_ context.Context, id int64, lang string, field faq.Field, text string) error {
	if lang == r.primary {
		return fmt.Errorf("refusing to store translation for primary language %q", lang)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return faq.ErrNotFound
	}
	if record.Translations == nil {
		record.Translations = faq.Translations{}
	}
	fields, ok := record.Translations[lang]
	if !ok {
		fields = make(map[faq.Field]string, 2)
		record.Translations[lang] = fields
	}
	fields[field] = text
	r.records[id] = record
	return nil
}

// Ping implements faq.Repository.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func clone(record faq.Entity) faq.Entity {
	record.Translations = record.Translations.Clone()
	return record
}

var _ faq.Repository = (*MemoryRepository)(nil)
