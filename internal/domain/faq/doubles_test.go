package faq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLanguages() *Languages {
	langs, err := NewLanguages("en", []string{"en", "fr", "de", "es"})
	if err != nil {
		panic(err)
	}
	return langs
}

// events records the order of side effects across doubles.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(event string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, event)
}

func (e *events) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakeRepo struct {
	mu       sync.Mutex
	nextID   int64
	items    map[int64]Entity
	events   *events
	mergeErr error
	listErr  error
	pingErr  error

	listCalls  int
	getCalls   int
	mergeCalls int
}

func newFakeRepo(ev *events) *fakeRepo {
	return &fakeRepo{items: make(map[int64]Entity), events: ev}
}

func (r *fakeRepo) seed(entity Entity) Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entity.ID == 0 {
		r.nextID++
		entity.ID = r.nextID
	} else if entity.ID > r.nextID {
		r.nextID = entity.ID
	}
	if entity.Translations == nil {
		entity.Translations = Translations{}
	}
	r.items[entity.ID] = entity
	return entity
}

func (r *fakeRepo) List(_ context.Context, filter ListFilter) ([]Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Entity, 0, len(r.items))
	for _, item := range r.items {
		if filter.ActiveOnly && !item.IsActive {
			continue
		}
		item.Translations = item.Translations.Clone()
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (Entity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	item, ok := r.items[id]
	if !ok {
		return Entity{}, false, nil
	}
	item.Translations = item.Translations.Clone()
	return item, true, nil
}

func (r *fakeRepo) Create(_ context.Context, input NewEntity) (Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entity := Entity{
		ID:           r.nextID,
		Question:     input.Question,
		Answer:       input.Answer,
		IsActive:     input.IsActive,
		Translations: Translations{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[entity.ID] = entity
	return entity, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, patch EntityPatch) (Entity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return Entity{}, false, nil
	}
	if patch.Question != nil {
		item.Question = *patch.Question
	}
	if patch.Answer != nil {
		item.Answer = *patch.Answer
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	r.items[id] = item
	return item, true, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *fakeRepo) MergeTranslation(_ context.Context, id int64, lang string, field Field, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeCalls++
	r.events.add("persist:" + lang + ":" + string(field))
	if r.mergeErr != nil {
		return r.mergeErr
	}
	item, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	item.setTranslation(lang, field, text)
	r.items[id] = item
	return nil
}

func (r *fakeRepo) Ping(context.Context) error {
	return r.pingErr
}

func (r *fakeRepo) stored(id int64) Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	item.Translations = item.Translations.Clone()
	return item
}

type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	events   *events
	getErr   error
	setErr   error
	purgeErr error
	pingErr  error

	getCalls   int
	setCalls   int
	purgeCalls int
	lastTTL    time.Duration
}

func newFakeCache(ev *events) *fakeCache {
	return &fakeCache{data: make(map[string][]byte), events: ev}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	value, ok := c.data[key]
	return value, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	c.lastTTL = ttl
	c.events.add("cache:" + key)
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *fakeCache) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeCalls++
	if c.purgeErr != nil {
		return 0, c.purgeErr
	}
	var removed int64
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			removed++
		}
	}
	return removed, nil
}

func (c *fakeCache) Ping(context.Context) error {
	return c.pingErr
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *fakeCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = []byte(value)
}

type fakeTranslator struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (t *fakeTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return text + "(" + lang + ")", nil
}

func (t *fakeTranslator) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

type fakeSnapshots struct {
	err     error
	objects map[string][]byte
}

func (s *fakeSnapshots) Put(_ context.Context, key string, data []byte, _ string) (StoredObject, error) {
	if s.err != nil {
		return StoredObject{}, s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = append([]byte(nil), data...)
	return StoredObject{Key: key, Size: int64(len(data)), ETag: "etag"}, nil
}

var errBoom = errors.New("boom")

// blockingTranslator never answers on its own; it returns once ctx is done.
type blockingTranslator struct {
	mu    sync.Mutex
	calls int
}

func (b *blockingTranslator) Translate(ctx context.Context, _, _ string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-ctx.Done()
	return "", ctx.Err()
}

// hangingCache models an unreachable cache server: every call waits for ctx.
type hangingCache struct{}

func (hangingCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func (hangingCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func (hangingCache) DeleteByPrefix(ctx context.Context, _ string) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (hangingCache) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
