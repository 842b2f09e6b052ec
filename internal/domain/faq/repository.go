package faq

import "context"

// Repository is the durable store of FAQ entries.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Entity, error)
	Get(ctx context.Context, id int64) (Entity, bool, error)
	Create(ctx context.Context, input NewEntity) (Entity, error)
	Update(ctx context.Context, id int64, patch EntityPatch) (Entity, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// MergeTranslation stores one translated field without touching any other
	// language or field of the entry. Returns ErrNotFound for unknown ids.
	MergeTranslation(ctx context.Context, id int64, lang string, field Field, text string) error
	Ping(ctx context.Context) error
}

// Translator turns primary language text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// StoredObject describes an object written to snapshot storage.
type StoredObject struct {
	Key  string
	Size int64
	ETag string
}

// SnapshotStorage persists exported translation catalogs.
type SnapshotStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error)
}
