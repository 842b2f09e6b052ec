package faq

import (
	"strings"
	"time"
)

// Field names a translatable attribute of an entry.
type Field string

const (
	FieldQuestion Field = "question"
	FieldAnswer   Field = "answer"
)

// Valid reports whether f is a translatable field.
func (f Field) Valid() bool {
	return f == FieldQuestion || f == FieldAnswer
}

// Translations maps language code -> field -> translated text.
type Translations map[string]map[Field]string

// Get returns the stored translation or "".
func (t Translations) Get(lang string, field Field) string {
	if t == nil {
		return ""
	}
	return t[lang][field]
}

// Clone returns a deep copy.
func (t Translations) Clone() Translations {
	out := make(Translations, len(t))
	for lang, fields := range t {
		copied := make(map[Field]string, len(fields))
		for field, text := range fields {
			copied[field] = text
		}
		out[lang] = copied
	}
	return out
}

// Without returns a copy that omits the given language.
func (t Translations) Without(lang string) Translations {
	out := t.Clone()
	delete(out, lang)
	return out
}

// Entity is one FAQ entry as held by the repository.
type Entity struct {
	ID           int64
	Question     string
	Answer       string
	Translations Translations
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e *Entity) primary(field Field) string {
	if field == FieldAnswer {
		return e.Answer
	}
	return e.Question
}

func (e *Entity) setTranslation(lang string, field Field, text string) {
	if e.Translations == nil {
		e.Translations = make(Translations)
	}
	fields, ok := e.Translations[lang]
	if !ok {
		fields = make(map[Field]string, 2)
		e.Translations[lang] = fields
	}
	fields[field] = text
}

// ListFilter narrows repository listings.
type ListFilter struct {
	ActiveOnly bool
}

// NewEntity is the repository input for inserts.
type NewEntity struct {
	Question string
	Answer   string
	IsActive bool
}

// EntityPatch carries the attributes an update should overwrite.
type EntityPatch struct {
	Question *string
	Answer   *string
	IsActive *bool
}

// Empty reports whether the patch changes nothing.
func (p EntityPatch) Empty() bool {
	return p.Question == nil && p.Answer == nil && p.IsActive == nil
}

// Language describes a supported language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FAQView is the transport representation of an entry in one language.
type FAQView struct {
	ID                 int64     `json:"id"`
	Question           string    `json:"question"`
	Answer             string    `json:"answer"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	IsActive           bool      `json:"is_active"`
	TranslatedLanguage Language  `json:"translated_language"`
}

// TranslationsView lists the primary content and every persisted translation.
type TranslationsView struct {
	ID           int64        `json:"id"`
	Translations Translations `json:"translations"`
}

// CreateRequest is the payload accepted when creating an entry.
type CreateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsActive *bool  `json:"is_active"`
}

// UpdateRequest is the payload accepted when updating an entry. Nil fields are left untouched.
type UpdateRequest struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	IsActive *bool   `json:"is_active"`
}

// ExportResult describes a stored translation catalog snapshot.
type ExportResult struct {
	Key        string    `json:"key"`
	Entries    int       `json:"entries"`
	Size       int64     `json:"size"`
	ETag       string    `json:"etag,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
}

// HealthReport summarizes the reachability of the shared resources.
type HealthReport struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Cache  string `json:"cache"`
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
