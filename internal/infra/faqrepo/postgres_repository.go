package faqrepo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/polyglot-faq/internal/domain/faq"
)

//go:embed schema.sql
var schemaSQL string

const selectColumns = `id, question, answer, translations, is_active, created_at, updated_at`

// PostgresRepository implements faq.Repository using pgx.
type PostgresRepository struct {
	pool    *pgxpool.Pool
	primary string
}

// NewPostgresRepository constructs the repository. Translations under the
// primary language code are never stored or returned.
func NewPostgresRepository(pool *pgxpool.Pool, primaryLanguage string) *PostgresRepository {
	return &PostgresRepository{pool: pool, primary: primaryLanguage}
}

// EnsureSchema creates the faqs table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schemaSQL)
	return err
}

// List implements faq.Repository.
func (r *PostgresRepository) List(ctx context.Context, filter faq.ListFilter) ([]faq.Entity, error) {
	query := `SELECT ` + selectColumns + ` FROM faqs`
	if filter.ActiveOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []faq.Entity
	for rows.Next() {
		entity, err := r.scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// Get implements faq.Repository.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (faq.Entity, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM faqs WHERE id = $1`, id)
	entity, err := r.scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Entity{}, false, nil
	}
	if err != nil {
		return faq.Entity{}, false, err
	}
	return entity, true, nil
}

// Create implements faq.Repository.
func (r *PostgresRepository) Create(ctx context.Context, input faq.NewEntity) (faq.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO faqs (question, answer, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+selectColumns, input.Question, input.Answer, input.IsActive)
	return r.scanEntity(row)
}

// Update implements faq.Repository. The translations column is never touched.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch faq.EntityPatch) (faq.Entity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE faqs
		SET question   = COALESCE($2, question),
		    answer     = COALESCE($3, answer),
		    is_active  = COALESCE($4, is_active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+selectColumns, id, patch.Question, patch.Answer, patch.IsActive)
	entity, err := r.scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Entity{}, false, nil
	}
	if err != nil {
		return faq.Entity{}, false, err
	}
	return entity, true, nil
}

// Delete implements faq.Repository.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MergeTranslation implements faq.Repository with a single-statement JSONB
// merge, so concurrent writers for other languages or fields are preserved.
func (r *PostgresRepository) MergeTranslation(ctx context.Context, id int64, lang string, field faq.Field, text string) error {
	if lang == r.primary {
		return fmt.Errorf("refusing to store translation for primary language %q", lang)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE faqs
		SET translations = jsonb_set(
			translations,
			ARRAY[$2::text],
			COALESCE(translations -> $2::text, '{}'::jsonb) || jsonb_build_object($3::text, $4::text),
			true
		)
		WHERE id = $1
	`, id, lang, string(field), text)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return faq.ErrNotFound
	}
	return nil
}

// Ping implements faq.Repository.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanEntity(row rowScanner) (faq.Entity, error) {
	var (
		entity faq.Entity
		raw    []byte
	)
	if err := row.Scan(&entity.ID, &entity.Question, &entity.Answer, &raw, &entity.IsActive, &entity.CreatedAt, &entity.UpdatedAt); err != nil {
		return faq.Entity{}, err
	}
	translations, err := decodeTranslations(raw)
	if err != nil {
		return faq.Entity{}, fmt.Errorf("decode translations for faq %d: %w", entity.ID, err)
	}
	delete(translations, r.primary)
	entity.Translations = translations
	return entity, nil
}

func decodeTranslations(raw []byte) (faq.Translations, error) {
	translations := faq.Translations{}
	if len(raw) == 0 {
		return translations, nil
	}
	if err := json.Unmarshal(raw, &translations); err != nil {
		return nil, err
	}
	if translations == nil {
		translations = faq.Translations{}
	}
	return translations, nil
}

var _ faq.Repository = (*PostgresRepository)(nil)
