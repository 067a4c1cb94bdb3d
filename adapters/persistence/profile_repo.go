package persistence

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/pkg/apperror"
	"github.com/khoaphan/careerframe/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

var psqlProfile = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const profileColumns = "id, owner_id, slug, display_name, headline, industry, theme_id, is_published, created_at, updated_at"

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Slug, &p.DisplayName, &p.Headline,
		&p.Industry, &p.ThemeID, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *postgresProfileRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE owner_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, ownerID))
}

func (r *postgresProfileRepo) FindBySlug(ctx context.Context, slug string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE slug = $1`
	return scanProfile(r.db.QueryRow(ctx, query, slug))
}

func (r *postgresProfileRepo) Upsert(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (id, owner_id, slug, display_name, headline, industry, theme_id, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			display_name = EXCLUDED.display_name,
			headline = EXCLUDED.headline,
			industry = EXCLUDED.industry,
			theme_id = EXCLUDED.theme_id,
			is_published = EXCLUDED.is_published,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.OwnerID, p.Slug, p.DisplayName, p.Headline,
		p.Industry, p.ThemeID, p.IsPublished, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("profile", "slug", p.Slug)
		}
		return apperror.NewInternal("failed to upsert profile", err)
	}
	return nil
}

// SearchPublished runs a full-text search over published profiles. The ts
// column is a generated tsvector over display_name, headline and industry.
func (r *postgresProfileRepo) SearchPublished(ctx context.Context, query string, limit int) ([]*profile.Profile, error) {
	builder := psqlProfile.Select(profileColumns).
		From("profiles").
		Where(sq.Eq{"is_published": true}).
		OrderBy("updated_at DESC").
		Limit(uint64(limit))
	if query != "" {
		builder = builder.Where("ts @@ plainto_tsquery('simple', ?)", query)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile search query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to search profiles", err)
	}
	defer rows.Close()

	results := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return results, nil
}
