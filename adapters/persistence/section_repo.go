package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/pkg/apperror"
	"github.com/khoaphan/careerframe/pkg/logger"
)

type postgresSectionRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSectionRepo(db *pgxpool.Pool, logger logger.Logger) section.Repository {
	return &postgresSectionRepo{db: db, logger: logger}
}

var psqlSection = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const sectionColumns = "id, profile_id, section_type, section_order, is_visible, section_data, created_at, updated_at"

func scanSection(row pgx.Row, l logger.Logger) (*section.ProfileSection, error) {
	s := &section.ProfileSection{}
	var dataBytes []byte

	err := row.Scan(
		&s.ID, &s.ProfileID, &s.Type, &s.Order,
		&s.IsVisible, &dataBytes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, section.ErrSectionNotFound
		}
		return nil, apperror.NewInternal("failed to scan section row", err)
	}

	if len(dataBytes) == 0 || !gjson.ValidBytes(dataBytes) {
		// malformed section_data renders as empty rather than failing the read
		l.Warn("section_data is not valid JSON, using empty document",
			zap.String("section_id", s.ID.String()), zap.String("section_type", s.Type))
		dataBytes = []byte(`{}`)
	}
	s.Data = json.RawMessage(dataBytes)
	return s, nil
}

func scanSections(rows pgx.Rows, l logger.Logger) ([]*section.ProfileSection, error) {
	defer rows.Close()
	sections := make([]*section.ProfileSection, 0)
	for rows.Next() {
		s, err := scanSection(rows, l)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating section rows", err)
	}
	return sections, nil
}

func (r *postgresSectionRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*section.ProfileSection, error) {
	builder := psqlSection.Select(sectionColumns).
		From("profile_sections").
		Where(sq.Eq{"profile_id": profileID}).
		OrderBy("section_order ASC", "created_at ASC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build section list query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query sections", err)
	}
	return scanSections(rows, r.logger)
}

func (r *postgresSectionRepo) FindByID(ctx context.Context, profileID, id uuid.UUID) (*section.ProfileSection, error) {
	query := `
		SELECT ` + sectionColumns + `
		FROM profile_sections
		WHERE id = $1 AND profile_id = $2
	`
	row := r.db.QueryRow(ctx, query, id, profileID)
	return scanSection(row, r.logger)
}

func (r *postgresSectionRepo) FindByType(ctx context.Context, profileID uuid.UUID, sectionType string) (*section.ProfileSection, error) {
	query := `
		SELECT ` + sectionColumns + `
		FROM profile_sections
		WHERE profile_id = $1 AND section_type = $2
	`
	row := r.db.QueryRow(ctx, query, profileID, sectionType)
	return scanSection(row, r.logger)
}

func (r *postgresSectionRepo) Save(ctx context.Context, s *section.ProfileSection) error {
	query := `
		INSERT INTO profile_sections (id, profile_id, section_type, section_order, is_visible, section_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.ProfileID, s.Type, s.Order, s.IsVisible, []byte(s.Data), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("section", "section_type", s.Type)
		}
		return fmt.Errorf("failed to save section: %w", err)
	}
	return nil
}

func (r *postgresSectionRepo) SaveAll(ctx context.Context, sections []*section.ProfileSection) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO profile_sections (id, profile_id, section_type, section_order, is_visible, section_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, s := range sections {
		batch.Queue(query, s.ID, s.ProfileID, s.Type, s.Order, s.IsVisible, []byte(s.Data), s.CreatedAt, s.UpdatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range sections {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to bulk save sections: %w", err)
		}
	}
	return nil
}

func (r *postgresSectionRepo) Update(ctx context.Context, s *section.ProfileSection) error {
	query := `
		UPDATE profile_sections SET
			section_data = $3, is_visible = $4, section_order = $5, updated_at = NOW()
		WHERE id = $1 AND profile_id = $2
	`
	cmdTag, err := r.db.Exec(ctx, query, s.ID, s.ProfileID, []byte(s.Data), s.IsVisible, s.Order)
	if err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return section.ErrSectionNotFound
	}
	return nil
}

func (r *postgresSectionRepo) UpdateOrders(ctx context.Context, profileID uuid.UUID, orders map[uuid.UUID]int) error {
	batch := &pgx.Batch{}
	query := `UPDATE profile_sections SET section_order = $3, updated_at = NOW() WHERE id = $1 AND profile_id = $2`
	for id, order := range orders {
		batch.Queue(query, id, profileID, order)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range orders {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to update section orders: %w", err)
		}
	}
	return nil
}

func (r *postgresSectionRepo) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	query := `DELETE FROM profile_sections WHERE id = $1 AND profile_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return section.ErrSectionNotFound
	}
	return nil
}
