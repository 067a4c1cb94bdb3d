package profile

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Profile is the public, shareable page an owner builds. Sections hang off
// it; the profile itself only carries identity, theme and publication state.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline"`
	Industry    string    `json:"industry"`
	ThemeID     string    `json:"theme_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidSlug     = errors.New("slug only includes lowercase letter, digit and -")
	profileSlugRegex   = regexp.MustCompile(`^[a-z0-9-]+$`)
)

func (p *Profile) Validate() error {
	if !profileSlugRegex.MatchString(p.Slug) {
		return ErrInvalidSlug
	}
	return nil
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
	FindBySlug(ctx context.Context, slug string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	SearchPublished(ctx context.Context, query string, limit int) ([]*Profile, error)
}
