package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoaphan/careerframe/internal/application/service"
	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/internal/domain/template"
	"github.com/khoaphan/careerframe/pkg/apperror"
	"github.com/khoaphan/careerframe/pkg/logger"
)

// PendingRemovals lets the public view honor an optimistic section removal
// that has not been committed yet.
type PendingRemovals interface {
	Pending(profileID uuid.UUID) (uuid.UUID, bool)
}

type ProfileUseCase struct {
	profileRepo profile.Repository
	sectionRepo section.Repository
	cache       service.ProfileCache
	pending     PendingRemovals
	logger      logger.Logger
}

func NewProfileUseCase(
	profileRepo profile.Repository,
	sectionRepo section.Repository,
	cache service.ProfileCache,
	pending PendingRemovals,
	log logger.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		sectionRepo: sectionRepo,
		cache:       cache,
		pending:     pending,
		logger:      log,
	}
}

type GetProfileInput struct {
	OwnerID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	p, err := uc.profileRepo.FindByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &GetProfileOutput{Profile: p}, nil
}

type UpdateProfileInput struct {
	OwnerID     uuid.UUID
	Slug        string
	DisplayName string
	Headline    string
	Industry    string
	ThemeID     string
	IsPublished bool
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	current, err := uc.profileRepo.FindByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	p := &profile.Profile{
		ID:          current.ID,
		OwnerID:     input.OwnerID,
		Slug:        input.Slug,
		DisplayName: input.DisplayName,
		Headline:    input.Headline,
		Industry:    input.Industry,
		ThemeID:     input.ThemeID,
		IsPublished: input.IsPublished,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("profile validation failed", err)
	}

	if err := uc.profileRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}

	// a slug change leaves the old cache entry behind, drop both
	uc.invalidate(ctx, current.Slug)
	if input.Slug != current.Slug {
		uc.invalidate(ctx, input.Slug)
	}
	return &UpdateProfileOutput{Profile: p}, nil
}

// PublicSectionView is one rendered block of the public page: the canonical
// section document, never a producer-specific shape.
type PublicSectionView struct {
	SectionType  string          `json:"section_type"`
	SectionOrder int             `json:"section_order"`
	DisplayName  string          `json:"display_name"`
	Icon         string          `json:"icon_name"`
	SectionData  json.RawMessage `json:"section_data"`
}

type PublicProfileView struct {
	Slug        string              `json:"slug"`
	DisplayName string              `json:"display_name"`
	Headline    string              `json:"headline"`
	ThemeID     string              `json:"theme_id"`
	Sections    []PublicSectionView `json:"sections"`
}

// ExecuteGetPublicProfile assembles the public page for a slug: published
// profile plus its visible sections in display order, each normalized to
// canonical shape. The assembled view is cached per slug.
func (uc *ProfileUseCase) ExecuteGetPublicProfile(ctx context.Context, slug string) (*PublicProfileView, error) {
	if uc.cache != nil {
		if payload, err := uc.cache.Get(ctx, slug); err == nil {
			var view PublicProfileView
			if err := json.Unmarshal(payload, &view); err == nil {
				return &view, nil
			}
			uc.logger.Warn("discarding malformed cached profile view", zap.String("slug", slug))
		}
	}

	view, err := uc.assemblePublicProfile(ctx, slug)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := uc.cache.Set(ctx, slug, payload); err != nil {
				uc.logger.Warn("failed to cache public profile view", zap.String("slug", slug), zap.Error(err))
			}
		}
	}
	return view, nil
}

func (uc *ProfileUseCase) assemblePublicProfile(ctx context.Context, slug string) (*PublicProfileView, error) {
	p, err := uc.profileRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished {
		return nil, apperror.NewNotFound("profile", slug)
	}

	sections, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections failed: %w", err)
	}

	pendingID := uuid.Nil
	if uc.pending != nil {
		if id, ok := uc.pending.Pending(p.ID); ok {
			pendingID = id
		}
	}

	view := &PublicProfileView{
		Slug:        p.Slug,
		DisplayName: p.DisplayName,
		Headline:    p.Headline,
		ThemeID:     p.ThemeID,
		Sections:    make([]PublicSectionView, 0, len(sections)),
	}
	for _, s := range section.SortByOrder(sections) {
		if !s.IsVisible || s.ID == pendingID {
			continue
		}
		tpl := template.Lookup(s.Type)
		view.Sections = append(view.Sections, PublicSectionView{
			SectionType:  s.Type,
			SectionOrder: s.Order,
			DisplayName:  tpl.DisplayName,
			Icon:         tpl.Icon,
			SectionData:  section.Normalize(s.Type, s.Data).Document(),
		})
	}
	return view, nil
}

// ExecuteRefreshPublicProfile rebuilds the cached view for a slug. The
// worker calls this when it consumes a section event.
func (uc *ProfileUseCase) ExecuteRefreshPublicProfile(ctx context.Context, slug string) error {
	uc.invalidate(ctx, slug)
	if _, err := uc.ExecuteGetPublicProfile(ctx, slug); err != nil {
		return fmt.Errorf("rebuild public profile view failed: %w", err)
	}
	return nil
}

// ProfileExport is the owner-facing full backup of a profile: every section,
// hidden ones included, with data exactly as stored.
type ProfileExport struct {
	Profile    *profile.Profile          `json:"profile"`
	Sections   []*section.ProfileSection `json:"sections"`
	ExportedAt time.Time                 `json:"exported_at"`
}

func (uc *ProfileUseCase) ExecuteExportProfile(ctx context.Context, ownerID uuid.UUID) (*ProfileExport, error) {
	p, err := uc.profileRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	sections, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections failed: %w", err)
	}

	return &ProfileExport{
		Profile:    p,
		Sections:   section.SortByOrder(sections),
		ExportedAt: time.Now().UTC(),
	}, nil
}

type SearchProfilesInput struct {
	Query string
	Limit int
}

func (uc *ProfileUseCase) ExecuteSearchProfiles(ctx context.Context, input SearchProfilesInput) ([]*profile.Profile, error) {
	limit := input.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	results, err := uc.profileRepo.SearchPublished(ctx, input.Query, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles failed: %w", err)
	}
	return results, nil
}

func (uc *ProfileUseCase) invalidate(ctx context.Context, slug string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, slug); err != nil {
		uc.logger.Warn("failed to invalidate public profile cache", zap.String("slug", slug), zap.Error(err))
	}
}
