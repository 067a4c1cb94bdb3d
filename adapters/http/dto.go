package http

import (
	"encoding/json"
	"time"

	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/internal/domain/template"
)

// Auth DTOs

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Profile DTOs

type ProfileDTO struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline"`
	Industry    string    `json:"industry"`
	ThemeID     string    `json:"theme_id"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	Slug        string `json:"slug" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Headline    string `json:"headline"`
	Industry    string `json:"industry"`
	ThemeID     string `json:"theme_id"`
	IsPublished bool   `json:"is_published"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		DisplayName: p.DisplayName,
		Headline:    p.Headline,
		Industry:    p.Industry,
		ThemeID:     p.ThemeID,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ProfileSummaryDTO struct {
	Slug        string    `json:"slug"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline"`
	Industry    string    `json:"industry"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToProfileSummaryDTOs(profiles []*profile.Profile) []ProfileSummaryDTO {
	out := make([]ProfileSummaryDTO, len(profiles))
	for i, p := range profiles {
		out[i] = ProfileSummaryDTO{
			Slug:        p.Slug,
			DisplayName: p.DisplayName,
			Headline:    p.Headline,
			Industry:    p.Industry,
			UpdatedAt:   p.UpdatedAt,
		}
	}
	return out
}

// Section DTOs

// SectionDTO carries both the stored document and its canonical shape so the
// editor never needs to know which producer wrote the data.
type SectionDTO struct {
	ID            string          `json:"id"`
	SectionType   string          `json:"section_type"`
	SectionOrder  int             `json:"section_order"`
	IsVisible     bool            `json:"is_visible"`
	IsCore        bool            `json:"is_core"`
	IsFirst       bool            `json:"is_first"`
	IsLast        bool            `json:"is_last"`
	DisplayName   string          `json:"display_name"`
	Icon          string          `json:"icon_name"`
	SectionData   json.RawMessage `json:"section_data"`
	CanonicalData json.RawMessage `json:"canonical_data"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToSectionDTO(s *section.ProfileSection, all []*section.ProfileSection) SectionDTO {
	tpl := template.Lookup(s.Type)
	return SectionDTO{
		ID:            s.ID.String(),
		SectionType:   s.Type,
		SectionOrder:  s.Order,
		IsVisible:     s.IsVisible,
		IsCore:        tpl.IsCore,
		IsFirst:       section.IsFirst(all, s.ID),
		IsLast:        section.IsLast(all, s.ID),
		DisplayName:   tpl.DisplayName,
		Icon:          tpl.Icon,
		SectionData:   s.Data,
		CanonicalData: section.Normalize(s.Type, s.Data).Document(),
		UpdatedAt:     s.UpdatedAt,
	}
}

func ToSectionDTOs(sections []*section.ProfileSection) []SectionDTO {
	out := make([]SectionDTO, len(sections))
	for i, s := range sections {
		out[i] = ToSectionDTO(s, sections)
	}
	return out
}

type AddSectionRequest struct {
	SectionType string `json:"section_type" binding:"required"`
}

type EditSectionRequest struct {
	SectionData json.RawMessage `json:"section_data" binding:"required"`
}

type MoveSectionRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

type ReorderSectionsRequest struct {
	OrderedIDs []string `json:"ordered_ids" binding:"required,min=1"`
}

type BulkSectionPayload struct {
	SectionType string          `json:"section_type" binding:"required"`
	SectionData json.RawMessage `json:"section_data"`
}

type BulkCreateSectionsRequest struct {
	Sections []BulkSectionPayload `json:"sections" binding:"required,min=1,dive"`
}
