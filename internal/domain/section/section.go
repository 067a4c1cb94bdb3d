package section

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Known section types. The set is open ended: anything matching the type
// pattern is accepted and handled by the generic fallback normalizer.
const (
	TypeHero         = "hero"
	TypeCaseStudies  = "case_studies"
	TypeSkillsMatrix = "skills_matrix"
	TypeTimeline     = "timeline"
	TypeImpactCharts = "impact_charts"
	TypeLanguages    = "languages"
	TypeTestimonials = "testimonials"
)

// ProfileSection is one configurable content block on a profile. Data holds
// the raw section document; its shape depends on Type and on which producer
// wrote it (see shape.go). At most one section per type exists per profile,
// lookups are by type.
type ProfileSection struct {
	ID        uuid.UUID       `json:"id"`
	ProfileID uuid.UUID       `json:"profile_id"`
	Type      string          `json:"section_type"`
	Order     int             `json:"section_order"`
	IsVisible bool            `json:"is_visible"`
	Data      json.RawMessage `json:"section_data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	ErrSectionNotFound  = errors.New("section not found")
	ErrInvalidType      = errors.New("section type only includes lowercase letter, digit and _")
	ErrCoreNotRemovable = errors.New("core sections cannot be removed")
	sectionTypePattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func (s *ProfileSection) Validate() error {
	if !sectionTypePattern.MatchString(s.Type) {
		return ErrInvalidType
	}
	return nil
}

type Repository interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*ProfileSection, error)
	FindByID(ctx context.Context, profileID, id uuid.UUID) (*ProfileSection, error)
	FindByType(ctx context.Context, profileID uuid.UUID, sectionType string) (*ProfileSection, error)
	Save(ctx context.Context, s *ProfileSection) error
	SaveAll(ctx context.Context, sections []*ProfileSection) error
	Update(ctx context.Context, s *ProfileSection) error
	UpdateOrders(ctx context.Context, profileID uuid.UUID, orders map[uuid.UUID]int) error
	Delete(ctx context.Context, profileID, id uuid.UUID) error
}

// SortByOrder returns a copy of list sorted by section_order. Orders are not
// required to be contiguous; ties keep the input (insertion) order.
func SortByOrder(list []*ProfileSection) []*ProfileSection {
	sorted := make([]*ProfileSection, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// FindByType returns the single section of the given type, relying on the
// one-instance-per-type invariant.
func FindByType(list []*ProfileSection, sectionType string) (*ProfileSection, bool) {
	for _, s := range list {
		if s.Type == sectionType {
			return s, true
		}
	}
	return nil, false
}

// IsFirst reports whether the section is first in display order. Used to
// suppress the move-up control at the boundary.
func IsFirst(list []*ProfileSection, id uuid.UUID) bool {
	sorted := SortByOrder(list)
	return len(sorted) > 0 && sorted[0].ID == id
}

// IsLast reports whether the section is last in display order.
func IsLast(list []*ProfileSection, id uuid.UUID) bool {
	sorted := SortByOrder(list)
	return len(sorted) > 0 && sorted[len(sorted)-1].ID == id
}

// NextOrder returns the order value for a newly appended section.
func NextOrder(list []*ProfileSection) int {
	max := 0
	for _, s := range list {
		if s.Order > max {
			max = s.Order
		}
	}
	return max + 1
}
