package section

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoaphan/careerframe/adapters/event"
	"github.com/khoaphan/careerframe/internal/application/service"
	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/internal/domain/template"
	"github.com/khoaphan/careerframe/pkg/apperror"
	"github.com/khoaphan/careerframe/pkg/logger"
)

const commitTimeout = 10 * time.Second

// SectionUseCase owns every mutation of a profile's section list, including
// the deferred-removal buffer. Mutations are optimistic: the persisted write
// is attempted once and failures surface to the caller without rolling the
// in-memory view back.
type SectionUseCase struct {
	sectionRepo section.Repository
	profileRepo profile.Repository
	events      *event.KafkaProducerClient
	cache       service.ProfileCache
	removal     *RemovalBuffer
	logger      logger.Logger
}

func NewSectionUseCase(
	sectionRepo section.Repository,
	profileRepo profile.Repository,
	events *event.KafkaProducerClient,
	cache service.ProfileCache,
	removalGrace time.Duration,
	log logger.Logger,
) *SectionUseCase {
	uc := &SectionUseCase{
		sectionRepo: sectionRepo,
		profileRepo: profileRepo,
		events:      events,
		cache:       cache,
		logger:      log,
	}
	uc.removal = NewRemovalBuffer(removalGrace, uc.commitRemoval, log)
	return uc
}

// commitRemoval persists a deletion whose grace window elapsed (or was
// flushed). Failures are logged and swallowed: the owner already saw the
// section disappear and there is nobody left to notify.
func (uc *SectionUseCase) commitRemoval(sec *section.ProfileSection) {
	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	if err := uc.sectionRepo.Delete(ctx, sec.ProfileID, sec.ID); err != nil {
		uc.logger.Error("failed to commit deferred section delete", err,
			zap.String("section_id", sec.ID.String()),
			zap.String("section_type", sec.Type))
		return
	}

	uc.invalidateFor(ctx, sec.ProfileID)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeRemoved,
		ProfileID:   sec.ProfileID,
		SectionID:   sec.ID,
		SectionType: sec.Type,
	})
}

// Pending exposes the buffered removal for a profile so read paths (owner
// list, public view) keep the optimistic removal in effect.
func (uc *SectionUseCase) Pending(profileID uuid.UUID) (uuid.UUID, bool) {
	return uc.removal.Pending(profileID)
}

// Shutdown flushes pending removals so deferred deletes survive a restart.
func (uc *SectionUseCase) Shutdown() {
	uc.removal.FlushAll()
}

func (uc *SectionUseCase) profileForOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	p, err := uc.profileRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile failed: %w", err)
	}
	return p, nil
}

// List returns the owner's sections sorted by display order, minus any
// section sitting in the removal buffer.
func (uc *SectionUseCase) List(ctx context.Context, ownerID uuid.UUID) ([]*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sections, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections failed: %w", err)
	}

	if pendingID, ok := uc.removal.Pending(p.ID); ok {
		filtered := sections[:0]
		for _, s := range sections {
			if s.ID != pendingID {
				filtered = append(filtered, s)
			}
		}
		sections = filtered
	}
	return section.SortByOrder(sections), nil
}

type AddSectionInput struct {
	OwnerID     uuid.UUID
	SectionType string
}

// Add appends a new empty section of the given type. Adding a type that is
// already present is a no-op returning the existing section; the model keeps
// one instance per type.
func (uc *SectionUseCase) Add(ctx context.Context, input AddSectionInput) (*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	sec := &section.ProfileSection{Type: input.SectionType}
	if err := sec.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("section type is invalid", err)
	}

	existing, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections failed: %w", err)
	}
	if current, ok := section.FindByType(existing, input.SectionType); ok {
		return current, nil
	}

	now := time.Now().UTC()
	sec = &section.ProfileSection{
		ID:        uuid.New(),
		ProfileID: p.ID,
		Type:      input.SectionType,
		Order:     section.NextOrder(existing),
		IsVisible: true,
		Data:      json.RawMessage(`{}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.sectionRepo.Save(ctx, sec); err != nil {
		return nil, fmt.Errorf("save section failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeCreated,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
		SectionID:   sec.ID,
		SectionType: sec.Type,
	})
	return sec, nil
}

type EditSectionInput struct {
	OwnerID   uuid.UUID
	SectionID uuid.UUID
	Data      json.RawMessage
}

// Edit replaces the section document wholesale. The submitted document is
// canonicalized before it is stored, which migrates any legacy-shaped data
// to editor shape for good. Last write wins; there is no merge.
func (uc *SectionUseCase) Edit(ctx context.Context, input EditSectionInput) (*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	sec, err := uc.sectionRepo.FindByID(ctx, p.ID, input.SectionID)
	if err != nil {
		return nil, err
	}

	canonical, err := section.CanonicalizeForSave(sec.Type, input.Data)
	if err != nil {
		return nil, apperror.NewInvalidInput("section data is not a valid document", err)
	}

	sec.Data = canonical
	sec.UpdatedAt = time.Now().UTC()
	if err := uc.sectionRepo.Update(ctx, sec); err != nil {
		return nil, fmt.Errorf("update section failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeUpdated,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
		SectionID:   sec.ID,
		SectionType: sec.Type,
	})
	return sec, nil
}

// ToggleVisibility flips is_visible and nothing else. Hidden sections keep
// their data; visibility and existence are orthogonal.
func (uc *SectionUseCase) ToggleVisibility(ctx context.Context, ownerID, sectionID uuid.UUID) (*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sec, err := uc.sectionRepo.FindByID(ctx, p.ID, sectionID)
	if err != nil {
		return nil, err
	}

	sec.IsVisible = !sec.IsVisible
	sec.UpdatedAt = time.Now().UTC()
	if err := uc.sectionRepo.Update(ctx, sec); err != nil {
		return nil, fmt.Errorf("toggle visibility failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeVisibility,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
		SectionID:   sec.ID,
		SectionType: sec.Type,
	})
	return sec, nil
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Move swaps the section's order with exactly one neighbor. Moving past a
// boundary is a no-op; the UI suppresses the control there anyway.
func (uc *SectionUseCase) Move(ctx context.Context, ownerID, sectionID uuid.UUID, direction MoveDirection) error {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	sections, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list sections failed: %w", err)
	}
	sorted := section.SortByOrder(sections)

	idx := -1
	for i, s := range sorted {
		if s.ID == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return section.ErrSectionNotFound
	}

	neighbor := idx - 1
	if direction == MoveDown {
		neighbor = idx + 1
	}
	if neighbor < 0 || neighbor >= len(sorted) {
		return nil
	}

	orders := map[uuid.UUID]int{
		sorted[idx].ID:      sorted[neighbor].Order,
		sorted[neighbor].ID: sorted[idx].Order,
	}
	if orders[sorted[idx].ID] == orders[sorted[neighbor].ID] {
		// equal orders swap to nothing; renumber the pair by position instead
		orders[sorted[idx].ID] = neighbor + 1
		orders[sorted[neighbor].ID] = idx + 1
	}
	if err := uc.sectionRepo.UpdateOrders(ctx, p.ID, orders); err != nil {
		return fmt.Errorf("move section failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeReordered,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
		SectionID:   sectionID,
	})
	return nil
}

// Reorder renumbers sections by their position in orderedIDs. Sections left
// out of the submitted ordering keep their relative order after the listed
// ones.
func (uc *SectionUseCase) Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	sections, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list sections failed: %w", err)
	}
	byID := make(map[uuid.UUID]*section.ProfileSection, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	orders := make(map[uuid.UUID]int, len(sections))
	next := 1
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			return apperror.NewInvalidInput(fmt.Sprintf("section '%s' does not belong to this profile", id), nil)
		}
		if _, dup := orders[id]; dup {
			return apperror.NewInvalidInput(fmt.Sprintf("section '%s' listed twice", id), nil)
		}
		orders[id] = next
		next++
	}
	for _, s := range section.SortByOrder(sections) {
		if _, ok := orders[s.ID]; !ok {
			orders[s.ID] = next
			next++
		}
	}

	if err := uc.sectionRepo.UpdateOrders(ctx, p.ID, orders); err != nil {
		return fmt.Errorf("reorder sections failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeReordered,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
	})
	return nil
}

// Remove takes the section out of view and parks it in the removal buffer.
// Core sections are rejected before they ever reach the pending state.
func (uc *SectionUseCase) Remove(ctx context.Context, ownerID, sectionID uuid.UUID) error {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	sec, err := uc.sectionRepo.FindByID(ctx, p.ID, sectionID)
	if err != nil {
		return err
	}

	if template.IsCore(sec.Type) {
		return apperror.New(apperror.ErrPermission,
			section.ErrCoreNotRemovable.Error(),
			fmt.Sprintf("section type '%s' is a core section", sec.Type),
			section.ErrCoreNotRemovable)
	}

	uc.removal.Remove(sec)
	uc.invalidate(ctx, p)
	return nil
}

// Restore undoes a pending removal within the grace window. Nothing was
// persisted yet, so the section simply reappears at its original order.
func (uc *SectionUseCase) Restore(ctx context.Context, ownerID uuid.UUID) (*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sec, ok := uc.removal.Restore(p.ID)
	if !ok {
		return nil, apperror.NewNotFound("pending removal", p.ID.String())
	}

	uc.invalidate(ctx, p)
	return sec, nil
}

type BulkSectionInput struct {
	SectionType string
	Data        json.RawMessage
}

// BulkCreate inserts generated sections at onboarding completion. Payloads
// arrive in generator (legacy) shape and are stored as-is; normalization
// happens on read, migration on first edit. Types already present are
// skipped.
func (uc *SectionUseCase) BulkCreate(ctx context.Context, ownerID uuid.UUID, inputs []BulkSectionInput) ([]*section.ProfileSection, error) {
	p, err := uc.profileForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.sectionRepo.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections failed: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, s := range existing {
		present[s.Type] = true
	}

	now := time.Now().UTC()
	order := section.NextOrder(existing)
	created := make([]*section.ProfileSection, 0, len(inputs))
	for _, in := range inputs {
		sec := &section.ProfileSection{Type: in.SectionType}
		if err := sec.Validate(); err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("section type '%s' is invalid", in.SectionType), err)
		}
		if present[in.SectionType] {
			continue
		}
		present[in.SectionType] = true

		data := in.Data
		if len(data) == 0 {
			data = json.RawMessage(`{}`)
		}
		created = append(created, &section.ProfileSection{
			ID:        uuid.New(),
			ProfileID: p.ID,
			Type:      in.SectionType,
			Order:     order,
			IsVisible: true,
			Data:      data,
			CreatedAt: now,
			UpdatedAt: now,
		})
		order++
	}
	if len(created) == 0 {
		return created, nil
	}

	if err := uc.sectionRepo.SaveAll(ctx, created); err != nil {
		return nil, fmt.Errorf("bulk save sections failed: %w", err)
	}

	uc.invalidate(ctx, p)
	uc.publish(event.SectionEventPayload{
		EventType:   event.SectionEventTypeBulkCreated,
		ProfileID:   p.ID,
		ProfileSlug: p.Slug,
	})
	return created, nil
}

func (uc *SectionUseCase) invalidate(ctx context.Context, p *profile.Profile) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, p.Slug); err != nil {
		uc.logger.Warn("failed to invalidate public profile cache",
			zap.String("slug", p.Slug), zap.Error(err))
	}
}

func (uc *SectionUseCase) invalidateFor(ctx context.Context, profileID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	p, err := uc.profileRepo.FindByID(ctx, profileID)
	if err == nil {
		uc.invalidate(ctx, p)
	}
}

func (uc *SectionUseCase) publish(payload event.SectionEventPayload) {
	if uc.events == nil {
		return
	}
	go func() {
		if err := uc.events.PublishSectionEvent(context.Background(), payload); err != nil {
			uc.logger.Error("failed to publish section event (background)", err,
				zap.String("event_type", string(payload.EventType)),
				zap.String("profile_id", payload.ProfileID.String()))
		}
	}()
}
