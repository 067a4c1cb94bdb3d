package section

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/khoaphan/careerframe/internal/domain/profile"
	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/pkg/apperror"
	"github.com/khoaphan/careerframe/pkg/logger"
)

// fakeSectionRepo is an in-memory section.Repository for use case tests.
type fakeSectionRepo struct {
	mu       sync.Mutex
	sections map[uuid.UUID]*section.ProfileSection
	deleted  []uuid.UUID
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: make(map[uuid.UUID]*section.ProfileSection)}
}

func (r *fakeSectionRepo) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*section.ProfileSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*section.ProfileSection, 0)
	for _, s := range r.sections {
		if s.ProfileID == profileID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return section.SortByOrder(out), nil
}

func (r *fakeSectionRepo) FindByID(_ context.Context, profileID, id uuid.UUID) (*section.ProfileSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[id]
	if !ok || s.ProfileID != profileID {
		return nil, section.ErrSectionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSectionRepo) FindByType(_ context.Context, profileID uuid.UUID, sectionType string) (*section.ProfileSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sections {
		if s.ProfileID == profileID && s.Type == sectionType {
			clone := *s
			return &clone, nil
		}
	}
	return nil, section.ErrSectionNotFound
}

func (r *fakeSectionRepo) Save(_ context.Context, s *section.ProfileSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.sections[s.ID] = &clone
	return nil
}

func (r *fakeSectionRepo) SaveAll(ctx context.Context, sections []*section.ProfileSection) error {
	for _, s := range sections {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSectionRepo) Update(_ context.Context, s *section.ProfileSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[s.ID]; !ok {
		return section.ErrSectionNotFound
	}
	clone := *s
	r.sections[s.ID] = &clone
	return nil
}

func (r *fakeSectionRepo) UpdateOrders(_ context.Context, profileID uuid.UUID, orders map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, order := range orders {
		if s, ok := r.sections[id]; ok && s.ProfileID == profileID {
			s.Order = order
		}
	}
	return nil
}

func (r *fakeSectionRepo) Delete(_ context.Context, profileID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[id]
	if !ok || s.ProfileID != profileID {
		return section.ErrSectionNotFound
	}
	delete(r.sections, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeSectionRepo) deletedIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.deleted...)
}

type fakeProfileRepo struct {
	profile *profile.Profile
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if r.profile == nil || r.profile.ID != id {
		return nil, profile.ErrProfileNotFound
	}
	return r.profile, nil
}

func (r *fakeProfileRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	if r.profile == nil || r.profile.OwnerID != ownerID {
		return nil, profile.ErrProfileNotFound
	}
	return r.profile, nil
}

func (r *fakeProfileRepo) FindBySlug(_ context.Context, slug string) (*profile.Profile, error) {
	if r.profile == nil || r.profile.Slug != slug {
		return nil, profile.ErrProfileNotFound
	}
	return r.profile, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *profile.Profile) error {
	r.profile = p
	return nil
}

func (r *fakeProfileRepo) SearchPublished(_ context.Context, _ string, _ int) ([]*profile.Profile, error) {
	return nil, nil
}

type usecaseFixture struct {
	uc          *SectionUseCase
	sectionRepo *fakeSectionRepo
	ownerID     uuid.UUID
	profileID   uuid.UUID
}

func newFixture(t *testing.T, removalGrace time.Duration) *usecaseFixture {
	t.Helper()
	ownerID := uuid.New()
	p := &profile.Profile{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Slug:    "test-owner",
	}
	sectionRepo := newFakeSectionRepo()
	uc := NewSectionUseCase(sectionRepo, &fakeProfileRepo{profile: p}, nil, nil, removalGrace, logger.NewNop())
	return &usecaseFixture{uc: uc, sectionRepo: sectionRepo, ownerID: ownerID, profileID: p.ID}
}

func (f *usecaseFixture) seed(t *testing.T, sectionType string, order int, data string) *section.ProfileSection {
	t.Helper()
	s := &section.ProfileSection{
		ID:        uuid.New(),
		ProfileID: f.profileID,
		Type:      sectionType,
		Order:     order,
		IsVisible: true,
		Data:      json.RawMessage(data),
	}
	require.NoError(t, f.sectionRepo.Save(context.Background(), s))
	return s
}

func TestAdd_NewSection(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	sec, err := f.uc.Add(ctx, AddSectionInput{OwnerID: f.ownerID, SectionType: section.TypeTimeline})
	require.NoError(t, err)

	assert.Equal(t, section.TypeTimeline, sec.Type)
	assert.Equal(t, 1, sec.Order)
	assert.True(t, sec.IsVisible)
	assert.JSONEq(t, `{}`, string(sec.Data))
}

func TestAdd_ExistingTypeIsNoOp(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	existing := f.seed(t, section.TypeTimeline, 1, `{"timeline": [{"role": "PM"}]}`)

	sec, err := f.uc.Add(ctx, AddSectionInput{OwnerID: f.ownerID, SectionType: section.TypeTimeline})
	require.NoError(t, err)

	// same section back, data untouched
	assert.Equal(t, existing.ID, sec.ID)
	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAdd_InvalidType(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.uc.Add(context.Background(), AddSectionInput{OwnerID: f.ownerID, SectionType: "Bad Type"})

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestEdit_CanonicalizesBeforeStore(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	sec := f.seed(t, section.TypeCaseStudies, 1, `{"case_studies": [{"title": "Old"}]}`)

	// the editor resubmits the document with the legacy key still present
	updated, err := f.uc.Edit(ctx, EditSectionInput{
		OwnerID:   f.ownerID,
		SectionID: sec.ID,
		Data:      json.RawMessage(`{"case_studies": [{"title": "A"}, {"title": "B"}]}`),
	})
	require.NoError(t, err)

	doc := gjson.ParseBytes(updated.Data)
	assert.False(t, doc.Get("case_studies").Exists())
	assert.Len(t, doc.Get("items").Array(), 2)

	stored, err := f.sectionRepo.FindByID(ctx, f.profileID, sec.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(updated.Data), string(stored.Data))
}

func TestEdit_UnknownSection(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.uc.Edit(context.Background(), EditSectionInput{
		OwnerID:   f.ownerID,
		SectionID: uuid.New(),
		Data:      json.RawMessage(`{}`),
	})

	assert.ErrorIs(t, err, section.ErrSectionNotFound)
}

func TestToggleVisibility(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	sec := f.seed(t, section.TypeLanguages, 1, `{"languages": [{"language": "German"}]}`)

	toggled, err := f.uc.ToggleVisibility(ctx, f.ownerID, sec.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsVisible)
	// data survives hiding
	assert.JSONEq(t, string(sec.Data), string(toggled.Data))

	toggled, err = f.uc.ToggleVisibility(ctx, f.ownerID, sec.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsVisible)
}

func TestMove_SwapsWithNeighbor(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	hero := f.seed(t, section.TypeHero, 1, `{}`)
	timeline := f.seed(t, section.TypeTimeline, 2, `{}`)
	skills := f.seed(t, section.TypeSkillsMatrix, 3, `{}`)

	require.NoError(t, f.uc.Move(ctx, f.ownerID, skills.ID, MoveUp))

	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, hero.ID, list[0].ID)
	assert.Equal(t, skills.ID, list[1].ID)
	assert.Equal(t, timeline.ID, list[2].ID)
}

func TestMove_PastBoundaryIsNoOp(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	hero := f.seed(t, section.TypeHero, 1, `{}`)
	f.seed(t, section.TypeTimeline, 2, `{}`)

	require.NoError(t, f.uc.Move(ctx, f.ownerID, hero.ID, MoveUp))

	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, hero.ID, list[0].ID)
}

func TestMove_UnknownSection(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.seed(t, section.TypeHero, 1, `{}`)

	err := f.uc.Move(context.Background(), f.ownerID, uuid.New(), MoveDown)

	assert.ErrorIs(t, err, section.ErrSectionNotFound)
}

func TestReorder_FollowsSubmittedOrder(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	a := f.seed(t, section.TypeHero, 1, `{}`)
	b := f.seed(t, section.TypeTimeline, 2, `{}`)
	c := f.seed(t, section.TypeLanguages, 3, `{}`)

	require.NoError(t, f.uc.Reorder(ctx, f.ownerID, []uuid.UUID{c.ID, a.ID, b.ID}))

	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, b.ID, list[2].ID)
}

func TestReorder_UnlistedSectionsKeepRelativeOrderAtEnd(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	a := f.seed(t, section.TypeHero, 1, `{}`)
	b := f.seed(t, section.TypeTimeline, 2, `{}`)
	c := f.seed(t, section.TypeLanguages, 3, `{}`)

	require.NoError(t, f.uc.Reorder(ctx, f.ownerID, []uuid.UUID{c.ID}))

	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, b.ID, list[2].ID)
}

func TestReorder_RejectsForeignAndDuplicateIDs(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	a := f.seed(t, section.TypeHero, 1, `{}`)

	err := f.uc.Reorder(ctx, f.ownerID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	err = f.uc.Reorder(ctx, f.ownerID, []uuid.UUID{a.ID, a.ID})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRemove_HidesImmediatelyPersistsAfterGrace(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	ctx := context.Background()
	sec := f.seed(t, section.TypeTestimonials, 1, `{}`)

	require.NoError(t, f.uc.Remove(ctx, f.ownerID, sec.ID))

	// gone from the owner list right away, before the delete is persisted
	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Eventually(t, func() bool {
		return len(f.sectionRepo.deletedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, sec.ID, f.sectionRepo.deletedIDs()[0])
}

func TestRemove_CoreSectionRejected(t *testing.T) {
	f := newFixture(t, time.Hour)
	sec := f.seed(t, section.TypeHero, 1, `{}`)

	err := f.uc.Remove(context.Background(), f.ownerID, sec.ID)

	assert.ErrorIs(t, err, apperror.ErrPermission)
	assert.Empty(t, f.sectionRepo.deletedIDs())
}

func TestRestore_WithinGraceWindow(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	sec := f.seed(t, section.TypeTestimonials, 2, `{"testimonials": [{"author": "X"}]}`)
	f.seed(t, section.TypeHero, 1, `{}`)

	require.NoError(t, f.uc.Remove(ctx, f.ownerID, sec.ID))

	restored, err := f.uc.Restore(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, sec.ID, restored.ID)
	assert.Equal(t, 2, restored.Order)

	// back in the list at its old position, nothing was deleted
	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, sec.ID, list[1].ID)
	assert.Empty(t, f.sectionRepo.deletedIDs())
}

func TestRestore_NothingPending(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.uc.Restore(context.Background(), f.ownerID)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestShutdown_FlushesPendingRemoval(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	sec := f.seed(t, section.TypeTestimonials, 1, `{}`)

	require.NoError(t, f.uc.Remove(ctx, f.ownerID, sec.ID))
	f.uc.Shutdown()

	require.Len(t, f.sectionRepo.deletedIDs(), 1)
	assert.Equal(t, sec.ID, f.sectionRepo.deletedIDs()[0])
}

func TestBulkCreate_SkipsPresentTypes(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	f.seed(t, section.TypeHero, 1, `{"name": "Ada"}`)

	created, err := f.uc.BulkCreate(ctx, f.ownerID, []BulkSectionInput{
		{SectionType: section.TypeHero, Data: json.RawMessage(`{"name": "Generated"}`)},
		{SectionType: section.TypeCaseStudies, Data: json.RawMessage(`{"case_studies": [{"title": "A"}]}`)},
		{SectionType: section.TypeTimeline},
	})
	require.NoError(t, err)

	require.Len(t, created, 2)
	assert.Equal(t, section.TypeCaseStudies, created[0].Type)
	assert.Equal(t, 2, created[0].Order)
	assert.Equal(t, section.TypeTimeline, created[1].Type)
	assert.Equal(t, 3, created[1].Order)
	// generator payloads are stored as-is, migration happens on first edit
	assert.JSONEq(t, `{"case_studies": [{"title": "A"}]}`, string(created[0].Data))
	assert.JSONEq(t, `{}`, string(created[1].Data))

	list, err := f.uc.List(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
