package section

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/pkg/logger"
)

func newTestBuffer(grace time.Duration) (*RemovalBuffer, chan *section.ProfileSection) {
	committed := make(chan *section.ProfileSection, 8)
	buf := NewRemovalBuffer(grace, func(sec *section.ProfileSection) {
		committed <- sec
	}, logger.NewNop())
	return buf, committed
}

func pendingSection(profileID uuid.UUID) *section.ProfileSection {
	return &section.ProfileSection{
		ID:        uuid.New(),
		ProfileID: profileID,
		Type:      section.TypeTestimonials,
	}
}

func waitCommitted(t *testing.T, ch chan *section.ProfileSection) *section.ProfileSection {
	t.Helper()
	select {
	case sec := <-ch:
		return sec
	case <-time.After(2 * time.Second):
		t.Fatal("expected a committed removal, got none")
		return nil
	}
}

func assertNoCommit(t *testing.T, ch chan *section.ProfileSection, within time.Duration) {
	t.Helper()
	select {
	case sec := <-ch:
		t.Fatalf("unexpected commit of section %s", sec.ID)
	case <-time.After(within):
	}
}

func TestRemovalBuffer_CommitsAfterGrace(t *testing.T) {
	buf, committed := newTestBuffer(30 * time.Millisecond)
	profileID := uuid.New()
	sec := pendingSection(profileID)

	buf.Remove(sec)

	pendingID, ok := buf.Pending(profileID)
	require.True(t, ok)
	assert.Equal(t, sec.ID, pendingID)

	got := waitCommitted(t, committed)
	assert.Equal(t, sec.ID, got.ID)

	_, ok = buf.Pending(profileID)
	assert.False(t, ok)
}

func TestRemovalBuffer_RestoreCancelsCommit(t *testing.T) {
	buf, committed := newTestBuffer(40 * time.Millisecond)
	profileID := uuid.New()
	sec := pendingSection(profileID)

	buf.Remove(sec)

	restored, ok := buf.Restore(profileID)
	require.True(t, ok)
	assert.Equal(t, sec.ID, restored.ID)

	assertNoCommit(t, committed, 200*time.Millisecond)

	_, ok = buf.Pending(profileID)
	assert.False(t, ok)
}

func TestRemovalBuffer_RestoreWithNothingPending(t *testing.T) {
	buf, _ := newTestBuffer(time.Second)

	_, ok := buf.Restore(uuid.New())
	assert.False(t, ok)
}

func TestRemovalBuffer_SecondRemovalFlushesFirst(t *testing.T) {
	buf, committed := newTestBuffer(time.Hour)
	profileID := uuid.New()
	first := pendingSection(profileID)
	second := pendingSection(profileID)

	buf.Remove(first)
	buf.Remove(second)

	// the first removal commits immediately, not on its timer
	got := waitCommitted(t, committed)
	assert.Equal(t, first.ID, got.ID)

	// only the second stays pending, and it is still restorable
	pendingID, ok := buf.Pending(profileID)
	require.True(t, ok)
	assert.Equal(t, second.ID, pendingID)

	restored, ok := buf.Restore(profileID)
	require.True(t, ok)
	assert.Equal(t, second.ID, restored.ID)
}

func TestRemovalBuffer_ProfilesHaveIndependentSlots(t *testing.T) {
	buf, committed := newTestBuffer(time.Hour)
	profileA := uuid.New()
	profileB := uuid.New()

	buf.Remove(pendingSection(profileA))
	buf.Remove(pendingSection(profileB))

	// no flush: each profile gets its own slot
	assertNoCommit(t, committed, 100*time.Millisecond)

	_, okA := buf.Pending(profileA)
	_, okB := buf.Pending(profileB)
	assert.True(t, okA)
	assert.True(t, okB)
}

func TestRemovalBuffer_FlushAll(t *testing.T) {
	buf, committed := newTestBuffer(time.Hour)
	profileA := uuid.New()
	profileB := uuid.New()

	buf.Remove(pendingSection(profileA))
	buf.Remove(pendingSection(profileB))

	buf.FlushAll()

	waitCommitted(t, committed)
	waitCommitted(t, committed)

	_, okA := buf.Pending(profileA)
	_, okB := buf.Pending(profileB)
	assert.False(t, okA)
	assert.False(t, okB)
}
