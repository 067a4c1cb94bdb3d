package section

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoaphan/careerframe/internal/domain/section"
	"github.com/khoaphan/careerframe/pkg/logger"
)

// RemovalBuffer is the deferred-delete state machine. Per profile it is
// either idle or holds exactly one pending removal; a second removal commits
// the first synchronously before its own timer is armed, so deferred deletes
// never pile up. Restoring within the grace window is purely local since the
// persisted delete has not happened yet.
type RemovalBuffer struct {
	mu      sync.Mutex
	grace   time.Duration
	commit  func(sec *section.ProfileSection)
	logger  logger.Logger
	pending map[uuid.UUID]*pendingRemoval
}

type pendingRemoval struct {
	section  *section.ProfileSection
	timer    *time.Timer
	deadline time.Time
}

// NewRemovalBuffer wires the buffer to a commit function that persists the
// deletion. Commit runs fire-and-forget: its failures are the commit
// function's to log, never the caller's to see.
func NewRemovalBuffer(grace time.Duration, commit func(sec *section.ProfileSection), log logger.Logger) *RemovalBuffer {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &RemovalBuffer{
		grace:   grace,
		commit:  commit,
		logger:  log,
		pending: make(map[uuid.UUID]*pendingRemoval),
	}
}

// Remove parks the section in the pending slot and arms the grace timer. If
// the slot is already taken, the earlier removal is committed first.
func (b *RemovalBuffer) Remove(sec *section.ProfileSection) {
	b.mu.Lock()
	if prev, ok := b.pending[sec.ProfileID]; ok {
		prev.timer.Stop()
		delete(b.pending, sec.ProfileID)
		b.commit(prev.section)
	}

	p := &pendingRemoval{
		section:  sec,
		deadline: time.Now().Add(b.grace),
	}
	p.timer = time.AfterFunc(b.grace, func() {
		b.expire(sec.ProfileID, sec.ID)
	})
	b.pending[sec.ProfileID] = p
	b.mu.Unlock()

	b.logger.Info("section removal pending",
		zap.String("section_id", sec.ID.String()),
		zap.String("section_type", sec.Type),
		zap.Duration("grace", b.grace))
}

func (b *RemovalBuffer) expire(profileID, sectionID uuid.UUID) {
	b.mu.Lock()
	p, ok := b.pending[profileID]
	if !ok || p.section.ID != sectionID {
		// restored or flushed before the timer fired
		b.mu.Unlock()
		return
	}
	delete(b.pending, profileID)
	b.mu.Unlock()

	b.commit(p.section)
}

// Restore cancels the pending removal for the profile, returning the buffered
// section so the caller can put it back in view at its original order.
func (b *RemovalBuffer) Restore(profileID uuid.UUID) (*section.ProfileSection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[profileID]
	if !ok {
		return nil, false
	}
	p.timer.Stop()
	delete(b.pending, profileID)
	return p.section, true
}

// Pending returns the id of the section currently buffered for the profile,
// if any. List reads use it to keep the optimistic removal in effect.
func (b *RemovalBuffer) Pending(profileID uuid.UUID) (uuid.UUID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[profileID]
	if !ok {
		return uuid.Nil, false
	}
	return p.section.ID, true
}

// FlushAll commits every pending removal immediately. Called on shutdown so
// deferred deletes are not silently lost.
func (b *RemovalBuffer) FlushAll() {
	b.mu.Lock()
	flushed := make([]*pendingRemoval, 0, len(b.pending))
	for profileID, p := range b.pending {
		p.timer.Stop()
		flushed = append(flushed, p)
		delete(b.pending, profileID)
	}
	b.mu.Unlock()

	for _, p := range flushed {
		b.commit(p.section)
	}
}
