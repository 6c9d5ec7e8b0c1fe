package progress

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

var ErrTrackerClosed = errors.New("progress tracker is closed")

// Tracker keeps a live replica of one user's progress. A new identity needs a new Tracker.
type Tracker struct {
	svc    *Service
	userID string

	// OnChange, if set before Start, is called with every new state.
	OnChange func(UserProgress)

	mu       sync.RWMutex
	progress UserProgress
	loaded   bool
	sub      core.Subscription
	closed   bool
}

func NewTracker(svc *Service, userID string) *Tracker {
	return &Tracker{svc: svc, userID: userID, progress: emptyProgress(userID)}
}

// Start subscribes to the user's progress document.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTrackerClosed
	}
	if t.sub != nil {
		return nil
	}

	sub, err := t.svc.Watch(ctx, t.userID, t.update)
	if err != nil {
		return err
	}
	t.sub = sub
	return nil
}

func (t *Tracker) update(up UserProgress) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.progress = up
	t.loaded = true
	onChange := t.OnChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(up)
	}
}

// Progress returns the latest state and whether it was received from the store yet.
func (t *Tracker) Progress() (UserProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress, t.loaded
}

func (t *Tracker) Completed(courseID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.progress.Course(courseID).CompletedLessons...)
}

func (t *Tracker) CoursePercentage(courseID string, totalLessons int) float64 {
	return Percentage(len(t.Completed(courseID)), totalLessons)
}

// Toggle writes through the store; the replica catches up from the subscription.
func (t *Tracker) Toggle(ctx context.Context, courseID, lessonID string) (CourseProgress, error) {
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return CourseProgress{}, ErrTrackerClosed
	}
	return t.svc.ToggleLesson(ctx, t.userID, courseID, lessonID)
}

// Close cancels the subscription. It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.closed = true
	t.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
