package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
	testutil "github.com/trezcool/edusite/tests"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db, testutil.NewLogger(t))

	var mu sync.Mutex
	var changes int
	tracker := NewTracker(svc, "u1")
	tracker.OnChange = func(UserProgress) {
		mu.Lock()
		changes++
		mu.Unlock()
	}
	require.NoError(t, tracker.Start(ctx))
	require.NoError(t, tracker.Start(ctx)) // no second subscription
	assert.Equal(t, 1, db.Subscriptions())

	assert.Eventually(t, func() bool {
		_, loaded := tracker.Progress()
		return loaded
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, tracker.Completed("go"))

	_, err := tracker.Toggle(ctx, "go", "l1")
	require.NoError(t, err)
	// a write from elsewhere shows up too
	_, err = svc.ToggleLesson(ctx, "u1", "go", "l2")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(tracker.Completed("go")) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 50.0, tracker.CoursePercentage("go", 4))
	assert.Equal(t, 0.0, tracker.CoursePercentage("go", 0))

	mu.Lock()
	assert.GreaterOrEqual(t, changes, 2)
	mu.Unlock()

	tracker.Close()
	tracker.Close()
	assert.Equal(t, 0, db.Subscriptions())

	_, err = tracker.Toggle(ctx, "go", "l3")
	assert.Equal(t, ErrTrackerClosed, err)
	assert.Equal(t, ErrTrackerClosed, tracker.Start(ctx))
}

func TestTracker_identityChange(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db, testutil.NewLogger(t))

	_, err := svc.ToggleLesson(ctx, "u2", "go", "x")
	require.NoError(t, err)

	first := NewTracker(svc, "u1")
	require.NoError(t, first.Start(ctx))
	first.Close()

	second := NewTracker(svc, "u2")
	require.NoError(t, second.Start(ctx))
	defer second.Close()

	assert.Equal(t, 1, db.Subscriptions())
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"x"}, second.Completed("go"))
	}, time.Second, 5*time.Millisecond)
}
