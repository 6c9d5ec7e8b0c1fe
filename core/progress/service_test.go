package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/edusite/core"
	logsvc "github.com/trezcool/edusite/services/logger"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
	testutil "github.com/trezcool/edusite/tests"
)

func TestService_ToggleLesson(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db, testutil.NewLogger(t))

	up, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", up.UserID)
	assert.Empty(t, up.Courses)
	assert.Equal(t, []string{}, up.Course("go").CompletedLessons)

	cp, err := svc.ToggleLesson(ctx, "u1", "go", "l1")
	require.NoError(t, err)
	assert.Equal(t, CourseProgress{CompletedLessons: []string{"l1"}, LastVisitedLesson: "l1"}, cp)

	cp, err = svc.ToggleLesson(ctx, "u1", "go", "l2")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, cp.CompletedLessons)
	assert.Equal(t, "l2", cp.LastVisitedLesson)

	// another course is left alone
	_, err = svc.ToggleLesson(ctx, "u1", "sql", "s1")
	require.NoError(t, err)

	// toggling again removes it; last visited stays
	cp, err = svc.ToggleLesson(ctx, "u1", "go", "l2")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, cp.CompletedLessons)
	assert.Equal(t, "l2", cp.LastVisitedLesson)

	up, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, up.Course("go").CompletedLessons)
	assert.Equal(t, "l2", up.Course("go").LastVisitedLesson)
	assert.Equal(t, []string{"s1"}, up.Course("sql").CompletedLessons)
	require.NotNil(t, up.UpdatedAt)
}

func TestService_ToggleLesson_twiceRestores(t *testing.T) {
	ctx := context.Background()
	svc := NewService(inmemdb.NewDB(), testutil.NewLogger(t))

	for _, l := range []string{"a", "b", "c"} {
		_, err := svc.ToggleLesson(ctx, "u1", "go", l)
		require.NoError(t, err)
	}
	before, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.ToggleLesson(ctx, "u1", "go", "b")
		require.NoError(t, err)
	}
	after, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, before.Course("go").CompletedLessons, after.Course("go").CompletedLessons)
}

func TestService_invalidIDs(t *testing.T) {
	ctx := context.Background()
	svc := NewService(inmemdb.NewDB(), testutil.NewLogger(t))

	tests := []struct {
		name                       string
		userID, courseID, lessonID string
	}{
		{"blank user", " ", "go", "l1"},
		{"blank course", "u1", "", "l1"},
		{"dotted course", "u1", "go.basics", "l1"},
		{"slash in lesson", "u1", "go", "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleLesson(ctx, tt.userID, tt.courseID, tt.lessonID)
			assert.Equal(t, core.InvalidInput, core.KindOf(err))
		})
	}
}

func TestService_Watch_undecodable(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	zc, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(db, logsvc.NewRollbarLogger(zap.New(zc).Sugar(), core.NewTestConfig()))

	var mu sync.Mutex
	var seen []UserProgress
	sub, err := svc.Watch(ctx, "u1", func(up UserProgress) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, up)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, db.Set(ctx, core.CollUserProgress, "u1", map[string]interface{}{"courses": "broken"}, false))

	assert.Eventually(t, func() bool {
		return logs.FilterMessageSnippet("decoding progress of u1").Len() == 1
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{4, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.completed, tt.total))
	}
}
