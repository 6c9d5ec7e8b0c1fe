package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeData(t *testing.T) {
	dst := map[string]interface{}{
		"courses": map[string]interface{}{
			"go": map[string]interface{}{
				"completedLessons":  []interface{}{"l1"},
				"lastVisitedLesson": "l1",
			},
			"sql": map[string]interface{}{
				"completedLessons": []interface{}{"s1"},
			},
		},
		"owner": "u1",
	}
	src := map[string]interface{}{
		"courses": map[string]interface{}{
			"go": map[string]interface{}{
				"completedLessons": []interface{}{"l1", "l2"},
			},
		},
	}

	got := MergeData(dst, src)

	assert.Equal(t, "u1", got["owner"])
	goCourse, _ := Lookup(got, "courses.go")
	assert.Equal(t, map[string]interface{}{
		"completedLessons":  []interface{}{"l1", "l2"},
		"lastVisitedLesson": "l1",
	}, goCourse)
	sqlLessons, ok := Lookup(got, "courses.sql.completedLessons")
	assert.True(t, ok)
	assert.Equal(t, []interface{}{"s1"}, sqlLessons)
}

func TestResolveServerTimestamps(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	got := ResolveServerTimestamps(map[string]interface{}{
		"createdAt": ServerTimestamp,
		"meta":      map[string]interface{}{"seenAt": ServerTimestamp},
		"isRead":    false,
	}, now)

	assert.Equal(t, now, got["createdAt"])
	seenAt, _ := Lookup(got, "meta.seenAt")
	assert.Equal(t, now, seenAt)
	assert.Equal(t, false, got["isRead"])
}

func TestDocument_DataTo(t *testing.T) {
	type result struct {
		ID          string    `json:"id"`
		StudentName string    `json:"studentName"`
		Score       float64   `json:"score"`
		SubmittedAt time.Time `json:"submittedAt"`
	}
	submitted := time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC)
	doc := Document{
		ID: "r1",
		Data: map[string]interface{}{
			"studentName": "Jane Doe",
			"score":       int64(45),
			"submittedAt": submitted,
		},
	}

	var res result
	require.NoError(t, doc.DataTo(&res))
	assert.Equal(t, result{ID: "r1", StudentName: "Jane Doe", Score: 45, SubmittedAt: submitted}, res)
}

func TestNest(t *testing.T) {
	assert.Equal(t,
		map[string]interface{}{"courses": map[string]interface{}{"go": 1}},
		Nest("courses.go", 1),
	)
	assert.Equal(t, "learningModules/m1/chapters", CollectionPath(CollLearningModules, "m1", CollChapters))
}
