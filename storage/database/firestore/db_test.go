package firestoredb

import (
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/edusite/core"
)

func TestToFirestore(t *testing.T) {
	got := toFirestore(map[string]interface{}{
		"name":      "Jane",
		"isRead":    false,
		"createdAt": core.ServerTimestamp,
		"courses": map[string]interface{}{
			"go": map[string]interface{}{
				"completedLessons": []string{"l1"},
				"touchedAt":        core.ServerTimestamp,
			},
		},
	})

	assert.Equal(t, "Jane", got["name"])
	assert.Equal(t, false, got["isRead"])
	assert.Equal(t, firestore.ServerTimestamp, got["createdAt"])
	touched, _ := core.Lookup(got, "courses.go.touchedAt")
	assert.Equal(t, firestore.ServerTimestamp, touched)
	lessons, _ := core.Lookup(got, "courses.go.completedLessons")
	assert.Equal(t, []string{"l1"}, lessons)
}
