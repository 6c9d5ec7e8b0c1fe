package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zaptest"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
	"github.com/trezcool/edusite/services/logger"
)

// NewLogger returns a logger writing to the test's output, with rollbar disabled.
func NewLogger(t *testing.T) core.Logger {
	return logsvc.NewRollbarLogger(zaptest.NewLogger(t).Sugar(), core.NewTestConfig())
}

// NewValidator returns a validator with every custom rule and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func Seed(t *testing.T, store core.DocumentStore, collection, id string, data map[string]interface{}) {
	t.Helper()
	if err := store.Set(context.Background(), collection, id, data, false); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
}

func SeedRegistration(t *testing.T, store core.DocumentStore, id, name, regNo, playerID string) {
	data := map[string]interface{}{
		"studentName":        name,
		"email":              "student@test.local",
		"phone":              "9876543210",
		"registrationNumber": regNo,
	}
	if playerID != "" {
		data["onesignal_player_id"] = playerID
	}
	Seed(t, store, core.CollExamRegistrations, id, data)
}

func SeedResult(
	t *testing.T,
	store core.DocumentStore,
	id, name, regNo, certID string,
	score, totalMarks float64,
	submittedAt time.Time,
) {
	data := map[string]interface{}{
		"studentName":        name,
		"registrationNumber": regNo,
		"testId":             "t1",
		"testName":           "Computer Fundamentals",
		"score":              score,
		"totalMarks":         totalMarks,
		"accuracy":           score / totalMarks * 100,
	}
	if totalMarks == 0 {
		data["accuracy"] = 0.0
	}
	if certID != "" {
		data["certificateId"] = certID
	}
	if !submittedAt.IsZero() {
		data["submittedAt"] = submittedAt
	}
	Seed(t, store, core.CollExamResults, id, data)
}
