package exam

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/core"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
)

func TestResult_Percentage(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want float64
	}{
		{name: "45 of 50", res: Result{Score: 45, TotalMarks: 50}, want: 90.00},
		{name: "zero total marks", res: Result{Score: 45, TotalMarks: 0}, want: 0},
		{name: "rounded", res: Result{Score: 20, TotalMarks: 30}, want: 66.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Percentage())
		})
	}
}

func TestService_LatestResult(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Set(ctx, core.CollExamResults, "old", map[string]interface{}{
		"studentName": "Jane Doe", "registrationNumber": "REG-12345", "score": 30, "totalMarks": 50, "submittedAt": base,
	}, false))
	require.NoError(t, db.Set(ctx, core.CollExamResults, "new", map[string]interface{}{
		"studentName": "Jane Doe", "registrationNumber": "REG-12345", "score": 45, "totalMarks": 50, "submittedAt": base.Add(24 * time.Hour),
	}, false))

	res, err := svc.LatestResult(ctx, "REG-12345")
	require.NoError(t, err)
	assert.Equal(t, "new", res.ID)
	assert.Equal(t, 90.0, res.Percentage())
	assert.True(t, res.SubmittedAt.Equal(base.Add(24*time.Hour)))

	_, err = svc.LatestResult(ctx, "REG-00000")
	assert.Equal(t, ErrNoResultForRegNo, err)
}

func TestService_GetRegistration(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	require.NoError(t, db.Set(ctx, core.CollExamRegistrations, "s1", map[string]interface{}{
		"studentName": "Jane Doe", "onesignal_player_id": "player-1",
	}, false))

	reg, err := svc.GetRegistration(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Registration{ID: "s1", StudentName: "Jane Doe", PlayerID: "player-1"}, reg)

	_, err = svc.GetRegistration(ctx, "nope")
	assert.Equal(t, ErrRegistrationNotFound, err)

	_, err = svc.GetResult(ctx, "nope")
	assert.Equal(t, ErrResultNotFound, err)
}

func TestLookupRequest_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	lr := LookupRequest{RegistrationNumber: "  REG-1  "}
	assert.NoError(t, lr.Validate(validate))
	assert.Equal(t, "REG-1", lr.RegistrationNumber)

	short := LookupRequest{RegistrationNumber: " R12 "}
	assert.Error(t, short.Validate(validate))
}
