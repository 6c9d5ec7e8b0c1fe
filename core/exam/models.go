package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edusite/core"
)

// Registration is a student's exam registration. PlayerID targets the student's device for push notifications.
type Registration struct {
	ID                 string `json:"id"`
	StudentName        string `json:"studentName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	RegistrationNumber string `json:"registrationNumber"`
	PlayerID           string `json:"onesignal_player_id"`
}

type Result struct {
	ID                 string    `json:"id"`
	StudentName        string    `json:"studentName"`
	RegistrationNumber string    `json:"registrationNumber"`
	TestID             string    `json:"testId"`
	TestName           string    `json:"testName"`
	Score              float64   `json:"score"`
	TotalMarks         float64   `json:"totalMarks"`
	Accuracy           float64   `json:"accuracy"`
	CertificateID      string    `json:"certificateId,omitempty"`
	SubmittedAt        time.Time `json:"submittedAt"`
}

// Percentage is score/totalMarks*100 rounded to 2 decimals, 0 when totalMarks is not positive.
func (r Result) Percentage() float64 {
	return core.Percentage(r.Score, r.TotalMarks)
}

func (r Result) HasCertificate() bool {
	return r.CertificateID != ""
}

// ResultDetail is what the result page shows.
type ResultDetail struct {
	Result
	Percentage float64 `json:"percentage"`
}

func NewResultDetail(r Result) ResultDetail {
	return ResultDetail{Result: r, Percentage: r.Percentage()}
}

// LookupRequest is the result lookup form.
type LookupRequest struct {
	RegistrationNumber string `json:"registrationNumber" form:"registrationNumber" query:"registrationNumber" validate:"required,min=5"`
}

func (lr *LookupRequest) Validate(validate *validator.Validate) error {
	lr.RegistrationNumber = core.CleanString(lr.RegistrationNumber)
	return validate.Struct(lr)
}
