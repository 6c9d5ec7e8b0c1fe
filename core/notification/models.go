package notification

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edusite/core"
)

// Request asks for a push notification to a registered student.
type Request struct {
	StudentID string `json:"studentId" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

func (r *Request) Validate(validate *validator.Validate) error {
	r.StudentID = core.CleanString(r.StudentID)
	r.Title = core.CleanString(r.Title)
	r.Message = core.CleanString(r.Message)
	return validate.Struct(r)
}

// Notification is what gets handed to the push provider.
type Notification struct {
	PlayerIDs []string
	Title     string
	Message   string
	URL       string
}

// Response is the push provider's raw answer.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
