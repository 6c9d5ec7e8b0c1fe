package forms

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edusite/core"
)

const (
	MsgFixErrors = "Please fix the errors below."
	MsgFailed    = "Something went wrong. Please try again later."
)

// ActionResult is the outcome of a form submission, as shown back to the visitor.
type ActionResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Issues  map[string]string `json:"issues,omitempty"`
}

type ContactForm struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Phone   string `json:"phone" form:"phone" validate:"omitempty,len=10,digits"`
	Subject string `json:"subject" form:"subject" validate:"omitempty,max=150"`
	Message string `json:"message" form:"message" validate:"required,min=10,max=2000"`
}

func (f *ContactForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email)
	f.Phone = core.CleanString(f.Phone)
	f.Subject = core.CleanString(f.Subject)
	f.Message = core.CleanString(f.Message)
	return validate.Struct(f)
}

func (f ContactForm) data() map[string]interface{} {
	return map[string]interface{}{
		"name":      f.Name,
		"email":     f.Email,
		"phone":     f.Phone,
		"subject":   f.Subject,
		"message":   f.Message,
		"isRead":    false,
		"createdAt": core.ServerTimestamp,
	}
}

type EnrollmentForm struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Phone   string `json:"phone" form:"phone" validate:"required,len=10,digits"`
	Course  string `json:"course" form:"course" validate:"required"`
	Message string `json:"message" form:"message" validate:"omitempty,max=2000"`
}

func (f *EnrollmentForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email)
	f.Phone = core.CleanString(f.Phone)
	f.Course = core.CleanString(f.Course)
	f.Message = core.CleanString(f.Message)
	return validate.Struct(f)
}

func (f EnrollmentForm) data() map[string]interface{} {
	return map[string]interface{}{
		"name":      f.Name,
		"email":     f.Email,
		"phone":     f.Phone,
		"course":    f.Course,
		"message":   f.Message,
		"isRead":    false,
		"createdAt": core.ServerTimestamp,
	}
}

type ReviewForm struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Course  string `json:"course" form:"course" validate:"required"`
	Rating  int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment" validate:"required,min=10,max=1000"`
}

func (f *ReviewForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Course = core.CleanString(f.Course)
	f.Comment = core.CleanString(f.Comment)
	return validate.Struct(f)
}

func (f ReviewForm) data() map[string]interface{} {
	return map[string]interface{}{
		"name":       f.Name,
		"course":     f.Course,
		"rating":     f.Rating,
		"comment":    f.Comment,
		"isApproved": false,
		"createdAt":  core.ServerTimestamp,
	}
}
