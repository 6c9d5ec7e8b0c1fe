package forms

import (
	"context"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

// Kind names a form.
type Kind string

const (
	Contact    Kind = "contact"
	Enrollment Kind = "enrollment"
	Review     Kind = "review"
)

var successMessages = map[Kind]string{
	Contact:    "Thank you for contacting us! We will get back to you soon.",
	Enrollment: "Your enrollment request has been received. We will contact you shortly.",
	Review:     "Thank you for your review! It will appear once approved.",
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

// Service stores form submissions. Submissions are not deduplicated.
type Service struct {
	store      core.DocumentStore
	email      core.EmailService
	validate   *validator.Validate
	translator ut.Translator
	staff      mail.Address
}

func NewService(
	store core.DocumentStore,
	email core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	conf *core.Config,
) *Service {
	return &Service{
		store:      store,
		email:      email,
		validate:   validate,
		translator: translator,
		staff:      conf.StaffAddress(),
	}
}

// SubmitContact stores the message and notifies the staff by email.
func (svc *Service) SubmitContact(ctx context.Context, form ContactForm) (ActionResult, error) {
	res, err := svc.submit(ctx, Contact, core.CollContacts, &form, func() map[string]interface{} { return form.data() })
	if err == nil && res.Success && svc.staff.Address != "" {
		svc.email.SendMessages(&core.EmailMessage{
			To:           []mail.Address{svc.staff},
			ReplyTo:      &mail.Address{Name: form.Name, Address: form.Email},
			Subject:      "New contact message: " + contactSubject(form),
			TemplateName: "contact_received",
			TemplateData: form,
		})
	}
	return res, err
}

func (svc *Service) SubmitEnrollment(ctx context.Context, form EnrollmentForm) (ActionResult, error) {
	return svc.submit(ctx, Enrollment, core.CollEnrollments, &form, func() map[string]interface{} { return form.data() })
}

func (svc *Service) SubmitReview(ctx context.Context, form ReviewForm) (ActionResult, error) {
	return svc.submit(ctx, Review, core.CollReviews, &form, func() map[string]interface{} { return form.data() })
}

// submit validates the form and adds it to collection. Validation failures are reported in the
// ActionResult, not as an error. data is called after validation, on the cleaned form.
func (svc *Service) submit(
	ctx context.Context,
	kind Kind,
	collection string,
	form validatable,
	data func() map[string]interface{},
) (ActionResult, error) {
	if err := form.Validate(svc.validate); err != nil {
		issues := core.ValidationIssues(err, svc.translator)
		if issues == nil {
			return ActionResult{Message: MsgFailed}, err
		}
		return ActionResult{Message: MsgFixErrors, Issues: issues}, nil
	}

	if _, err := svc.store.Add(ctx, collection, data()); err != nil {
		return ActionResult{Message: MsgFailed}, errors.Wrapf(err, "saving %s form", kind)
	}
	return ActionResult{Success: true, Message: successMessages[kind]}, nil
}

func contactSubject(form ContactForm) string {
	if form.Subject != "" {
		return form.Subject
	}
	return form.Name
}

var collections = map[Kind]string{
	Contact:    core.CollContacts,
	Enrollment: core.CollEnrollments,
	Review:     core.CollReviews,
}

var sortableFields = map[string]bool{
	"createdAt":  true,
	"name":       true,
	"course":     true,
	"isRead":     true,
	"isApproved": true,
	"rating":     true,
}

// Submission is a stored form, as saved plus its "id".
type Submission map[string]interface{}

// List returns the stored submissions of a form, newest first unless orderings say otherwise.
func (svc *Service) List(ctx context.Context, kind Kind, orderings []core.Ordering, limit int) ([]Submission, error) {
	collection, ok := collections[kind]
	if !ok {
		return nil, core.NewNotFoundError("unknown form: " + string(kind))
	}
	for _, ord := range orderings {
		if !sortableFields[ord.Field] {
			return nil, core.NewInvalidInputError("cannot order by " + ord.Field)
		}
	}
	if len(orderings) == 0 {
		orderings = []core.Ordering{{Field: "createdAt", Ascending: false}}
	}

	docs, err := svc.store.Query(ctx, core.Query{Collection: collection, Orderings: orderings, Limit: limit})
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s submissions", kind)
	}
	subs := make([]Submission, 0, len(docs))
	for _, doc := range docs {
		sub := Submission(doc.Data)
		sub["id"] = doc.ID
		subs = append(subs, sub)
	}
	return subs, nil
}
