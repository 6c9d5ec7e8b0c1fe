package notification

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/exam"
)

type (
	// Pusher delivers push notifications through a provider.
	// A non-2xx provider answer is not an error: it is returned as a Response.
	Pusher interface {
		Push(ctx context.Context, creds core.PushCredentials, n Notification) (Response, error)
	}

	// CredentialsSource yields the current push credentials.
	CredentialsSource interface {
		PushCredentials() core.PushCredentials
	}

	RegistrationGetter interface {
		GetRegistration(ctx context.Context, id string) (exam.Registration, error)
	}

	Service struct {
		registrations RegistrationGetter
		pusher        Pusher
		creds         CredentialsSource
		validate      *validator.Validate
		siteBaseURL   string
	}
)

func NewService(
	registrations RegistrationGetter,
	pusher Pusher,
	creds CredentialsSource,
	validate *validator.Validate,
	siteBaseURL string,
) *Service {
	return &Service{
		registrations: registrations,
		pusher:        pusher,
		creds:         creds,
		validate:      validate,
		siteBaseURL:   siteBaseURL,
	}
}

// NotifyStudent sends a push notification to the student's registered device.
// Checks run in order: payload, student, device, credentials; the provider is only called once all pass.
func (svc *Service) NotifyStudent(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Response{}, err
	}

	reg, err := svc.registrations.GetRegistration(ctx, req.StudentID)
	if err != nil {
		if errors.Cause(err) == exam.ErrRegistrationNotFound {
			return Response{}, core.NewNotFoundError("student not found")
		}
		return Response{}, errors.Wrap(err, "getting registration")
	}
	playerID := core.CleanString(reg.PlayerID)
	if playerID == "" {
		return Response{}, core.NewNotFoundError("student has no registered device")
	}

	creds := svc.creds.PushCredentials()
	if creds.AppID == "" || creds.APIKey == "" {
		return Response{}, core.NewServerConfigError("push notification credentials are not configured")
	}

	res, err := svc.pusher.Push(ctx, creds, Notification{
		PlayerIDs: []string{playerID},
		Title:     req.Title,
		Message:   req.Message,
		URL:       svc.siteBaseURL,
	})
	if err != nil {
		return Response{}, core.NewUpstreamError("push provider unreachable", 0, nil, err)
	}
	if !res.OK() {
		return Response{}, core.NewUpstreamError("push provider rejected the notification", res.StatusCode, details(res.Body), nil)
	}
	return res, nil
}

// details returns the provider body as JSON when possible, as text otherwise.
func details(body []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
