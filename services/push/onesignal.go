package pushsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/notification"
)

var endpoint = "/api/v1/notifications"

type oneSignalPayload struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	URL              string            `json:"url,omitempty"`
}

// OneSignal sends push notifications through the OneSignal REST API.
type OneSignal struct {
	client *rest.Client
}

var _ notification.Pusher = (*OneSignal)(nil)

func NewOneSignal(httpClient *http.Client) *OneSignal {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OneSignal{client: &rest.Client{HTTPClient: httpClient}}
}

func (svc *OneSignal) Push(ctx context.Context, creds core.PushCredentials, n notification.Notification) (notification.Response, error) {
	body, err := json.Marshal(oneSignalPayload{
		AppID:            creds.AppID,
		IncludePlayerIDs: n.PlayerIDs,
		Headings:         map[string]string{"en": n.Title},
		Contents:         map[string]string{"en": n.Message},
		URL:              n.URL,
	})
	if err != nil {
		return notification.Response{}, errors.Wrap(err, "encoding notification")
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: creds.BaseURL + endpoint,
		Headers: map[string]string{
			"Authorization": "Basic " + creds.APIKey,
			"Content-Type":  "application/json; charset=utf-8",
			"Accept":        "application/json",
		},
		Body: body,
	}
	res, err := svc.client.SendWithContext(ctx, req)
	if err != nil {
		return notification.Response{}, errors.Wrap(err, "sending notification")
	}

	contentType := "application/json"
	if ct, ok := res.Headers["Content-Type"]; ok && len(ct) > 0 {
		contentType = ct[0]
	}
	return notification.Response{
		StatusCode:  res.StatusCode,
		ContentType: contentType,
		Body:        []byte(res.Body),
	}, nil
}
