package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/notification"
	"github.com/trezcool/edusite/services/metrics"
)

type notificationApi struct {
	svc     *notification.Service
	metrics *metricsvc.Metrics
}

func registerNotificationAPI(g *echo.Group, svc *notification.Service, metrics *metricsvc.Metrics) {
	api := notificationApi{svc: svc, metrics: metrics}

	g.POST("/notify-student", api.notifyStudent)
}

// notifyStudent relays the push provider's answer as is when it accepted the notification.
func (api *notificationApi) notifyStudent(ctx echo.Context) error {
	var req notification.Request
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to notification.Request")
	}

	res, err := api.svc.NotifyStudent(ctx.Request().Context(), req)
	if err != nil {
		if e, ok := errors.Cause(err).(*core.Error); ok && e.Kind == core.UpstreamFailure && api.metrics != nil {
			api.metrics.NotificationSent(e.Status)
		}
		return err
	}
	if api.metrics != nil {
		api.metrics.NotificationSent(res.StatusCode)
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = echo.MIMEApplicationJSONCharsetUTF8
	}
	if len(res.Body) == 0 {
		return ctx.NoContent(res.StatusCode)
	}
	return ctx.Blob(res.StatusCode, contentType, res.Body)
}

