package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/forms"
	"github.com/trezcool/edusite/services/metrics"
)

const (
	defaultSubmissionsLimit = 50
	maxSubmissionsLimit     = 500
)

type formsApi struct {
	svc     *forms.Service
	metrics *metricsvc.Metrics
	logger  core.Logger
}

func registerFormsAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *forms.Service, metrics *metricsvc.Metrics, logger core.Logger) {
	api := formsApi{svc: svc, metrics: metrics, logger: logger}

	fg := g.Group("/forms")
	fg.POST("/contact", api.contact)
	fg.POST("/enrollment", api.enrollment)
	fg.POST("/review", api.review)

	// admin inbox
	g.GET("/admin/submissions/:form", api.submissions, auth, adminMiddleware)
}

// respond sends the ActionResult: 201 on success, 400 with issues, 500 when saving failed.
func (api *formsApi) respond(ctx echo.Context, kind forms.Kind, res forms.ActionResult, err error) error {
	if api.metrics != nil {
		api.metrics.FormSubmitted(string(kind), res.Success)
	}
	switch {
	case err != nil:
		api.logger.Error(fmt.Sprintf("submitting %s form: %v", kind, err), err)
		return ctx.JSON(http.StatusInternalServerError, forms.ActionResult{Message: forms.MsgFailed})
	case !res.Success:
		return ctx.JSON(http.StatusBadRequest, res)
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *formsApi) contact(ctx echo.Context) error {
	var form forms.ContactForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to forms.ContactForm")
	}
	res, err := api.svc.SubmitContact(ctx.Request().Context(), form)
	return api.respond(ctx, forms.Contact, res, err)
}

func (api *formsApi) enrollment(ctx echo.Context) error {
	var form forms.EnrollmentForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to forms.EnrollmentForm")
	}
	res, err := api.svc.SubmitEnrollment(ctx.Request().Context(), form)
	return api.respond(ctx, forms.Enrollment, res, err)
}

func (api *formsApi) review(ctx echo.Context) error {
	var form forms.ReviewForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to forms.ReviewForm")
	}
	res, err := api.svc.SubmitReview(ctx.Request().Context(), form)
	return api.respond(ctx, forms.Review, res, err)
}

func (api *formsApi) submissions(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)
	limit, err := bindLimit(ctx, defaultSubmissionsLimit, maxSubmissionsLimit)
	if err != nil {
		return err
	}

	subs, err := api.svc.List(ctx.Request().Context(), forms.Kind(ctx.Param("form")), ord.Orderings, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}
