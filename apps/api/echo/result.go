package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/exam"
)

type resultApi struct {
	svc      *exam.Service
	badges   BadgeRenderer
	validate *validator.Validate
}

func registerResultAPI(app *echo.Echo, g *echo.Group, svc *exam.Service, badges BadgeRenderer, validate *validator.Validate) {
	api := resultApi{svc: svc, badges: badges, validate: validate}

	rg := g.Group("/results")
	rg.GET("/lookup", api.lookup)
	rg.GET("/:id", api.retrieve)
	rg.GET("/:id/badge.png", api.badge)

	// html form
	app.POST("/results/lookup", api.lookupForm)
}

type lookupResponse struct {
	ID         string `json:"id"`
	RedirectTo string `json:"redirectTo"`
}

func resultPage(id string) string {
	return "/results/" + id
}

func (api *resultApi) findLatest(ctx echo.Context) (exam.Result, error) {
	var req exam.LookupRequest
	if err := ctx.Bind(&req); err != nil {
		return exam.Result{}, errors.Wrap(err, "binding to exam.LookupRequest")
	}
	if err := req.Validate(api.validate); err != nil {
		return exam.Result{}, err
	}

	res, err := api.svc.LatestResult(ctx.Request().Context(), req.RegistrationNumber)
	if err != nil {
		if err == exam.ErrNoResultForRegNo {
			return exam.Result{}, core.NewNotFoundError(err.Error())
		}
		return exam.Result{}, err
	}
	return res, nil
}

func (api *resultApi) lookup(ctx echo.Context) error {
	res, err := api.findLatest(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lookupResponse{ID: res.ID, RedirectTo: resultPage(res.ID)})
}

func (api *resultApi) lookupForm(ctx echo.Context) error {
	res, err := api.findLatest(ctx)
	if err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, resultPage(res.ID))
}

func (api *resultApi) getResult(ctx echo.Context) (exam.Result, error) {
	res, err := api.svc.GetResult(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if err == exam.ErrResultNotFound {
			return exam.Result{}, core.NewNotFoundError(err.Error())
		}
		return exam.Result{}, err
	}
	return res, nil
}

func (api *resultApi) retrieve(ctx echo.Context) error {
	res, err := api.getResult(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exam.NewResultDetail(res))
}

func (api *resultApi) badge(ctx echo.Context) error {
	res, err := api.getResult(ctx)
	if err != nil {
		return err
	}
	img, err := api.badges.Render(ctx.Request().Context(), res)
	if err != nil {
		return errors.Wrap(err, "rendering badge")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=300")
	return ctx.Blob(http.StatusOK, "image/png", img)
}
