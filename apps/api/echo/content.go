package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/content"
)

type contentApi struct {
	svc *content.Service
}

func registerContentAPI(g *echo.Group, svc *content.Service) {
	api := contentApi{svc: svc}

	g.GET("/courses", api.listCourses)
	g.GET("/courses/:slug", api.retrieveCourse)
	g.GET("/resources", api.listResources)
	g.GET("/blog", api.listPosts)
	g.GET("/blog/:slug", api.retrievePost)
	g.GET("/reviews", api.listReviews)
	g.GET("/modules", api.listModules)
	g.GET("/modules/:id", api.moduleTree)
	g.GET("/settings", api.settings)
}

// notFound turns the service's sentinel errors into 404s.
func notFound(err error, sentinels ...error) error {
	for _, s := range sentinels {
		if err == s {
			return core.NewNotFoundError(err.Error())
		}
	}
	return err
}

func (api *contentApi) listCourses(ctx echo.Context) error {
	courses, err := api.svc.ListCourses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *contentApi) retrieveCourse(ctx echo.Context) error {
	course, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return notFound(err, content.ErrCourseNotFound)
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *contentApi) listResources(ctx echo.Context) error {
	resources, err := api.svc.ListResources(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *contentApi) listPosts(ctx echo.Context) error {
	posts, err := api.svc.ListPosts(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *contentApi) retrievePost(ctx echo.Context) error {
	post, err := api.svc.GetPost(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return notFound(err, content.ErrPostNotFound)
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *contentApi) listReviews(ctx echo.Context) error {
	reviews, err := api.svc.ListApprovedReviews(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *contentApi) listModules(ctx echo.Context) error {
	modules, err := api.svc.ListModules(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *contentApi) moduleTree(ctx echo.Context) error {
	module, err := api.svc.ModuleTree(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return notFound(err, content.ErrModuleNotFound)
	}
	return ctx.JSON(http.StatusOK, module)
}

func (api *contentApi) settings(ctx echo.Context) error {
	settings, err := api.svc.Settings(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}
