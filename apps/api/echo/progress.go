package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/progress"
)

var heartbeatInterval = 25 * time.Second

type progressApi struct {
	svc    *progress.Service
	logger core.Logger
}

func registerProgressAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *progress.Service, logger core.Logger) {
	api := progressApi{svc: svc, logger: logger}

	pg := g.Group("/progress", auth)
	pg.GET("", api.retrieve)
	pg.GET("/stream", api.stream)
	pg.POST("/:courseId/lessons/:lessonId/toggle", api.toggle)
	pg.GET("/:courseId/percentage", api.percentage)
}

func (api *progressApi) retrieve(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	up, err := api.svc.Get(ctx.Request().Context(), usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, up)
}

func (api *progressApi) toggle(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	cp, err := api.svc.ToggleLesson(ctx.Request().Context(), usr.ID, ctx.Param("courseId"), ctx.Param("lessonId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

type percentageResponse struct {
	CourseID     string  `json:"courseId"`
	Completed    int     `json:"completed"`
	TotalLessons int     `json:"totalLessons"`
	Percentage   float64 `json:"percentage"`
}

func (api *progressApi) percentage(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	total, err := strconv.Atoi(ctx.QueryParam("totalLessons"))
	if err != nil || total < 0 {
		return core.NewInvalidInputError("totalLessons must be a non-negative integer")
	}

	courseID := ctx.Param("courseId")
	up, err := api.svc.Get(ctx.Request().Context(), usr.ID)
	if err != nil {
		return err
	}
	completed := len(up.Course(courseID).CompletedLessons)
	return ctx.JSON(http.StatusOK, percentageResponse{
		CourseID:     courseID,
		Completed:    completed,
		TotalLessons: total,
		Percentage:   progress.Percentage(completed, total),
	})
}

// stream pushes the user's progress as Server-Sent Events until the client goes away.
func (api *progressApi) stream(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	// only the latest state matters to a slow client
	updates := make(chan progress.UserProgress, 1)
	tracker := progress.NewTracker(api.svc, usr.ID)
	tracker.OnChange = func(up progress.UserProgress) {
		for {
			select {
			case updates <- up:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}
	if err = tracker.Start(reqCtx); err != nil {
		return err
	}
	defer tracker.Close()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case up := <-updates:
			data, err := json.Marshal(up)
			if err != nil {
				api.logger.Error(fmt.Sprintf("encoding progress of %s: %v", usr.ID, err), err, usr)
				continue
			}
			if _, err = fmt.Fprintf(res, "event: progress\ndata: %s\n\n", data); err != nil {
				return nil
			}
			res.Flush()
		case <-heartbeat.C:
			if _, err = fmt.Fprint(res, ": heartbeat\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
