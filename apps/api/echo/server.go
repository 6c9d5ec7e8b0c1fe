package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/core/content"
	"github.com/trezcool/edusite/core/exam"
	"github.com/trezcool/edusite/core/forms"
	"github.com/trezcool/edusite/core/notification"
	"github.com/trezcool/edusite/core/progress"
	"github.com/trezcool/edusite/core/user"
	"github.com/trezcool/edusite/services/metrics"
)

type (
	// BadgeRenderer draws a shareable image of a result.
	BadgeRenderer interface {
		Render(ctx context.Context, res exam.Result) ([]byte, error)
	}

	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		ErrorEvents    *core.ErrorEvents
		Metrics        *metricsvc.Metrics
		Validate       *validator.Validate
		Translator     ut.Translator
		Auth           user.Authenticator
		ExamSvc        *exam.Service
		NotifySvc      *notification.Service
		CertificateSvc *certificate.Service
		ContentSvc     *content.Service
		FormsSvc       *forms.Service
		ProgressSvc    *progress.Service
		Badges         BadgeRenderer
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.SiteBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.ErrorEvents, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	auth := authMiddleware(s.deps.Auth)
	api := s.app.Group("/api")

	registerNotificationAPI(api, s.deps.NotifySvc, s.deps.Metrics)
	registerCertificateAPI(api, s.deps.CertificateSvc, s.deps.Metrics)
	registerResultAPI(s.app, api, s.deps.ExamSvc, s.deps.Badges, s.deps.Validate)
	registerContentAPI(api, s.deps.ContentSvc)
	registerFormsAPI(api, auth, s.deps.FormsSvc, s.deps.Metrics, s.deps.Logger)
	registerProgressAPI(api, auth, s.deps.ProgressSvc, s.deps.Logger)
	api.GET("/me", me, auth)
}

// Start listens until the server is shut down. Startup failures are sent on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
