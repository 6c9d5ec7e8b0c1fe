package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/edusite/apps/api/echo"
	"github.com/trezcool/edusite/apps/shared"
	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/core/content"
	"github.com/trezcool/edusite/core/exam"
	"github.com/trezcool/edusite/core/forms"
	"github.com/trezcool/edusite/core/notification"
	"github.com/trezcool/edusite/core/progress"
	appfs "github.com/trezcool/edusite/fs"
	badgesvc "github.com/trezcool/edusite/services/badge"
	emailsvc "github.com/trezcool/edusite/services/email"
	logsvc "github.com/trezcool/edusite/services/logger"
	metricsvc "github.com/trezcool/edusite/services/metrics"
	pdfsvc "github.com/trezcool/edusite/services/pdf"
	pushsvc "github.com/trezcool/edusite/services/push"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger, err := shared.NewLogger(conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// server-side failures are reported out of the request path
	events := core.NewErrorEvents(256)
	listenCtx, stopListening := context.WithCancel(context.Background())
	defer stopListening()
	go func() {
		_ = logsvc.ListenErrorEvents(listenCtx, events, logger)
	}()
	defer events.Close()

	backend, err := shared.OpenBackend(context.Background(), conf, logger, true /* migrate */)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
	}
	store := backend.Store
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing document store: %v", err), err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := shared.NewValidator()

	if err = core.ParseEmailTemplates(appfs.FS, !conf.Debug); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	metrics := metricsvc.New("edusite")
	examSvc := exam.NewService(store)
	pusher := pushsvc.NewOneSignal(&http.Client{Timeout: 15 * time.Second})

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus scrape endpoint.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Backend)
	expvar.Publish("errorEventsDropped", expvar.Func(func() interface{} { return events.Dropped() }))
	http.Handle("/metrics", metrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	deps := echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ErrorEvents:    events,
		Metrics:        metrics,
		Validate:       validate,
		Translator:     translator,
		Auth:           backend.Auth,
		ExamSvc:        examSvc,
		NotifySvc:      notification.NewService(examSvc, pusher, conf, validate, conf.SiteBaseURL),
		CertificateSvc: certificate.NewService(examSvc, pdfsvc.NewCertificateRenderer(conf.AppName), conf),
		ContentSvc:     content.NewService(store),
		FormsSvc:       forms.NewService(store, mailSvc, validate, translator, conf),
		ProgressSvc:    progress.NewService(store, logger),
		Badges:         badgesvc.NewRenderer(conf.AppName),
	}
	server := echoapi.NewServer(deps)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}
