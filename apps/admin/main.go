package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/trezcool/edusite/apps/shared"
	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/exam"
	"github.com/trezcool/edusite/core/notification"
	pushsvc "github.com/trezcool/edusite/services/push"
)

func main() {
	conf := core.NewConfig()
	logger, err := shared.NewLogger(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// migrations are run explicitly here
	backend, err := shared.OpenBackend(context.Background(), conf, logger, false)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
	}

	validate, translator := shared.NewValidator()
	pusher := pushsvc.NewOneSignal(&http.Client{Timeout: 15 * time.Second})

	cli := commandLine{
		db:         backend.SQL,
		users:      backend.Directory,
		notifier:   notification.NewService(exam.NewService(backend.Store), pusher, conf, validate, conf.SiteBaseURL),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	if backend.Tokens != nil { // keep a nil *Local out of the interface
		cli.tokens = backend.Tokens
	}
	err = cli.run(os.Args)

	_ = backend.Store.Close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
