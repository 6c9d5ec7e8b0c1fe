package logsvc

import (
	"context"
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
)

// RollbarLogger reports to rollbar and writes every entry to a local zap logger.
type RollbarLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(sugar *zap.SugaredLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{sugar: sugar}
}

// NewZapLogger builds the local sink: human readable in debug mode, JSON otherwise.
func NewZapLogger(conf *core.Config) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if conf.Debug {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(2))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(2))
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("app", conf.AppName, "env", conf.Env), nil
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var usrSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	fields := make([]interface{}, 0, 2*len(args))
	for i, arg := range args {
		switch val := arg.(type) {
		case user.User:
			// set logged in User
			if !usrSet { // only set one User
				rollbar.SetPerson(val.ID, val.Name, val.Email)
				fields = append(fields, "user", val.ID)
				usrSet = true
			}
			continue
		case error:
			fields = append(fields, "error", val)
		case map[string]interface{}:
			for k, v := range val {
				fields = append(fields, k, v)
			}
		default:
			fields = append(fields, fmt.Sprintf("arg%d", i), val)
		}
		rbArgs = append(rbArgs, arg)
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return rbArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.sugar.Debugw(msg, fields...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.sugar.Infow(msg, fields...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.sugar.Warnw(msg, fields...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.sugar.Errorw(msg, fields...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.sugar.Fatalw(msg, fields...)
}

// Sync flushes both sinks.
func (l RollbarLogger) Sync() {
	rollbar.Wait()
	_ = l.sugar.Sync()
}

// ListenErrorEvents logs every event emitted on events until ctx is done.
func ListenErrorEvents(ctx context.Context, events *core.ErrorEvents, logger core.Logger) error {
	return events.Listen(ctx, func(ev core.ErrorEvent) {
		extras := map[string]interface{}{
			"kind":   string(ev.Kind),
			"op":     ev.Op,
			"status": ev.Status,
			"time":   ev.Time,
		}
		args := []interface{}{extras}
		if ev.Err != nil {
			args = append(args, ev.Err)
		}
		if ev.UserID != "" {
			args = append(args, user.User{ID: ev.UserID})
		}
		msg := fmt.Sprintf("%s: %s", ev.Op, ev.Message)
		if ev.Kind == core.UpstreamFailure {
			logger.Warn(msg, args...)
			return
		}
		logger.Error(msg, args...)
	})
}
