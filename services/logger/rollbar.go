package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/session"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

// RollbarLogger reports to Rollbar and mirrors every entry to a local zap logger.
type RollbarLogger struct {
	std     *zap.SugaredLogger
	enabled bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *zap.SugaredLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

// NewZapLogger returns a named sugared logger: human readable in debug, JSON otherwise.
func NewZapLogger(name string, debug bool) *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	return logger.Named(name).Sugar()
}

// NewNopLogger discards every entry. Rollbar stays disabled.
func NewNopLogger() *RollbarLogger {
	return &RollbarLogger{std: zap.NewNop().Sugar()}
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.enabled = enabled
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User, session.Session
func (l *RollbarLogger) prepare(msg string, args []interface{}) (rbArgs, fields []interface{}) {
	var usrSet bool
	setPerson := func(id, email string) {
		if !usrSet { // only set one person
			rollbar.SetPerson(id, core.EmailLocalPart(email), email)
			fields = append(fields, "user_id", id)
			usrSet = true
		}
	}

	rbArgs = append(make([]interface{}, 0, len(args)+1), msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			setPerson(a.ID, a.Email)
		case session.Session:
			setPerson(a.UserID, a.Email)
		case error:
			rbArgs = append(rbArgs, a)
			fields = append(fields, "error", a)
		case map[string]interface{}:
			rbArgs = append(rbArgs, a)
			for k, v := range a {
				fields = append(fields, k, v)
			}
		default:
			rbArgs = append(rbArgs, a)
			fields = append(fields, "extra", a)
		}
	}
	if !usrSet && l.enabled {
		rollbar.ClearPerson()
	}
	return rbArgs, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Debug(rbArgs...)
	}
	l.std.Debugw(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Info(rbArgs...)
	}
	l.std.Infow(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Warning(rbArgs...)
	}
	l.std.Warnw(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Error(rbArgs...)
	}
	l.std.Errorw(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	if l.enabled {
		rollbar.Critical(rbArgs...)
		rollbar.Wait()
	}
	l.std.Fatalw(msg, fields...)
}
