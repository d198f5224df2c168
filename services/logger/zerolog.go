package logsvc

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/user"
)

type ZerologLogger struct {
	log     zerolog.Logger
	enabled bool
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(w io.Writer, conf *core.Config) *ZerologLogger {
	var writer io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	if !conf.Debug {
		writer = w // plain JSON outside local work
	}
	l := zerolog.New(writer).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Logger()
	return &ZerologLogger{log: l, enabled: true}
}

func (l *ZerologLogger) Enable(enabled bool) { l.enabled = enabled }

// expected fmt: msg | error, map[string]interface{}, user.User
func (l *ZerologLogger) event(ev *zerolog.Event, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			ev = ev.Err(v)
		case map[string]interface{}:
			ev = ev.Fields(v)
		case user.User:
			ev = ev.Int("user_id", v.ID).Str("username", v.Username)
		default:
			ev = ev.Interface("arg", v)
		}
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) { l.event(l.log.Debug(), msg, args) }
func (l *ZerologLogger) Info(msg string, args ...interface{})  { l.event(l.log.Info(), msg, args) }
func (l *ZerologLogger) Warn(msg string, args ...interface{})  { l.event(l.log.Warn(), msg, args) }
func (l *ZerologLogger) Error(msg string, args ...interface{}) { l.event(l.log.Error(), msg, args) }
func (l *ZerologLogger) Fatal(msg string, args ...interface{}) { l.event(l.log.Fatal(), msg, args) }
