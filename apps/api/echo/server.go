// Package echoapi exposes the HTTP API on echo.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger   core.Logger
		UserSvc  *user.Service
		TopicSvc *topic.Service
		OrgSvc   *org.Service
		GovSvc   *governance.Service
		AuditSvc *audit.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.AuditSvc)
	registerTopicAPI(v1, jwt, s.opts.TopicSvc)
	registerOrgAPI(v1, jwt, s.opts.OrgSvc)
	registerGovernanceAPI(v1, jwt, s.opts.GovSvc, s.opts.AuditSvc)
	registerActivityAPI(v1, jwt, s.opts.AuditSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Uzima API!")
}
