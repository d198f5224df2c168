package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/uzimahq/uzima/apps/api/echo"
	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
	"github.com/uzimahq/uzima/services/email"
	"github.com/uzimahq/uzima/services/logger"
	"github.com/uzimahq/uzima/storage/database"
	"github.com/uzimahq/uzima/storage/database/inmem"
	"github.com/uzimahq/uzima/storage/database/sqlx"
)

type repositories struct {
	user       user.Repository
	topic      topic.Repository
	org        org.Repository
	audit      audit.Repository
	governance governance.Repository
}

func main() {
	// set up logger
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewZerologLogger(os.Stdout, core.Conf)
	} else {
		rollbar := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			core.Conf,
		)
		rollbar.Enable(true)
		logger = rollbar
	}

	// set up storage
	repos, closeDB, err := setUpRepositories()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer closeDB()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	auditSvc := audit.NewService(repos.audit, logger)
	govSvc, err := governance.NewService(repos.governance, status.Rules{
		DueSoonThresholdDays: core.Conf.Governance.DueSoonThresholdDays,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading governance rules: %v", err), err)
	}
	usrSvc := user.NewService(repos.user, mailSvc, auditSvc)
	orgSvc := org.NewService(repos.org, auditSvc)
	topicSvc := topic.NewService(repos.topic, govSvc, usrSvc, orgSvc, mailSvc, auditSvc)

	logger.Info(fmt.Sprintf("%s initializing : version %q", core.Conf.AppName, core.Conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	server := echoapi.NewServer(&echoapi.Options{
		Address:  fmt.Sprintf("%s:%d", core.Conf.Server.Host, core.Conf.Server.Port),
		Logger:   logger,
		UserSvc:  usrSvc,
		TopicSvc: topicSvc,
		OrgSvc:   orgSvc,
		GovSvc:   govSvc,
		AuditSvc: auditSvc,
	})

	go server.Start()

	sig := <-server.ShutdownSignal()
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

// setUpRepositories wires the in-memory backend in debug mode and Postgres
// otherwise.
func setUpRepositories() (repositories, func(), error) {
	if core.Conf.Debug {
		db := inmemdb.NewDB()
		return repositories{
			user:       inmemdb.NewUserRepository(db),
			topic:      inmemdb.NewTopicRepository(db),
			org:        inmemdb.NewOrgRepository(db),
			audit:      inmemdb.NewAuditRepository(db),
			governance: inmemdb.NewGovernanceRepository(db),
		}, func() {}, nil
	}

	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return repositories{}, nil, err
	}
	db, err := database.OpenX(core.Conf)
	if err != nil {
		return repositories{}, nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return repositories{}, nil, err
	}
	return repositories{
		user:       sqlxrepos.NewUserRepository(db),
		topic:      sqlxrepos.NewTopicRepository(db),
		org:        sqlxrepos.NewOrgRepository(db),
		audit:      sqlxrepos.NewAuditRepository(db),
		governance: sqlxrepos.NewGovernanceRepository(db),
	}, func() { _ = db.Close() }, nil
}
