package main

import (
	"log"
	"os"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
	"github.com/uzimahq/uzima/services/email"
	"github.com/uzimahq/uzima/storage/database"
	"github.com/uzimahq/uzima/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.OpenX(core.Conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(nopLogger{})
	}

	auditSvc := audit.NewService(sqlxrepos.NewAuditRepository(db), nil)
	govSvc, err := governance.NewService(sqlxrepos.NewGovernanceRepository(db), status.Rules{
		DueSoonThresholdDays: core.Conf.Governance.DueSoonThresholdDays,
	})
	errAndDie(err)
	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, auditSvc)
	orgSvc := org.NewService(sqlxrepos.NewOrgRepository(db), auditSvc)
	topicSvc := topic.NewService(sqlxrepos.NewTopicRepository(db), govSvc, usrSvc, orgSvc, mailSvc, auditSvc)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrRepo:  usrRepo,
		topicSvc: topicSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(msg string, _ ...interface{}) { logger.Print(msg) }
func (nopLogger) Fatal(msg string, _ ...interface{}) { logger.Fatal(msg) }
