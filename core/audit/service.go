// Package audit keeps the activity log: who did what to which object, when.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/uzimahq/uzima/core"
)

type (
	Repository interface {
		CreateEntry(entry Entry) (Entry, error)
		FilterEntries(filter QueryFilter) ([]Entry, error)
	}

	// Recorder is the write-side interface handed to the domain services.
	Recorder interface {
		// Record appends an entry best-effort; it never fails the calling
		// operation.
		Record(actorID int, action, objectKind, objectID, message string)
	}

	Service struct {
		repo    Repository
		log     core.Logger
		nowFunc func() time.Time // mockable
	}
)

var _ Recorder = (*Service)(nil)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log, nowFunc: time.Now}
}

func (svc *Service) Record(actorID int, action, objectKind, objectID, message string) {
	entry := Entry{
		ID:         uuid.New().String(),
		Time:       svc.nowFunc().UTC(),
		ActorID:    actorID,
		Action:     action,
		ObjectKind: objectKind,
		ObjectID:   objectID,
		Message:    message,
	}
	if _, err := svc.repo.CreateEntry(entry); err != nil && svc.log != nil {
		svc.log.Error("recording activity entry", err)
	}
}

func (svc *Service) Filter(filter QueryFilter) ([]Entry, error) {
	return svc.repo.FilterEntries(filter)
}
