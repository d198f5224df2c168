package inmemdb

import (
	"sort"

	"github.com/uzimahq/uzima/core/audit"
)

type auditRepository struct {
	db *entryTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db.entry}
}

func (repo *auditRepository) CreateEntry(entry audit.Entry) (audit.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.entries = append(repo.db.entries, entry)
	return entry, nil
}

func (repo *auditRepository) FilterEntries(filter audit.QueryFilter) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]audit.Entry, 0, len(repo.db.entries))
	for _, entry := range repo.db.entries {
		if filter.ObjectKind != "" && entry.ObjectKind != filter.ObjectKind {
			continue
		}
		if filter.ActorID > 0 && entry.ActorID != filter.ActorID {
			continue
		}
		if !filter.TimeFrom.IsZero() && entry.Time.Before(filter.TimeFrom) {
			continue
		}
		if !filter.TimeTo.IsZero() && entry.Time.After(filter.TimeTo) {
			continue
		}
		entries = append(entries, entry)
	}

	// newest first
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time.After(entries[j].Time) })
	return entries, nil
}
