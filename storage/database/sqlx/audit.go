package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core/audit"
)

type entryRow struct {
	ID         string    `db:"id"`
	Time       time.Time `db:"time"`
	ActorID    null.Int  `db:"actor_id"`
	Action     string    `db:"action"`
	ObjectKind string    `db:"object_kind"`
	ObjectID   string    `db:"object_id"`
	Message    string    `db:"message"`
}

func (row entryRow) toEntry() audit.Entry {
	return audit.Entry{
		ID:         row.ID,
		Time:       row.Time,
		ActorID:    row.ActorID.Int,
		Action:     row.Action,
		ObjectKind: row.ObjectKind,
		ObjectID:   row.ObjectID,
		Message:    row.Message,
	}
}

const entryColumns = `id, "time", actor_id, action, object_kind, object_id, message`

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateEntry(entry audit.Entry) (audit.Entry, error) {
	var actorID interface{}
	if entry.ActorID > 0 {
		actorID = entry.ActorID
	}
	_, err := repo.db.Exec(`
		INSERT INTO activity_entry (id, "time", actor_id, action, object_kind, object_id, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Time, actorID, entry.Action, entry.ObjectKind, entry.ObjectID, entry.Message,
	)
	return entry, err
}

func (repo *auditRepository) FilterEntries(filter audit.QueryFilter) ([]audit.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM activity_entry WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.ObjectKind != "" {
		query += ` AND object_kind = ` + arg(filter.ObjectKind)
	}
	if filter.ActorID > 0 {
		query += ` AND actor_id = ` + arg(filter.ActorID)
	}
	if !filter.TimeFrom.IsZero() {
		query += ` AND "time" >= ` + arg(filter.TimeFrom)
	}
	if !filter.TimeTo.IsZero() {
		query += ` AND "time" <= ` + arg(filter.TimeTo)
	}
	query += ` ORDER BY "time" DESC`

	var rows []entryRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}
