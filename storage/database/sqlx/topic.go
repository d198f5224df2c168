package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
)

const (
	topicColumns   = `id, title, description, step, status, due_date, done_at, owner_id, department_id, created_at, updated_at`
	measureColumns = `id, topic_id, title, status, due_date, done_at, assignee_id, created_at, updated_at`
)

type topicRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Step         string    `db:"step"`
	Status       string    `db:"status"`
	DueDate      null.Time `db:"due_date"`
	DoneAt       null.Time `db:"done_at"`
	OwnerID      null.Int  `db:"owner_id"`
	DepartmentID int       `db:"department_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row topicRow) toTopic() topic.Topic {
	// pre-migration rows may hold legacy status values ("Critical", step names)
	st, _ := status.Parse(row.Status)
	return topic.Topic{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Step:         row.Step,
		Status:       st,
		DueDate:      row.DueDate,
		DoneAt:       row.DoneAt,
		OwnerID:      row.OwnerID,
		DepartmentID: row.DepartmentID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toTopics(rows []topicRow) []topic.Topic {
	topics := make([]topic.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toTopic())
	}
	return topics
}

type measureRow struct {
	ID         string    `db:"id"`
	TopicID    string    `db:"topic_id"`
	Title      string    `db:"title"`
	Status     string    `db:"status"`
	DueDate    null.Time `db:"due_date"`
	DoneAt     null.Time `db:"done_at"`
	AssigneeID null.Int  `db:"assignee_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row measureRow) toMeasure() topic.Measure {
	st, _ := status.Parse(row.Status)
	return topic.Measure{
		ID:         row.ID,
		TopicID:    row.TopicID,
		Title:      row.Title,
		Status:     st,
		DueDate:    row.DueDate,
		DoneAt:     row.DoneAt,
		AssigneeID: row.AssigneeID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func toMeasures(rows []measureRow) []topic.Measure {
	measures := make([]topic.Measure, 0, len(rows))
	for _, row := range rows {
		measures = append(measures, row.toMeasure())
	}
	return measures
}

type topicRepository struct {
	db *sqlx.DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *sqlx.DB) topic.Repository {
	return &topicRepository{db: db}
}

// Topics

func (repo *topicRepository) CreateTopic(t topic.Topic) (topic.Topic, error) {
	_, err := repo.db.Exec(`
		INSERT INTO topic (id, title, description, step, status, due_date, done_at, owner_id, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.Step, string(t.Status), t.DueDate, t.DoneAt,
		t.OwnerID, t.DepartmentID, t.CreatedAt, t.UpdatedAt,
	)
	return t, err
}

func (repo *topicRepository) QueryAllTopics() ([]topic.Topic, error) {
	var rows []topicRow
	if err := repo.db.Select(&rows, `SELECT `+topicColumns+` FROM topic`); err != nil {
		return nil, err
	}
	return toTopics(rows), nil
}

func (repo *topicRepository) FilterTopics(filter topic.QueryFilter) ([]topic.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topic WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (title ILIKE ` + p + ` OR description ILIKE ` + p + `)`
	}
	if filter.DepartmentID > 0 {
		query += ` AND department_id = ` + arg(filter.DepartmentID)
	}
	if filter.Step != "" {
		query += ` AND step = ` + arg(filter.Step)
	}
	if filter.IsDone != nil {
		done := `(done_at IS NOT NULL OR status = 'done')`
		if *filter.IsDone {
			query += ` AND ` + done
		} else {
			query += ` AND NOT ` + done
		}
	}
	if !filter.DueFrom.IsZero() {
		query += ` AND due_date >= ` + arg(filter.DueFrom)
	}
	if !filter.DueTo.IsZero() {
		query += ` AND due_date <= ` + arg(filter.DueTo)
	}

	var rows []topicRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	return toTopics(rows), nil
}

func (repo *topicRepository) GetTopicByID(id string) (topic.Topic, error) {
	var row topicRow
	err := repo.db.Get(&row, `SELECT `+topicColumns+` FROM topic WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return topic.Topic{}, topic.ErrTopicNotFound
		}
		return topic.Topic{}, err
	}
	return row.toTopic(), nil
}

func (repo *topicRepository) UpdateTopic(t topic.Topic) (topic.Topic, error) {
	res, err := repo.db.Exec(`
		UPDATE topic
		SET title = $2, description = $3, step = $4, status = $5, due_date = $6,
		    done_at = $7, owner_id = $8, department_id = $9, updated_at = $10
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Step, string(t.Status), t.DueDate,
		t.DoneAt, t.OwnerID, t.DepartmentID, t.UpdatedAt,
	)
	if err != nil {
		return topic.Topic{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return topic.Topic{}, topic.ErrTopicNotFound
	}
	return t, nil
}

func (repo *topicRepository) DeleteTopicsByID(ids ...string) error {
	// measures cascade via FK
	_, err := repo.db.Exec(`DELETE FROM topic WHERE id = ANY ($1::uuid[])`, pq.Array(ids))
	return err
}

// Measures

func (repo *topicRepository) CreateMeasure(m topic.Measure) (topic.Measure, error) {
	_, err := repo.db.Exec(`
		INSERT INTO measure (id, topic_id, title, status, due_date, done_at, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.TopicID, m.Title, string(m.Status), m.DueDate, m.DoneAt,
		m.AssigneeID, m.CreatedAt, m.UpdatedAt,
	)
	return m, err
}

func (repo *topicRepository) QueryAllMeasures() ([]topic.Measure, error) {
	var rows []measureRow
	if err := repo.db.Select(&rows, `SELECT `+measureColumns+` FROM measure`); err != nil {
		return nil, err
	}
	return toMeasures(rows), nil
}

func (repo *topicRepository) QueryMeasuresByTopic(topicID string) ([]topic.Measure, error) {
	var rows []measureRow
	if err := repo.db.Select(&rows, `SELECT `+measureColumns+` FROM measure WHERE topic_id = $1`, topicID); err != nil {
		return nil, err
	}
	return toMeasures(rows), nil
}

func (repo *topicRepository) GetMeasureByID(id string) (topic.Measure, error) {
	var row measureRow
	err := repo.db.Get(&row, `SELECT `+measureColumns+` FROM measure WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return topic.Measure{}, topic.ErrMeasureNotFound
		}
		return topic.Measure{}, err
	}
	return row.toMeasure(), nil
}

func (repo *topicRepository) UpdateMeasure(m topic.Measure) (topic.Measure, error) {
	res, err := repo.db.Exec(`
		UPDATE measure
		SET title = $2, status = $3, due_date = $4, done_at = $5, assignee_id = $6, updated_at = $7
		WHERE id = $1`,
		m.ID, m.Title, string(m.Status), m.DueDate, m.DoneAt, m.AssigneeID, m.UpdatedAt,
	)
	if err != nil {
		return topic.Measure{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return topic.Measure{}, topic.ErrMeasureNotFound
	}
	return m, nil
}

func (repo *topicRepository) DeleteMeasure(id string) error {
	_, err := repo.db.Exec(`DELETE FROM measure WHERE id = $1`, id)
	return err
}
