package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/status"
)

type governanceRepository struct {
	db *sqlx.DB
}

var _ governance.Repository = (*governanceRepository)(nil) // interface compliance check

func NewGovernanceRepository(db *sqlx.DB) governance.Repository {
	return &governanceRepository{db: db}
}

func (repo *governanceRepository) GetRules() (status.Rules, error) {
	var days int
	err := repo.db.Get(&days, `SELECT due_soon_threshold_days FROM governance_rules WHERE id`)
	if err != nil {
		if err == sql.ErrNoRows {
			return status.Rules{}, governance.ErrNotFound
		}
		return status.Rules{}, err
	}
	return status.Rules{DueSoonThresholdDays: days}, nil
}

func (repo *governanceRepository) SaveRules(rules status.Rules) (status.Rules, error) {
	_, err := repo.db.Exec(`
		INSERT INTO governance_rules (id, due_soon_threshold_days, updated_at)
		VALUES (TRUE, $1, now())
		ON CONFLICT (id) DO UPDATE SET due_soon_threshold_days = EXCLUDED.due_soon_threshold_days,
		                               updated_at              = now()`,
		rules.DueSoonThresholdDays,
	)
	if err != nil {
		return status.Rules{}, err
	}
	return rules, nil
}
