package inmemdb

import (
	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/status"
)

type governanceRepository struct {
	db *governanceTable
}

var _ governance.Repository = (*governanceRepository)(nil) // interface compliance check

func NewGovernanceRepository(db *DB) governance.Repository {
	return &governanceRepository{db: db.governance}
}

func (repo *governanceRepository) GetRules() (status.Rules, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.db.rules == nil {
		return status.Rules{}, governance.ErrNotFound
	}
	return *repo.db.rules, nil
}

func (repo *governanceRepository) SaveRules(rules status.Rules) (status.Rules, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rules = &rules
	return rules, nil
}
