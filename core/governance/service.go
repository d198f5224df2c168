// Package governance administers the organization-wide rules that drive
// status derivation, currently the due-soon threshold.
package governance

import (
	"errors"
	"sync"

	"github.com/uzimahq/uzima/core/status"
)

// ErrNotFound is returned by repositories when no rules were ever saved.
var ErrNotFound = errors.New("governance rules not found")

type (
	Repository interface {
		GetRules() (status.Rules, error)
		SaveRules(rules status.Rules) (status.Rules, error)
	}

	// Service caches the rules behind a RWMutex: reads happen on every
	// classification, writes only on admin configuration changes. Changes take
	// effect for all subsequent reads immediately.
	Service struct {
		mu    sync.RWMutex
		repo  Repository
		rules status.Rules
	}
)

// NewService loads the persisted rules, seeding the repository with the given
// defaults when none exist yet.
func NewService(repo Repository, defaults status.Rules) (*Service, error) {
	rules, err := repo.GetRules()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if rules, err = repo.SaveRules(defaults); err != nil {
			return nil, err
		}
	}
	return &Service{repo: repo, rules: rules}, nil
}

func (svc *Service) Rules() status.Rules {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.rules
}

// SetThresholdDays updates the due-soon threshold. Negative input is clamped
// to 0 rather than rejected, keeping the accessor total on any admin input.
func (svc *Service) SetThresholdDays(days int) (status.Rules, error) {
	if days < 0 {
		days = 0
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	rules, err := svc.repo.SaveRules(status.Rules{DueSoonThresholdDays: days})
	if err != nil {
		return status.Rules{}, err
	}
	svc.rules = rules
	return rules, nil
}
