// Package inmemdb provides in-memory repository implementations backing the
// test suites and debug mode.
package inmemdb

import (
	"sync"

	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
)

type (
	userTable struct {
		sync.RWMutex
		table   map[int]*user.User
		pkCount int
	}

	topicTable struct {
		sync.RWMutex
		table map[string]*topic.Topic
	}

	measureTable struct {
		sync.RWMutex
		table map[string]*topic.Measure
	}

	locationTable struct {
		sync.RWMutex
		table   map[int]*org.Location
		pkCount int
	}

	departmentTable struct {
		sync.RWMutex
		table   map[int]*org.Department
		pkCount int
	}

	entryTable struct {
		sync.RWMutex
		entries []audit.Entry
	}

	governanceTable struct {
		sync.RWMutex
		rules *status.Rules
	}

	DB struct {
		user       *userTable
		topic      *topicTable
		measure    *measureTable
		location   *locationTable
		department *departmentTable
		entry      *entryTable
		governance *governanceTable
	}
)

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset drops all data; used between tests.
func (db *DB) Reset() {
	db.user = &userTable{table: make(map[int]*user.User)}
	db.topic = &topicTable{table: make(map[string]*topic.Topic)}
	db.measure = &measureTable{table: make(map[string]*topic.Measure)}
	db.location = &locationTable{table: make(map[int]*org.Location)}
	db.department = &departmentTable{table: make(map[int]*org.Department)}
	db.entry = new(entryTable)
	db.governance = new(governanceTable)
}
