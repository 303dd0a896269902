package inmemdb

import (
	"sync"

	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
)

type (
	DB struct {
		user      *userTable
		complaint *complaintTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	complaintTable struct {
		mutex sync.RWMutex
		table map[string]*complaint.Complaint
	}
)

func Open() *DB {
	return &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		complaint: &complaintTable{table: make(map[string]*complaint.Complaint)},
	}
}

// Flush empties every table.
func (db *DB) Flush() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.mutex.Unlock()

	db.complaint.mutex.Lock()
	db.complaint.table = make(map[string]*complaint.Complaint)
	db.complaint.mutex.Unlock()
}
