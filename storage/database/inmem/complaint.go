package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
)

type complaintRepository struct {
	db *complaintTable
}

var _ complaint.Repository = (*complaintRepository)(nil)

func NewComplaintRepository(db *DB) complaint.Repository {
	return &complaintRepository{db: db.complaint}
}

func (repo *complaintRepository) CreateComplaint(_ context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *complaintRepository) QueryComplaints(_ context.Context, filter *complaint.QueryFilter, ordering []core.DBOrdering) ([]complaint.Complaint, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cs := make([]complaint.Complaint, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter == nil || complaintMatches(*c, filter) {
			cs = append(cs, *c)
		}
	}
	sortComplaints(cs, ordering)

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(cs) {
				return []complaint.Complaint{}, nil
			}
			cs = cs[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(cs) {
			cs = cs[:filter.Limit]
		}
	}
	return cs, nil
}

func (repo *complaintRepository) GetComplaint(_ context.Context, id string) (complaint.Complaint, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return complaint.Complaint{}, complaint.ErrNotFound
}

func (repo *complaintRepository) UpdateComplaint(_ context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[c.ID]; !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *complaintRepository) DeleteComplaintsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *complaintRepository) CountComplaints(_ context.Context) (complaint.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stats := complaint.NewStats()
	for _, c := range repo.db.table {
		stats.Total++
		stats.ByStatus[c.Status]++
		stats.ByCategory[c.Category]++
	}
	return stats, nil
}

func complaintMatches(c complaint.Complaint, filter *complaint.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !(strings.Contains(strings.ToLower(c.StudentName), s) ||
			strings.Contains(strings.ToLower(c.MatricNumber), s) ||
			strings.Contains(strings.ToLower(c.Subject), s) ||
			strings.Contains(strings.ToLower(c.Description), s)) {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		var found bool
		for _, s := range filter.Statuses {
			if c.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Categories) > 0 {
		var found bool
		for _, cat := range filter.Categories {
			if c.Category == cat {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.SubmittedBy != "" && c.SubmittedBy != filter.SubmittedBy {
		return false
	}
	if !filter.CreatedFrom.IsZero() && c.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && c.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func sortComplaints(cs []complaint.Complaint, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(cs, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareComplaints(cs[i], cs[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareComplaints(a, b complaint.Complaint, field string) int {
	switch field {
	case "student_name":
		return strings.Compare(a.StudentName, b.StudentName)
	case "matric_number":
		return strings.Compare(a.MatricNumber, b.MatricNumber)
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
