package complaint

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/nacos/core"
)

type Status string

// Statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

var (
	AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

	// allowed status transitions
	transitions = map[Status][]Status{
		StatusPending:    {StatusInProgress, StatusResolved, StatusRejected},
		StatusInProgress: {StatusResolved, StatusRejected},
		StatusResolved:   {StatusInProgress},
		StatusRejected:   {StatusInProgress},
	}
)

// CanTransitionTo reports whether a complaint in status `s` may be moved to `to`.
func (s Status) CanTransitionTo(to Status) bool {
	for _, st := range transitions[s] {
		if st == to {
			return true
		}
	}
	return false
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

type Category struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var Categories = []Category{
	{Name: "Academic", Value: "academic"},
	{Name: "Hostel & accommodation", Value: "hostel"},
	{Name: "Fees & finance", Value: "finance"},
	{Name: "Library", Value: "library"},
	{Name: "ICT & portal", Value: "ict"},
	{Name: "Student welfare", Value: "welfare"},
	{Name: "Other", Value: "other"},
}

func IsCategory(val string) bool {
	for _, cat := range Categories {
		if cat.Value == val {
			return true
		}
	}
	return false
}

type Complaint struct {
	ID           string    `json:"id"`
	StudentName  string    `json:"student_name"`
	MatricNumber string    `json:"matric_number"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Level        string    `json:"level"`
	Category     string    `json:"category"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	AdminNote    string    `json:"admin_note"`
	SubmittedBy  string    `json:"submitted_by,omitempty"` // User.ID, empty for anonymous submissions
	CreatedAt    time.Time `json:"created_at"`             // UTC
	UpdatedAt    time.Time `json:"updated_at"`             // UTC
}

// NewComplaint contains information needed to submit a new Complaint.
// Bound from either a JSON body or a (multipart) form.
type NewComplaint struct {
	StudentName  string `json:"student_name" form:"student_name" validate:"required,notblank,max=120"`
	MatricNumber string `json:"matric_number" form:"matric_number" validate:"required,matric"`
	Email        string `json:"email" form:"email" validate:"required,email"`
	Department   string `json:"department" form:"department" validate:"required,notblank,max=120"`
	Level        string `json:"level" form:"level" validate:"omitempty,oneof=100 200 300 400 500 600"`
	Category     string `json:"category" form:"category" validate:"required,category"`
	Subject      string `json:"subject" form:"subject" validate:"required,notblank,max=200"`
	Description  string `json:"description" form:"description" validate:"required,notblank,max=5000"`
}

func (nc *NewComplaint) Validate(validate *validator.Validate) error {
	nc.StudentName = core.CleanString(nc.StudentName)
	nc.MatricNumber = core.CleanString(nc.MatricNumber)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Department = core.CleanString(nc.Department)
	nc.Level = core.CleanString(nc.Level)
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateStatus is what an admin may change on an existing Complaint.
type UpdateStatus struct {
	Status    Status `json:"status" validate:"required,status"`
	AdminNote string `json:"admin_note" validate:"max=2000"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = Status(core.CleanString(string(us.Status), true /* lower */))
	us.AdminNote = core.CleanString(us.AdminNote)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search      string
	Statuses    []Status
	Categories  []string
	SubmittedBy string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Offset      int
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.Limit < 0 {
		qf.Limit = 0
	}
	if qf.Offset < 0 {
		qf.Offset = 0
	}
}

// Stats are complaint counts, as plotted by the portal's charts.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
}

// NewStats returns Stats with every known status & category zeroed.
func NewStats() Stats {
	st := Stats{
		ByStatus:   make(map[Status]int, len(AllStatuses)),
		ByCategory: make(map[string]int, len(Categories)),
	}
	for _, s := range AllStatuses {
		st.ByStatus[s] = 0
	}
	for _, c := range Categories {
		st.ByCategory[c.Value] = 0
	}
	return st
}

type Dashboard struct {
	Stats  Stats       `json:"stats"`
	Recent []Complaint `json:"recent"`
}

type Repository interface {
	CreateComplaint(ctx context.Context, c Complaint) (Complaint, error)
	QueryComplaints(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Complaint, error)
	GetComplaint(ctx context.Context, id string) (Complaint, error)
	UpdateComplaint(ctx context.Context, c Complaint) (Complaint, error)
	DeleteComplaintsByID(ctx context.Context, ids ...string) (int, error)
	CountComplaints(ctx context.Context) (Stats, error)
}
