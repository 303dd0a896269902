package complaint

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core"
)

const recentCount = 5

var (
	// errors
	ErrNotFound = errors.New("complaint not found")

	// OrderingFields are the fields complaints may be ordered by.
	OrderingFields  = []string{"student_name", "matric_number", "category", "status", "created_at", "updated_at"}
	defaultOrdering = []core.DBOrdering{{Field: "created_at"}}
)

type Service interface {
	Submit(ctx context.Context, nc NewComplaint, submittedBy string) (Complaint, error)
	Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Complaint, error)
	GetByID(ctx context.Context, id string) (Complaint, error)
	UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Complaint, error)
	Delete(ctx context.Context, ids ...string) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Dashboard(ctx context.Context) (Dashboard, error)
}

type service struct {
	repo    Repository
	mailSvc core.EmailService
	nowFunc func() time.Time
}

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		nowFunc: time.Now,
	}
}

func (svc *service) Submit(ctx context.Context, nc NewComplaint, submittedBy string) (Complaint, error) {
	now := svc.nowFunc().UTC()
	c, err := svc.repo.CreateComplaint(ctx, Complaint{
		ID:           uuid.New().String(),
		StudentName:  nc.StudentName,
		MatricNumber: nc.MatricNumber,
		Email:        nc.Email,
		Department:   nc.Department,
		Level:        nc.Level,
		Category:     nc.Category,
		Subject:      nc.Subject,
		Description:  nc.Description,
		Status:       StatusPending,
		SubmittedBy:  submittedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Complaint{}, errors.Wrap(err, "creating complaint")
	}

	svc.notifyStudent(c, "Complaint received", "complaint_received")
	return c, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Complaint, error) {
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryComplaints(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Complaint{}, ErrNotFound
	}
	return svc.repo.GetComplaint(ctx, id)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Complaint, error) {
	c, err := svc.GetByID(ctx, id)
	if err != nil {
		return Complaint{}, err
	}

	statusChanged := c.Status != us.Status
	if statusChanged && !c.Status.CanTransitionTo(us.Status) {
		return Complaint{}, core.NewValidationError(nil, core.FieldError{
			Field: "status",
			Error: fmt.Sprintf("cannot move a %s complaint to %s", c.Status, us.Status),
		})
	}

	c.Status = us.Status
	c.AdminNote = us.AdminNote
	c.UpdatedAt = svc.nowFunc().UTC()
	if c, err = svc.repo.UpdateComplaint(ctx, c); err != nil {
		return Complaint{}, errors.Wrap(err, "updating complaint")
	}

	if statusChanged {
		svc.notifyStudent(c, "Complaint status updated", "complaint_status")
	}
	return c, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return svc.repo.DeleteComplaintsByID(ctx, ids...)
}

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.CountComplaints(ctx)
}

func (svc *service) Dashboard(ctx context.Context) (Dashboard, error) {
	stats, err := svc.repo.CountComplaints(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting complaints")
	}
	recent, err := svc.repo.QueryComplaints(ctx, &QueryFilter{Limit: recentCount}, defaultOrdering)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying recent complaints")
	}
	if recent == nil {
		recent = []Complaint{}
	}
	return Dashboard{Stats: stats, Recent: recent}, nil
}

func (svc *service) notifyStudent(c Complaint, subject, tmpl string) {
	if svc.mailSvc == nil || c.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: c.StudentName, Address: c.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: c,
	})
}
