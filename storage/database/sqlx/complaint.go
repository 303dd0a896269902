package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
)

const complaintTable = "complaints"

var complaintColumns = []string{
	"id", "student_name", "matric_number", "email", "department", "level", "category", "subject", "description",
	"status", "admin_note", "submitted_by", "created_at", "updated_at",
}

type complaintRow struct {
	ID           string      `db:"id"`
	StudentName  string      `db:"student_name"`
	MatricNumber string      `db:"matric_number"`
	Email        string      `db:"email"`
	Department   string      `db:"department"`
	Level        null.String `db:"level"`
	Category     string      `db:"category"`
	Subject      string      `db:"subject"`
	Description  string      `db:"description"`
	Status       string      `db:"status"`
	AdminNote    null.String `db:"admin_note"`
	SubmittedBy  null.String `db:"submitted_by"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row complaintRow) complaint() complaint.Complaint {
	return complaint.Complaint{
		ID:           row.ID,
		StudentName:  row.StudentName,
		MatricNumber: row.MatricNumber,
		Email:        row.Email,
		Department:   row.Department,
		Level:        row.Level.String,
		Category:     row.Category,
		Subject:      row.Subject,
		Description:  row.Description,
		Status:       complaint.Status(row.Status),
		AdminNote:    row.AdminNote.String,
		SubmittedBy:  row.SubmittedBy.String,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

// complaintValues returns the column values of c, ordered as complaintColumns.
func complaintValues(c complaint.Complaint) []interface{} {
	return []interface{}{
		c.ID,
		c.StudentName,
		c.MatricNumber,
		c.Email,
		c.Department,
		null.NewString(c.Level, c.Level != ""),
		c.Category,
		c.Subject,
		c.Description,
		string(c.Status),
		null.NewString(c.AdminNote, c.AdminNote != ""),
		null.NewString(c.SubmittedBy, c.SubmittedBy != ""),
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
	}
}

type complaintRepository struct {
	db sqlx.ExtContext
}

var _ complaint.Repository = (*complaintRepository)(nil) // interface compliance check

func NewComplaintRepository(db sqlx.ExtContext) complaint.Repository {
	return &complaintRepository{db: db}
}

func (repo *complaintRepository) CreateComplaint(ctx context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query, args, err := psq.Insert(complaintTable).Columns(complaintColumns...).Values(complaintValues(c)...).ToSql()
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "building insert query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "inserting complaint")
	}
	return c, nil
}

// applyComplaintFilter adds filter conditions to a SELECT builder.
func applyComplaintFilter(qb sq.SelectBuilder, filter *complaint.QueryFilter) sq.SelectBuilder {
	if filter == nil {
		return qb
	}
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"student_name": val},
			sq.ILike{"matric_number": val},
			sq.ILike{"subject": val},
			sq.ILike{"description": val},
		})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		qb = qb.Where(sq.Eq{"status": statuses})
	}
	if len(filter.Categories) > 0 {
		qb = qb.Where(sq.Eq{"category": filter.Categories})
	}
	if filter.SubmittedBy != "" {
		qb = qb.Where(sq.Eq{"submitted_by": filter.SubmittedBy})
	}
	if !filter.CreatedFrom.IsZero() {
		qb = qb.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
	}
	if !filter.CreatedTo.IsZero() {
		qb = qb.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}
	return qb
}

func (repo *complaintRepository) QueryComplaints(ctx context.Context, filter *complaint.QueryFilter, ordering []core.DBOrdering) ([]complaint.Complaint, error) {
	qb := applyComplaintFilter(psq.Select(complaintColumns...).From(complaintTable), filter)
	if len(ordering) == 0 {
		qb = qb.OrderBy("created_at DESC")
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building complaints query")
	}
	var rows []complaintRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying complaints")
	}

	cs := make([]complaint.Complaint, 0, len(rows))
	for _, row := range rows {
		cs = append(cs, row.complaint())
	}
	return cs, nil
}

func (repo *complaintRepository) GetComplaint(ctx context.Context, id string) (complaint.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	query, args, err := psq.Select(complaintColumns...).From(complaintTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "building complaint query")
	}
	var row complaintRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return complaint.Complaint{}, complaint.ErrNotFound
		}
		return complaint.Complaint{}, errors.Wrap(err, "getting complaint")
	}
	return row.complaint(), nil
}

func (repo *complaintRepository) UpdateComplaint(ctx context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	query, args, err := psq.Update(complaintTable).
		Set("status", string(c.Status)).
		Set("admin_note", null.NewString(c.AdminNote, c.AdminNote != "")).
		Set("updated_at", c.UpdatedAt.UTC()).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "building update query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "updating complaint")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	return c, nil
}

func (repo *complaintRepository) DeleteComplaintsByID(ctx context.Context, ids ...string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := psq.Delete(complaintTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting complaints")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting complaints")
	}
	return int(n), nil
}

func (repo *complaintRepository) CountComplaints(ctx context.Context) (complaint.Stats, error) {
	query, args, err := psq.Select("status", "category", "COUNT(*) AS n").
		From(complaintTable).
		GroupBy("status", "category").
		ToSql()
	if err != nil {
		return complaint.Stats{}, errors.Wrap(err, "building count query")
	}

	var rows []struct {
		Status   string `db:"status"`
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return complaint.Stats{}, errors.Wrap(err, "counting complaints")
	}

	stats := complaint.NewStats()
	for _, row := range rows {
		stats.Total += row.N
		stats.ByStatus[complaint.Status(row.Status)] += row.N
		stats.ByCategory[row.Category] += row.N
	}
	return stats, nil
}
