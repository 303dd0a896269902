package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nacos/core/complaint"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func complaintRowValues(c complaint.Complaint) []driver.Value {
	return []driver.Value{
		c.ID, c.StudentName, c.MatricNumber, c.Email, c.Department, c.Level, c.Category, c.Subject, c.Description,
		string(c.Status), nil, nil, c.CreatedAt, c.UpdatedAt,
	}
}

func testComplaint() complaint.Complaint {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return complaint.Complaint{
		ID:           uuid.New().String(),
		StudentName:  "Adaobi Okafor",
		MatricNumber: "CSC/2021/042",
		Email:        "adaobi@unn.edu.ng",
		Department:   "Computer Science",
		Level:        "300",
		Category:     "hostel",
		Subject:      "Broken window",
		Description:  "Room 12 window has been broken for a week",
		Status:       complaint.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestComplaintRepository_CreateComplaint(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	c := testComplaint()

	args := make([]driver.Value, len(complaintColumns))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO complaints").WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := repo.CreateComplaint(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_CreateComplaint_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	c := testComplaint()
	c.ID = ""

	mock.ExpectExec("INSERT INTO complaints").WillReturnError(assert.AnError)

	_, err := repo.CreateComplaint(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting complaint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_GetComplaint(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	c := testComplaint()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_name") + ".*" + regexp.QuoteMeta("FROM complaints WHERE id = $1")).
		WithArgs(c.ID).
		WillReturnRows(sqlmock.NewRows(complaintColumns).AddRow(complaintRowValues(c)...))

	got, err := repo.GetComplaint(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_GetComplaint_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)

	// not a UUID: never reaches the DB
	_, err := repo.GetComplaint(context.Background(), "42")
	assert.Equal(t, complaint.ErrNotFound, err)

	id := uuid.New().String()
	mock.ExpectQuery("SELECT (.+) FROM complaints").WithArgs(id).WillReturnRows(sqlmock.NewRows(complaintColumns))

	_, err = repo.GetComplaint(context.Background(), id)
	assert.Equal(t, complaint.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_QueryComplaints(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	c1, c2 := testComplaint(), testComplaint()
	c2.Status = complaint.StatusInProgress

	filter := &complaint.QueryFilter{
		Statuses: []complaint.Status{complaint.StatusPending, complaint.StatusInProgress},
		Limit:    5,
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM complaints WHERE status IN ($1,$2) ORDER BY created_at DESC LIMIT 5")).
		WithArgs("pending", "in_progress").
		WillReturnRows(sqlmock.NewRows(complaintColumns).
			AddRow(complaintRowValues(c1)...).
			AddRow(complaintRowValues(c2)...))

	got, err := repo.QueryComplaints(context.Background(), filter, nil)
	require.NoError(t, err)
	assert.Equal(t, []complaint.Complaint{c1, c2}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_UpdateComplaint_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	c := testComplaint()

	mock.ExpectExec("UPDATE complaints SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), c.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateComplaint(context.Background(), c)
	assert.Equal(t, complaint.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_DeleteComplaintsByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)
	id := uuid.New().String()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM complaints WHERE id IN ($1)")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteComplaintsByID(context.Background(), id, "not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_CountComplaints(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewComplaintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, category, COUNT(*) AS n FROM complaints GROUP BY status, category")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "category", "n"}).
			AddRow("pending", "hostel", 3).
			AddRow("resolved", "hostel", 1).
			AddRow("pending", "academic", 2))

	stats, err := repo.CountComplaints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.ByStatus[complaint.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[complaint.StatusResolved])
	assert.Equal(t, 0, stats.ByStatus[complaint.StatusRejected])
	assert.Equal(t, 4, stats.ByCategory["hostel"])
	assert.Equal(t, 2, stats.ByCategory["academic"])
	assert.Equal(t, 0, stats.ByCategory["library"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
