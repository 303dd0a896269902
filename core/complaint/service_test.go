package complaint_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
	emailsvc "github.com/trezcool/nacos/services/email"
	inmemdb "github.com/trezcool/nacos/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T) complaint.Service {
	t.Helper()
	conf := &core.Config{
		AppName:          "NACOS Complaint System",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:8000",
		DefaultFromEmail: mail.Address{Address: "noreply@nacos.test"},
	}
	core.ParseEmailTemplates(conf, nopLogger{})
	emailsvc.ResetSentMessages()

	db := inmemdb.Open()
	return complaint.NewService(inmemdb.NewComplaintRepository(db), emailsvc.NewConsoleServiceMock(conf, nopLogger{}))
}

func newComplaint(subject, category string) complaint.NewComplaint {
	return complaint.NewComplaint{
		StudentName:  "Adaobi Okafor",
		MatricNumber: "CSC/2021/042",
		Email:        "adaobi@unn.edu.ng",
		Department:   "Computer Science",
		Level:        "300",
		Category:     category,
		Subject:      subject,
		Description:  "Nothing works",
	}
}

func TestNewComplaint_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	complaint.InitValidators(validate, translator)

	valid := newComplaint("Broken window", "hostel")
	valid.Email = "  AdaObi@UNN.edu.ng "
	require.NoError(t, valid.Validate(validate))
	assert.Equal(t, "adaobi@unn.edu.ng", valid.Email)

	tests := []struct {
		name  string
		edit  func(nc *complaint.NewComplaint)
		field string
	}{
		{"blank subject", func(nc *complaint.NewComplaint) { nc.Subject = "   " }, "subject"},
		{"bad matric", func(nc *complaint.NewComplaint) { nc.MatricNumber = "42" }, "matric_number"},
		{"bad email", func(nc *complaint.NewComplaint) { nc.Email = "ada" }, "email"},
		{"unknown category", func(nc *complaint.NewComplaint) { nc.Category = "parking" }, "category"},
		{"bad level", func(nc *complaint.NewComplaint) { nc.Level = "700" }, "level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nc := newComplaint("Broken window", "hostel")
			tc.edit(&nc)
			err := nc.Validate(validate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'"+tc.field+"'")
		})
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Submit(ctx, newComplaint("Broken window", "hostel"), "")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, complaint.StatusPending, c.Status)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Complaint received", msg.Subject)
	assert.Contains(t, msg.TextContent, c.ID)
	assert.Contains(t, msg.HTMLContent, "Broken window")
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	c, err := svc.Submit(ctx, newComplaint("Missing result", "academic"), "")
	require.NoError(t, err)

	c, err = svc.UpdateStatus(ctx, c.ID, complaint.UpdateStatus{Status: complaint.StatusResolved, AdminNote: "Result uploaded"})
	require.NoError(t, err)
	assert.Equal(t, complaint.StatusResolved, c.Status)

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Complaint status updated", msg.Subject)
	assert.Contains(t, msg.TextContent, "Result uploaded")

	// resolved -> rejected is not a valid transition
	_, err = svc.UpdateStatus(ctx, c.ID, complaint.UpdateStatus{Status: complaint.StatusRejected})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	// same status: only the note changes, no email
	n := len(emailsvc.SentMessages)
	c, err = svc.UpdateStatus(ctx, c.ID, complaint.UpdateStatus{Status: complaint.StatusResolved, AdminNote: "Closed"})
	require.NoError(t, err)
	assert.Equal(t, "Closed", c.AdminNote)
	assert.Len(t, emailsvc.SentMessages, n)

	_, err = svc.UpdateStatus(ctx, "not-an-id", complaint.UpdateStatus{Status: complaint.StatusResolved})
	assert.Equal(t, complaint.ErrNotFound, err)
}

func TestService_QueryAndDashboard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var ids []string
	for i, cat := range []string{"hostel", "hostel", "academic", "finance", "library", "ict", "welfare"} {
		c, err := svc.Submit(ctx, newComplaint("Complaint "+string(rune('A'+i)), cat), "")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	cs, err := svc.Query(ctx, &complaint.QueryFilter{Categories: []string{"hostel"}}, nil)
	require.NoError(t, err)
	assert.Len(t, cs, 2)

	cs, err = svc.Query(ctx, &complaint.QueryFilter{Search: "complaint c"}, nil)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "academic", cs[0].Category)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, dash.Stats.Total)
	assert.Equal(t, 2, dash.Stats.ByCategory["hostel"])
	assert.Equal(t, 7, dash.Stats.ByStatus[complaint.StatusPending])
	assert.Len(t, dash.Recent, 5)

	n, err := svc.Delete(ctx, ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 0, stats.ByCategory["hostel"])
}
