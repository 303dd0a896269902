package gateway

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
)

// LoginResult carries the session credentials returned by /api/login and /api/token-refresh.
type LoginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

type ComplaintQuery struct {
	Search      string
	Statuses    []complaint.Status
	Categories  []string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Ordering    []string // eg. "-created_at"
}

func (q ComplaintQuery) values() url.Values {
	vals := make(url.Values)
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	for _, s := range q.Statuses {
		vals.Add("status", string(s))
	}
	for _, c := range q.Categories {
		vals.Add("category", c)
	}
	if !q.CreatedFrom.IsZero() {
		vals.Set("created_from", q.CreatedFrom.Format(time.RFC3339))
	}
	if !q.CreatedTo.IsZero() {
		vals.Set("created_to", q.CreatedTo.Format(time.RFC3339))
	}
	if len(q.Ordering) > 0 {
		vals.Set("ordering", strings.Join(q.Ordering, ","))
	}
	return vals
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	if err := c.call(ctx, "/api/login", &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "password": password},
	}, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) RefreshToken(ctx context.Context) (LoginResult, error) {
	var res LoginResult
	if err := c.call(ctx, "/api/token-refresh", &Options{Method: http.MethodPost}, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Register self-registers a student.
func (c *Client) Register(ctx context.Context, nu user.NewUser) (user.User, error) {
	return c.createUser(ctx, "/api/registeration", nu)
}

// RegisterAdmin creates an admin; requires an admin session.
func (c *Client) RegisterAdmin(ctx context.Context, nu user.NewUser) (user.User, error) {
	return c.createUser(ctx, "/api/adminRegisteration", nu)
}

func (c *Client) createUser(ctx context.Context, endpoint string, nu user.NewUser) (user.User, error) {
	var usr user.User
	if err := c.call(ctx, endpoint, &Options{Method: http.MethodPost, Body: nu}, &usr); err != nil {
		return usr, err
	}
	return usr, nil
}

// SubmitComplaint posts the complaint form as multipart/form-data.
func (c *Client) SubmitComplaint(ctx context.Context, nc complaint.NewComplaint) (complaint.Complaint, error) {
	var res complaint.Complaint

	var body strings.Builder
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"student_name", nc.StudentName},
		{"matric_number", nc.MatricNumber},
		{"email", nc.Email},
		{"department", nc.Department},
		{"level", nc.Level},
		{"category", nc.Category},
		{"subject", nc.Subject},
		{"description", nc.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return res, errors.Wrapf(err, "writing %s", f[0])
		}
	}
	if err := w.Close(); err != nil {
		return res, errors.Wrap(err, "closing multipart writer")
	}

	if err := c.call(ctx, "/api/complaintform", &Options{
		Method:  http.MethodPost,
		Body:    strings.NewReader(body.String()),
		Headers: http.Header{"Content-Type": {w.FormDataContentType()}},
	}, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) Complaints(ctx context.Context, q ComplaintQuery) ([]complaint.Complaint, error) {
	var res []complaint.Complaint
	if err := c.call(ctx, "/api/complaints", &Options{Query: q.values()}, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Complaint(ctx context.Context, id string) (complaint.Complaint, error) {
	var res complaint.Complaint
	if err := c.call(ctx, "/api/complaints/"+url.PathEscape(id), nil, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) UpdateComplaintStatus(ctx context.Context, id string, us complaint.UpdateStatus) (complaint.Complaint, error) {
	var res complaint.Complaint
	if err := c.call(ctx, "/api/complaints/"+url.PathEscape(id), &Options{Method: http.MethodPatch, Body: us}, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) DeleteComplaint(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/api/complaints/"+url.PathEscape(id), &Options{Method: http.MethodDelete})
	return err
}

func (c *Client) Stats(ctx context.Context) (complaint.Stats, error) {
	var res complaint.Stats
	if err := c.call(ctx, "/api/stats", nil, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) Dashboard(ctx context.Context) (complaint.Dashboard, error) {
	var res complaint.Dashboard
	if err := c.call(ctx, "/api/dashboard", nil, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Client) Categories(ctx context.Context) ([]complaint.Category, error) {
	var res []complaint.Category
	if err := c.call(ctx, "/api/categories", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// call issues the request and decodes its JSON body into v.
func (c *Client) call(ctx context.Context, endpoint string, opts *Options, v interface{}) error {
	raw, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	return DecodeJSON(raw, v)
}
