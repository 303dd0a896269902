package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nacos/client/session"
	"github.com/trezcool/nacos/core/complaint"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Request_headers(t *testing.T) {
	var got http.Header
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{"ok": true}`)
	})

	tests := []struct {
		name      string
		token     string
		opts      *Options
		wantAuth  string
		wantCType string
	}{
		{name: "anonymous", wantCType: contentTypeJSON},
		{name: "bearer token", token: "tkn", wantAuth: "Bearer tkn", wantCType: contentTypeJSON},
		{
			name:      "content type overridden",
			token:     "tkn",
			opts:      &Options{Headers: http.Header{"Content-Type": {"multipart/form-data; boundary=x"}}},
			wantAuth:  "Bearer tkn",
			wantCType: "multipart/form-data; boundary=x",
		},
		{
			name:     "content type removed",
			opts:     &Options{Headers: http.Header{"Content-Type": {""}}},
			wantAuth: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(srv.URL, session.NewMemoryStore(session.Credentials{Token: tc.token}))
			raw, err := c.Request(context.Background(), "/api/ping", tc.opts)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok": true}`, string(raw))
			assert.Equal(t, tc.wantAuth, got.Get("Authorization"))
			assert.Equal(t, tc.wantCType, got.Get("Content-Type"))
		})
	}
}

func TestClient_Request_errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFields map[string]string
	}{
		{name: "error body", status: http.StatusBadRequest, body: `{"error": "authentication failed"}`, wantMsg: "authentication failed"},
		{
			name:       "field map",
			status:     http.StatusBadRequest,
			body:       `{"username": "required", "email": "invalid"}`,
			wantMsg:    "email: invalid; username: required",
			wantFields: map[string]string{"username": "required", "email": "invalid"},
		},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMsg: GenericErrorMessage},
		{name: "empty", status: http.StatusUnauthorized, wantMsg: GenericErrorMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := New(srv.URL, nil).Request(context.Background(), "/api/x", nil)
			require.Error(t, err)
			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tc.status, httpErr.Status)
			assert.Equal(t, tc.wantMsg, httpErr.Message)
			assert.Equal(t, tc.wantFields, httpErr.Fields)
			assert.Equal(t, tc.status, StatusCode(err))
			assert.Equal(t, tc.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestClient_Request_networkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL, nil).Request(context.Background(), "/api/x", nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_Fragment(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<section id="dashboard-section"></section>`)
	})
	c := New(srv.URL+"/", nil)

	html, err := c.Fragment(context.Background(), "dashboard")
	require.NoError(t, err)
	assert.Equal(t, `<section id="dashboard-section"></section>`, html)

	_, err = c.Fragment(context.Background(), "reports")
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestClient_Login(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "admin", "password": "secret"}, body)
		_, _ = io.WriteString(w, `{"token": "tkn", "role": "admin", "username": "admin"}`)
	})

	res, err := New(srv.URL, nil).Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, LoginResult{Token: "tkn", Role: "admin", Username: "admin"}, res)
}

func TestClient_SubmitComplaint(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "CSC/2019/001", r.FormValue("matric_number"))
		assert.Equal(t, "hostel", r.FormValue("category"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "c1", "status": "pending", "category": "hostel"}`)
	})

	c, err := New(srv.URL, nil).SubmitComplaint(context.Background(), complaint.NewComplaint{
		StudentName:  "Ada Obi",
		MatricNumber: "CSC/2019/001",
		Category:     "hostel",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, complaint.StatusPending, c.Status)
}

func TestClient_Complaints_query(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "water", q.Get("search"))
		assert.Equal(t, []string{"pending", "resolved"}, q["status"])
		assert.Equal(t, "-created_at,status", q.Get("ordering"))
		_, _ = io.WriteString(w, `[{"id": "c1"}, {"id": "c2"}]`)
	})

	cs, err := New(srv.URL, nil).Complaints(context.Background(), ComplaintQuery{
		Search:   "water",
		Statuses: []complaint.Status{complaint.StatusPending, complaint.StatusResolved},
		Ordering: []string{"-created_at", "status"},
	})
	require.NoError(t, err)
	assert.Len(t, cs, 2)
}

func TestClient_DeleteComplaint_noContent(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, New(srv.URL, nil).DeleteComplaint(context.Background(), "c1"))
}
