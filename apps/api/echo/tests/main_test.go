package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	. "github.com/trezcool/nacos/apps/api/echo"
	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
	"github.com/trezcool/nacos/fragments"
	appfs "github.com/trezcool/nacos/fs"
	emailsvc "github.com/trezcool/nacos/services/email"
	inmemdb "github.com/trezcool/nacos/storage/database/inmem"
	"github.com/trezcool/nacos/tests"
)

var (
	db            *inmemdb.DB
	app           *Server
	usrRepo       user.Repository
	complaintRepo complaint.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf := &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "NACOS Complaint System",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:8000",
		DefaultFromEmail: mail.Address{Name: "NACOS", Address: "noreply@nacos.test"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}
	logger := testutil.NopLogger{}

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	complaintRepo = inmemdb.NewComplaintRepository(db)

	// set up services
	core.ParseEmailTemplates(conf, logger)
	user.LoadCommonPasswords(logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	complaint.InitValidators(validate, translator)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      user.NewService(usrRepo),
			ComplaintSvc: complaint.NewService(complaintRepo, mailSvc),
			Fragments:    fragments.New(appfs.FS, "sections"),
			Validate:     validate,
			Translator:   translator,
		},
	)

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newMultipartRequest(t *testing.T, path string, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("newMultipartRequest(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newMultipartRequest(): %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, usr user.User) string {
	token, err := app.Auth().GenerateToken(app.Auth().UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
