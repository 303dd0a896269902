package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/nacos/apps/api/echo"
	"github.com/trezcool/nacos/core/user"
	"github.com/trezcool/nacos/tests"
)

const pwd = "Kp9#vLq2x"

func Test_userAPI_login(t *testing.T) {
	db.Flush()

	student := testutil.CreateUser(t, usrRepo, "Chika Eze", "chika", "chika@unn.edu.ng", pwd, nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@unn.edu.ng", pwd, []string{user.RoleAdmin}, true)
	testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@unn.edu.ng", pwd, nil, false)

	runHTTPTests(t, []httpTest{
		{
			name: "missing credentials", method: http.MethodPost, path: "/api/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: pwd}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "chika", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "gone", Password: pwd}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	login := func(uname string) LoginResponse {
		req, rec := newRequest(http.MethodPost, "/api/login", marchallObj(t, LoginRequest{Username: uname, Password: pwd}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	resp := login("CHIKA@unn.edu.ng") // by email, case-insensitive
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "student", resp.Role)
	assert.Equal(t, student.Username, resp.Username)

	resp = login(admin.Username)
	assert.Equal(t, "admin", resp.Role)

	usr, err := usrRepo.GetUser(t.Context(), user.GetFilter{ID: admin.ID})
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())
}

func Test_userAPI_register(t *testing.T) {
	db.Flush()
	testutil.CreateUser(t, usrRepo, "Taken", "taken", "taken@unn.edu.ng", pwd, nil, true)

	runHTTPTests(t, []httpTest{
		{
			name: "username taken", method: http.MethodPost, path: "/api/registeration",
			body: marchallObj(t, user.NewUser{
				Name: "Chika Eze", Username: "taken", Email: "chika@unn.edu.ng", Password: pwd, PasswordConfirm: pwd,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "password mismatch", method: http.MethodPost, path: "/api/registeration",
			body: marchallObj(t, user.NewUser{
				Name: "Chika Eze", Username: "chika", Password: pwd, PasswordConfirm: pwd + "!",
			}),
			wantCode: http.StatusBadRequest,
		},
	})

	// roles sent by the client are ignored
	req, rec := newRequest(http.MethodPost, "/api/registeration", marchallObj(t, user.NewUser{
		Name: "Chika Eze", Username: "chika", Email: "chika@unn.edu.ng", Password: pwd, PasswordConfirm: pwd,
		Roles: []string{user.RoleAdminOwner},
	}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var usr user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, "chika", usr.Username)
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.NotContains(t, rec.Body.String(), "password")
}

func Test_userAPI_registerAdmin(t *testing.T) {
	db.Flush()

	student := testutil.CreateUser(t, usrRepo, "Chika Eze", "chika", "chika@unn.edu.ng", pwd, nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@unn.edu.ng", pwd, []string{user.RoleAdmin}, true)
	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@unn.edu.ng", pwd, []string{user.RoleAdminOwner}, true)

	newAdmin := func(uname string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name: "New Admin", Username: uname, Password: pwd, PasswordConfirm: pwd, Roles: roles,
		})
	}

	runHTTPTests(t, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/adminRegisteration", body: newAdmin("staff1"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", method: http.MethodPost, path: "/api/adminRegisteration", body: newAdmin("staff1"),
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "cannot grant a higher role", method: http.MethodPost, path: "/api/adminRegisteration",
			body: newAdmin("staff1", user.RoleAdminOwner), token: getToken(t, admin),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/api/adminRegisteration",
			body: newAdmin("staff1", "janitor:"), token: getToken(t, owner), wantCode: http.StatusBadRequest,
		},
		{
			name: "admin", method: http.MethodPost, path: "/api/adminRegisteration",
			body: newAdmin("staff1"), token: getToken(t, admin), wantCode: http.StatusCreated,
		},
		{
			name: "owner grants owner", method: http.MethodPost, path: "/api/adminRegisteration",
			body: newAdmin("staff2", user.RoleAdminOwner), token: getToken(t, owner), wantCode: http.StatusCreated,
		},
	})

	usr, err := usrRepo.GetUser(t.Context(), user.GetFilter{Username: "staff1"})
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleAdmin}, usr.Roles)
	assert.True(t, usr.IsAdmin())
}

func Test_userAPI_refreshToken(t *testing.T) {
	db.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@unn.edu.ng", pwd, []string{user.RoleAdmin}, true)
	gone := testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@unn.edu.ng", pwd, []string{user.RoleAdmin}, false)

	runHTTPTests(t, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "invalid token", method: http.MethodPost, path: "/api/token-refresh", token: "not.a.jwt",
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/api/token-refresh", token: getToken(t, gone),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/api/token-refresh", getToken(t, admin))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Role)
	assert.Equal(t, "admin", resp.Username)
}
