package user

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/nacos/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestNewUserValidation(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	LoadCommonPasswords(nopLogger{})

	newUser := func(pwd string) NewUser {
		return NewUser{Name: "Ada Obi", Username: "adaobi", Email: "ada@nacos.test", Password: pwd, PasswordConfirm: pwd}
	}

	tests := []struct {
		name    string
		nu      NewUser
		wantFld string
		wantMsg string
	}{
		{name: "valid", nu: newUser("Kp9#vLq2x")},
		{
			name: "username or email required", nu: NewUser{Name: "Ada", Password: "Kp9#vLq2x", PasswordConfirm: "Kp9#vLq2x"},
			wantFld: "username", wantMsg: usernameOrEmailText,
		},
		{name: "too short", nu: newUser("Kp9#v"), wantFld: "password", wantMsg: pwdMinLenText},
		{name: "whitespace", nu: newUser("Kp9# vLq2x"), wantFld: "password", wantMsg: pwdNoSpaceText},
		{name: "all numeric", nu: newUser("1234567890123"), wantFld: "password", wantMsg: pwdNotAllNumText},
		{name: "not complex", nu: newUser("kp9vlq2xzz"), wantFld: "password", wantMsg: pwdComplexityText},
		{name: "similar to username", nu: newUser("adaobi#1A"), wantFld: "password", wantMsg: pwdAttrSimText},
		{name: "common", nu: newUser("Student@123"), wantFld: "password", wantMsg: pwdNoCommonText},
		{
			name: "password mismatch", nu: NewUser{Name: "Ada", Email: "ada@nacos.test", Password: "Kp9#vLq2x", PasswordConfirm: "other"},
			wantFld: "password_confirm",
		},
		{
			name: "unknown role", nu: NewUser{Name: "Ada", Email: "ada@nacos.test", Password: "Kp9#vLq2x", PasswordConfirm: "Kp9#vLq2x", Roles: []string{"teacher:"}},
			wantFld: "roles", wantMsg: allRolesText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.nu)
			if tt.wantFld == "" {
				if err != nil {
					t.Fatalf("validate.Struct() unexpected error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v, want validator.ValidationErrors", err)
			}
			var found bool
			for _, vErr := range vErrs {
				if vErr.Field() == tt.wantFld {
					found = true
					if msg := vErr.Translate(translator); tt.wantMsg != "" && msg != tt.wantMsg {
						t.Errorf("message = %q, want %q", msg, tt.wantMsg)
					}
				}
			}
			if !found {
				t.Errorf("no error on field %q in %v", tt.wantFld, vErrs)
			}
		})
	}
}

func TestMaxRolePriority(t *testing.T) {
	if got := MaxRolePriority([]string{RoleStudent, RoleAdmin}); got != RolePriority(RoleAdmin) {
		t.Errorf("MaxRolePriority() = %d, want %d", got, RolePriority(RoleAdmin))
	}
	if got := MaxRolePriority(nil); got != 0 {
		t.Errorf("MaxRolePriority(nil) = %d, want 0", got)
	}
}
