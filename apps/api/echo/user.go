package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
)

var errNoPermsToSetRoles = "not enough rights to set these roles"

type userAPI struct {
	svc      user.Service
	auth     *Auth
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, auth *Auth, svc user.Service, validate *validator.Validate) {
	api := userAPI{
		svc:      svc,
		auth:     auth,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/registeration", api.register)

	// authed endpoints
	ag := g.Group("", auth.Required())
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/adminRegisteration", api.registerAdmin, adminMiddleware())
	ag.GET("/roles", api.queryRoles, adminMiddleware())
}

// Handlers

func (api *userAPI) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.tokenResponse(ctx, api.auth.UserClaims(usr), usr)
}

// register is student self-registration.
func (api *userAPI) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Roles = []string{user.RoleStudent}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userAPI) registerAdmin(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if len(data.Roles) == 0 {
		data.Roles = []string{user.RoleAdmin}
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	// ctxUser cannot set a role > their own max role
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userAPI) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userAPI) refreshToken(ctx echo.Context) error {
	token, usr, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: usr.PortalRole(), Username: usr.Username})
}

func (api *userAPI) tokenResponse(ctx echo.Context, claims *Claims, usr user.User) error {
	token, err := api.auth.GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: usr.PortalRole(), Username: usr.Username})
}

type (
	LoginRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	// LoginResponse carries the session credentials the portal stores.
	LoginResponse struct {
		Token    string `json:"token"`
		Role     string `json:"role"`
		Username string `json:"username"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
