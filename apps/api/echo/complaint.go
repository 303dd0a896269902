package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core/complaint"
)

const contextComplaintKey = "object"

var errComplaintNotFoundInCtx = errors.New("complaint object not found in echo.Context")

type complaintAPI struct {
	svc      complaint.Service
	validate *validator.Validate
}

func registerComplaintAPI(g *echo.Group, auth *Auth, svc complaint.Service, validate *validator.Validate) {
	api := complaintAPI{
		svc:      svc,
		validate: validate,
	}

	// anonymous or authed submissions
	g.POST("/complaintform", api.submit, auth.Optional())
	g.GET("/categories", api.queryCategories)

	// admin endpoints
	ag := g.Group("", auth.Required(), adminMiddleware())
	ag.GET("/complaints", api.query)
	ag.GET("/stats", api.stats)
	ag.GET("/dashboard", api.dashboard)

	dg := ag.Group("/complaints/:id", complaintObjectMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PATCH("", api.updateStatus)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *complaintAPI) submit(ctx echo.Context) error {
	var data complaint.NewComplaint
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComplaint")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var submittedBy string
	if claims, err := getContextClaims(ctx); err == nil {
		submittedBy = claims.Subject
	}

	c, err := api.svc.Submit(ctx.Request().Context(), data, submittedBy)
	if err != nil {
		return errors.Wrap(err, "submitting complaint")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *complaintAPI) query(ctx echo.Context) error {
	filter := complaintFilter(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	cs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying complaints")
	}
	if cs == nil {
		cs = []complaint.Complaint{}
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *complaintAPI) retrieve(ctx echo.Context) error {
	c, ok := ctx.Get(contextComplaintKey).(complaint.Complaint)
	if !ok {
		return errors.Wrap(errComplaintNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *complaintAPI) updateStatus(ctx echo.Context) error {
	c, ok := ctx.Get(contextComplaintKey).(complaint.Complaint)
	if !ok {
		return errors.Wrap(errComplaintNotFoundInCtx, "retrieving object from context")
	}

	var data complaint.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.UpdateStatus(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating complaint status")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *complaintAPI) destroy(ctx echo.Context) error {
	c, ok := ctx.Get(contextComplaintKey).(complaint.Complaint)
	if !ok {
		return errors.Wrap(errComplaintNotFoundInCtx, "retrieving object from context")
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting complaint")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *complaintAPI) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting complaints")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *complaintAPI) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *complaintAPI) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, complaint.Categories)
}

// complaintObjectMiddleware loads the complaint named by the `:id` path param into the context.
func complaintObjectMiddleware(svc complaint.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == complaint.ErrNotFound {
					return errHTTPNotFound
				}
				return errors.Wrap(err, "finding complaint by ID")
			}
			ctx.Set(contextComplaintKey, c)
			return next(ctx)
		}
	}
}
