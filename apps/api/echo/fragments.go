package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/nacos/fragments"
)

const fragmentExt = ".html"

type fragmentAPI struct {
	store *fragments.Store
}

func registerFragmentAPI(app *echo.Echo, store *fragments.Store) {
	api := fragmentAPI{store: store}
	app.GET("/", api.index)
	app.GET("/:fragment", api.fragment)
}

func (api *fragmentAPI) index(ctx echo.Context) error {
	return api.render(ctx, "index")
}

// fragment serves `/{name}.html`.
func (api *fragmentAPI) fragment(ctx echo.Context) error {
	name := ctx.Param("fragment")
	if !strings.HasSuffix(name, fragmentExt) {
		return errHTTPNotFound
	}
	return api.render(ctx, strings.TrimSuffix(name, fragmentExt))
}

func (api *fragmentAPI) render(ctx echo.Context, name string) error {
	out, err := api.store.Get(name)
	if err != nil {
		if errors.Cause(err) == fragments.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrapf(err, "rendering fragment %q", name)
	}
	return ctx.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, out)
}
