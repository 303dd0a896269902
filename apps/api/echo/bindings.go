package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/complaint"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// parseTime accepts RFC 3339 timestamps and plain dates. Anything else is ignored.
func parseTime(val string) time.Time {
	if val == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t
	}
	return time.Time{}
}

// complaintFilter reads complaint.QueryFilter from the query string.
// `status` and `category` may be repeated or comma separated.
func complaintFilter(ctx echo.Context) *complaint.QueryFilter {
	filter := &complaint.QueryFilter{
		Search:      ctx.QueryParam("search"),
		CreatedFrom: parseTime(ctx.QueryParam("created_from")),
		CreatedTo:   parseTime(ctx.QueryParam("created_to")),
	}
	for _, s := range splitParams(ctx.QueryParams()["status"]) {
		filter.Statuses = append(filter.Statuses, complaint.Status(s))
	}
	filter.Categories = splitParams(ctx.QueryParams()["category"])
	filter.Clean()
	return filter
}

func splitParams(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
