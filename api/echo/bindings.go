package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kozi/core"
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
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func bindPagination(ctx echo.Context) core.Pagination {
	return core.ParsePagination(ctx.QueryParam("page"), ctx.QueryParam("limit"))
}

// bindFilter applies the filter whitelist to the raw query string; only the
// first value of a repeated parameter is considered.
func bindFilter(ctx echo.Context, allowedFilters []string) core.Filter {
	params := ctx.QueryParams()
	raw := make(map[string]interface{}, len(params))
	for key, vals := range params {
		if len(vals) > 0 {
			raw[key] = vals[0]
		}
	}
	return core.BuildWhereClause(raw, allowedFilters)
}

func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
