package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edusite/core"
)

var (
	orderingParam = "ordering"
	limitParam    = "limit"
)

// Ordering binds `?ordering=-createdAt,name`: a leading "-" means descending.
type Ordering struct {
	Orderings []core.Ordering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.Ordering{Field: field, Ascending: !descending})
	}
}

// bindLimit reads `?limit=N`; it falls back to def when missing and caps the value at max.
func bindLimit(ctx echo.Context, def, max int) (int, error) {
	val := ctx.QueryParam(limitParam)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 0, core.NewInvalidInputError("limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
