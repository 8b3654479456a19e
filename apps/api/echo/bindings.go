package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/reportcard/core"
)

var orderingParam = "ordering"

// Ordering binds `?ordering=name,-created_at` style query params.
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

// DestroyMultipleRequest binds `?id=..&id=..`.
type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type ClipboardResponse struct {
	Text string `json:"text"`
}
