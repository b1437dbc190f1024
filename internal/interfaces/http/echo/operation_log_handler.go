package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mohammadpnp/customer-import/internal/application/audit"
)

type OperationLogHandler struct {
	list audit.ListOperationLogs
}

func NewOperationLogHandler(list audit.ListOperationLogs) *OperationLogHandler {
	return &OperationLogHandler{list: list}
}

// List pages through every entry, newest first.
func (h *OperationLogHandler) List(c echo.Context) error {
	var in audit.ListOperationLogsInput
	in.Page, _ = strconv.Atoi(c.QueryParam("page"))
	in.Size, _ = strconv.Atoi(c.QueryParam("size"))
	return h.respond(c, in)
}

// Search filters by username, operation, target, status, start_time and
// end_time on top of the paging of List.
func (h *OperationLogHandler) Search(c echo.Context) error {
	in := audit.ListOperationLogsInput{
		Username:  c.QueryParam("username"),
		Operation: c.QueryParam("operation"),
		Target:    c.QueryParam("target"),
		Status:    c.QueryParam("status"),
	}
	in.Page, _ = strconv.Atoi(c.QueryParam("page"))
	in.Size, _ = strconv.Atoi(c.QueryParam("size"))

	var err error
	if in.From, err = parseTimeParam(c.QueryParam("start_time"), false); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_time", "start_time must be RFC3339 or YYYY-MM-DD")
	}
	if in.To, err = parseTimeParam(c.QueryParam("end_time"), true); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_time", "end_time must be RFC3339 or YYYY-MM-DD")
	}
	return h.respond(c, in)
}

func (h *OperationLogHandler) respond(c echo.Context, in audit.ListOperationLogsInput) error {
	out, err := h.list.Execute(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, audit.ErrInvalidTimeRange) {
			return respondError(c, http.StatusBadRequest, "invalid_time_range", "start_time is after end_time")
		}
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to list operation logs")
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
