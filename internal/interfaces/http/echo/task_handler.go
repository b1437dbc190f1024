package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/customer-import/internal/application/importing"
)

type TaskHandler struct {
	list   app.ListTasks
	get    app.GetTask
	latest app.GetLatestProcessingTask
	delete app.DeleteTasks
	remark app.UpdateTaskRemark
}

type batchDeleteTasksRequest struct {
	IDs           []string `json:"ids"`
	WithCustomers bool     `json:"with_customers"`
}

type updateRemarkRequest struct {
	Remark string `json:"remark"`
}

func NewTaskHandler(
	list app.ListTasks,
	get app.GetTask,
	latest app.GetLatestProcessingTask,
	deleteTasks app.DeleteTasks,
	remark app.UpdateTaskRemark,
) *TaskHandler {
	return &TaskHandler{list: list, get: get, latest: latest, delete: deleteTasks, remark: remark}
}

func (h *TaskHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	out, err := h.list.Execute(c.Request().Context(), app.ListTasksInput{Page: page, Size: size})
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TaskHandler) Get(c echo.Context) error {
	out, err := h.get.Execute(c.Request().Context(), app.GetTaskInput{ID: c.Param("id")})
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// LatestProcessing answers with data null when no import is running.
func (h *TaskHandler) LatestProcessing(c echo.Context) error {
	out, err := h.latest.Execute(c.Request().Context())
	if err != nil {
		return taskError(c, err)
	}
	if out == nil {
		return c.JSON(http.StatusOK, map[string]any{"data": nil})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TaskHandler) Delete(c echo.Context) error {
	withCustomers, _ := strconv.ParseBool(c.QueryParam("with_customers"))

	out, err := h.delete.Execute(c.Request().Context(), app.DeleteTasksInput{
		IDs:           []string{c.Param("id")},
		WithCustomers: withCustomers,
	})
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TaskHandler) BatchDelete(c echo.Context) error {
	var req batchDeleteTasksRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.delete.Execute(c.Request().Context(), app.DeleteTasksInput{
		IDs:           req.IDs,
		WithCustomers: req.WithCustomers,
	})
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TaskHandler) UpdateRemark(c echo.Context) error {
	var req updateRemarkRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	id := c.Param("id")
	if err := h.remark.Execute(c.Request().Context(), app.UpdateTaskRemarkInput{ID: id, Remark: req.Remark}); err != nil {
		return taskError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"id": id}})
}

func taskError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidTaskID):
		return respondError(c, http.StatusBadRequest, "invalid_task_id", "id must be a valid UUID")
	case errors.Is(err, app.ErrTaskNotFound):
		return respondError(c, http.StatusNotFound, "not_found", "import task not found")
	case errors.Is(err, app.ErrRemarkTooLong):
		return respondError(c, http.StatusBadRequest, "remark_too_long", "remark is too long")
	default:
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to process import task request")
	}
}
