package echo

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/customer-import/internal/application/customer"
)

type CustomerHandler struct {
	get        app.GetCustomerByID
	save       app.SaveCustomer
	delete     app.DeleteCustomers
	search     app.SearchCustomers
	count      app.CountCustomers
	countToday app.CountTodayCustomers
	batchQuery app.BatchQueryCustomers
}

type saveCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type batchDeleteCustomersRequest struct {
	IDs []int64 `json:"ids"`
}

type batchQueryRequest struct {
	Items []app.BatchQueryItem `json:"items"`
}

func NewCustomerHandler(
	get app.GetCustomerByID,
	save app.SaveCustomer,
	deleteCustomers app.DeleteCustomers,
	search app.SearchCustomers,
	count app.CountCustomers,
	countToday app.CountTodayCustomers,
) *CustomerHandler {
	return &CustomerHandler{
		get:        get,
		save:       save,
		delete:     deleteCustomers,
		search:     search,
		count:      count,
		countToday: countToday,
	}
}

// WithBatchQuery enables POST /customers/batch-query.
func (h *CustomerHandler) WithBatchQuery(uc app.BatchQueryCustomers) *CustomerHandler {
	h.batchQuery = uc
	return h
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	out, err := h.get.Execute(c.Request().Context(), app.GetCustomerByIDInput{ID: id})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var req saveCustomerRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.save.Execute(c.Request().Context(), app.SaveCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusCreated, apiResponse{Data: out})
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	var req saveCustomerRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.save.Execute(c.Request().Context(), app.SaveCustomerInput{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	out, err := h.delete.Execute(c.Request().Context(), app.DeleteCustomersInput{IDs: []int64{id}})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) BatchDelete(c echo.Context) error {
	var req batchDeleteCustomersRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.delete.Execute(c.Request().Context(), app.DeleteCustomersInput{IDs: req.IDs})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// Search filters by the query parameters name, phone, email, address,
// task_id, created_from and created_to, and pages with page and size.
func (h *CustomerHandler) Search(c echo.Context) error {
	in := app.SearchCustomersInput{
		Name:    c.QueryParam("name"),
		Phone:   c.QueryParam("phone"),
		Email:   c.QueryParam("email"),
		Address: c.QueryParam("address"),
		TaskID:  c.QueryParam("task_id"),
	}
	in.Page, _ = strconv.Atoi(c.QueryParam("page"))
	in.Size, _ = strconv.Atoi(c.QueryParam("size"))

	var err error
	if in.CreatedFrom, err = parseTimeParam(c.QueryParam("created_from"), false); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_time", "created_from must be RFC3339 or YYYY-MM-DD")
	}
	if in.CreatedTo, err = parseTimeParam(c.QueryParam("created_to"), true); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_time", "created_to must be RFC3339 or YYYY-MM-DD")
	}

	out, err := h.search.Execute(c.Request().Context(), in)
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) BatchQuery(c echo.Context) error {
	var req batchQueryRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.batchQuery.Execute(c.Request().Context(), app.BatchQueryInput{Items: req.Items})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) Count(c echo.Context) error {
	out, err := h.count.Execute(c.Request().Context())
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerHandler) CountToday(c echo.Context) error {
	out, err := h.countToday.Execute(c.Request().Context())
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// parseTimeParam accepts RFC3339 or a bare date. A bare date used as an upper
// bound covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func customerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidCustomerID):
		return respondError(c, http.StatusBadRequest, "invalid_customer_id", "id must be a positive integer")
	case errors.Is(err, app.ErrInvalidCustomer):
		return respondError(c, http.StatusBadRequest, "invalid_customer", err.Error())
	case errors.Is(err, app.ErrInvalidBatchQuery):
		return respondError(c, http.StatusBadRequest, "invalid_batch_query", err.Error())
	case errors.Is(err, app.ErrRemarkTooLong):
		return respondError(c, http.StatusBadRequest, "remark_too_long", "remark is too long")
	case errors.Is(err, app.ErrCustomerNotFound):
		return respondError(c, http.StatusNotFound, "not_found", "customer not found")
	default:
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to process customer request")
	}
}
