package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/customer-import/internal/application/customer"
)

type CustomerRemarkHandler struct {
	get    app.GetCustomerRemark
	save   app.SaveCustomerRemark
	delete app.DeleteCustomerRemark
}

type saveCustomerRemarkRequest struct {
	Remark string `json:"remark"`
}

func NewCustomerRemarkHandler(get app.GetCustomerRemark, save app.SaveCustomerRemark, deleteRemark app.DeleteCustomerRemark) *CustomerRemarkHandler {
	return &CustomerRemarkHandler{get: get, save: save, delete: deleteRemark}
}

func (h *CustomerRemarkHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	out, err := h.get.Execute(c.Request().Context(), app.GetCustomerRemarkInput{CustomerID: id})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerRemarkHandler) Save(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	var req saveCustomerRemarkRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.save.Execute(c.Request().Context(), app.SaveCustomerRemarkInput{CustomerID: id, Remark: req.Remark})
	if err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *CustomerRemarkHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return customerError(c, app.ErrInvalidCustomerID)
	}

	if err := h.delete.Execute(c.Request().Context(), app.DeleteCustomerRemarkInput{CustomerID: id}); err != nil {
		return customerError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]int64{"customer_id": id}})
}
