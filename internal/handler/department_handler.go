package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

// DepartmentHandler answers every client error with 400.
type DepartmentHandler struct {
	svc service.DepartmentService
}

func NewDepartmentHandler(svc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

// ListHandler handles GET /api/v1/departments
func (h *DepartmentHandler) ListHandler(c echo.Context) error {
	depts, err := h.svc.ListDepartments(c.Request().Context())
	if err != nil {
		return respondError(c, asBadRequest(errorStatus(err)), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully fetched list of departments", depts)
}

// GetHandler handles GET /api/v1/departments/:id
func (h *DepartmentHandler) GetHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid department ID", err)
	}

	dept, err := h.svc.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return respondError(c, asBadRequest(errorStatus(err)), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully fetched department", dept)
}

// CreateHandler handles POST /api/v1/departments
func (h *DepartmentHandler) CreateHandler(c echo.Context) error {
	var req domain.Department
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	dept, err := h.svc.CreateDepartment(c.Request().Context(), req)
	if err != nil {
		return respondError(c, asBadRequest(errorStatus(err)), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully created department", dept)
}

// UpdateHandler handles PUT /api/v1/departments
func (h *DepartmentHandler) UpdateHandler(c echo.Context) error {
	var req domain.Department
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	dept, err := h.svc.UpdateDepartment(c.Request().Context(), req)
	if err != nil {
		return respondError(c, asBadRequest(errorStatus(err)), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully updated department", dept)
}

// DeleteHandler handles DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid department ID", err)
	}

	if err := h.svc.DeleteDepartment(c.Request().Context(), id); err != nil {
		return respondError(c, asBadRequest(errorStatus(err)), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully deleted department", nil)
}
