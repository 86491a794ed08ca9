package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
	"github.com/locvowork/employee_records/pkg/simpleexcel"
)

const (
	defaultSearchSize  = 20
	defaultHistorySize = 50
)

// EmployeeSearcher answers full-text queries from the search mirror.
type EmployeeSearcher interface {
	SearchEmployees(ctx context.Context, text string, size int) ([]database.EmployeeDoc, error)
}

// ChangeHistory reads the change log.
type ChangeHistory interface {
	ListChanges(ctx context.Context, entity, key string, limit int) ([]domain.ChangeRecord, error)
}

type EmployeeHandler struct {
	svc      service.EmployeeService
	search   EmployeeSearcher
	history  ChangeHistory
	pageSize int
}

type EmployeeHandlerOption func(*EmployeeHandler)

func WithSearcher(s EmployeeSearcher) EmployeeHandlerOption {
	return func(h *EmployeeHandler) { h.search = s }
}

func WithHistory(hist ChangeHistory) EmployeeHandlerOption {
	return func(h *EmployeeHandler) { h.history = hist }
}

// WithDefaultPageSize sets the page size used when the query omits one.
func WithDefaultPageSize(n int) EmployeeHandlerOption {
	return func(h *EmployeeHandler) {
		if n > 0 {
			h.pageSize = n
		}
	}
}

func NewEmployeeHandler(svc service.EmployeeService, opts ...EmployeeHandlerOption) *EmployeeHandler {
	h := &EmployeeHandler{svc: svc, pageSize: 5}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ListHandler handles GET /api/v1/employees?groupBy=&name=&page=&size=
func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	page, err := intQuery(c, "page", 0)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid page parameter", err)
	}
	size, err := intQuery(c, "size", h.pageSize)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid size parameter", err)
	}

	result, err := h.svc.ListEmployees(c.Request().Context(), c.QueryParam("name"), c.QueryParam("groupBy"),
		domain.PageRequest{Page: page, Size: size})
	if err != nil {
		return respondError(c, errorStatus(err), err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateHandler handles POST /api/v1/employees/create
func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	created, err := h.svc.CreateEmployee(c.Request().Context(), &req)
	if err != nil {
		status := errorStatus(err)
		// An unknown department is a bad request here, not a missing resource.
		if status == http.StatusNotFound {
			status = http.StatusBadRequest
		}
		return respondError(c, status, err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Successfully created new employee", created)
}

// GetHandler handles GET /api/v1/employees/:employeeId
func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	emp, err := h.svc.GetEmployee(c.Request().Context(), c.Param("employeeId"))
	if err != nil {
		return respondError(c, errorStatus(err), err)
	}
	return c.JSON(http.StatusOK, emp)
}

// UpdateHandler handles PUT /api/v1/employees/update/:employeeId
func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusUnauthorized); !ok {
		return nil
	}

	var patch domain.EmployeePatch
	if err := c.Bind(&patch); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	updated, err := h.svc.UpdateEmployee(c.Request().Context(), patch, c.Param("employeeId"))
	if err != nil {
		return respondError(c, errorStatus(err), err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteHandler handles DELETE /api/v1/employees/delete/:employeeId
func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	if _, err := h.svc.DeleteEmployee(c.Request().Context(), c.Param("employeeId")); err != nil {
		return respondError(c, errorStatus(err), err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AverageSalaryHandler handles GET /api/v1/employees/summary/calculate-avg-salary
func (h *EmployeeHandler) AverageSalaryHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	avg, err := h.svc.CalculateAverageSalary(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, avg)
}

// AverageAgeHandler handles GET /api/v1/employees/summary/calculate-avg-age
func (h *EmployeeHandler) AverageAgeHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	avg, err := h.svc.CalculateAverageAge(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, avg)
}

// GroupHandler handles GET /api/v1/employees/group?by=
func (h *EmployeeHandler) GroupHandler(c echo.Context) error {
	groups, err := h.svc.GroupByEmployees(c.Request().Context(), c.QueryParam("by"))
	if err != nil {
		return respondError(c, errorStatus(err), err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully grouped employees", groups)
}

// ExportHandler handles GET /api/v1/employees/export?name=&format=xlsx|csv
func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format), nil)
	}

	ctx := c.Request().Context()
	employees, err := h.svc.ExportEmployees(ctx, c.QueryParam("name"))
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}

	exporter, err := simpleexcel.NewDataExporterFromYAML(employeeReportTemplate)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}
	exporter.BindSectionData(exportSection, toExportRows(employees))

	var buf bytes.Buffer
	contentType := simpleexcel.ContentTypeXLSX
	if format == "csv" {
		contentType = simpleexcel.ContentTypeCSV
		err = exporter.ToCSV(&buf)
	} else {
		err = exporter.StreamTo(&buf)
	}
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}

	logger.InfoLog(ctx, "exported %d employees as %s", len(employees), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="employees.%s"`, format))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// SearchHandler handles GET /api/v1/employees/search?q=&size=
func (h *EmployeeHandler) SearchHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}
	if h.search == nil {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Search is not enabled", nil)
	}

	q := c.QueryParam("q")
	if q == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Query parameter q is required", nil)
	}
	size, err := intQuery(c, "size", defaultSearchSize)
	if err != nil || size < 1 {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid size parameter", err)
	}

	docs, err := h.search.SearchEmployees(c.Request().Context(), q, size)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully searched employees", docs)
}

// HistoryHandler handles GET /api/v1/employees/:employeeId/history
func (h *EmployeeHandler) HistoryHandler(c echo.Context) error {
	if _, ok := requirePrincipal(c, http.StatusBadRequest); !ok {
		return nil
	}
	if h.history == nil {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Change history is not enabled", nil)
	}

	ctx := c.Request().Context()
	employeeID := c.Param("employeeId")
	records, err := h.history.ListChanges(ctx, domain.EntityEmployee, employeeID, defaultHistorySize)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Successfully fetched change history", records)
}

// intQuery parses an optional integer query parameter.
func intQuery(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}
