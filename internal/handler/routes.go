package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Employee   *EmployeeHandler
	Department *DepartmentHandler
	Config     *ConfigHandler
	Health     *HealthHandler
	// JWTSecret enables bearer token principals; empty trusts X-Forwarded-User.
	JWTSecret string
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)
	e.GET("/api/config", h.Config.EndpointsHandler)

	v1 := e.Group("/api/v1")

	emp := v1.Group("/employees", Principal(h.JWTSecret))
	emp.GET("", h.Employee.ListHandler)
	emp.POST("/create", h.Employee.CreateHandler)
	emp.PUT("/update/:employeeId", h.Employee.UpdateHandler)
	emp.DELETE("/delete/:employeeId", h.Employee.DeleteHandler)
	emp.GET("/summary/calculate-avg-salary", h.Employee.AverageSalaryHandler)
	emp.GET("/summary/calculate-avg-age", h.Employee.AverageAgeHandler)
	emp.GET("/group", h.Employee.GroupHandler)
	emp.GET("/export", h.Employee.ExportHandler)
	emp.GET("/search", h.Employee.SearchHandler)
	emp.GET("/:employeeId", h.Employee.GetHandler)
	emp.GET("/:employeeId/history", h.Employee.HistoryHandler)

	dept := v1.Group("/departments")
	dept.GET("", h.Department.ListHandler)
	dept.GET("/:id", h.Department.GetHandler)
	dept.POST("", h.Department.CreateHandler)
	dept.PUT("", h.Department.UpdateHandler)
	dept.DELETE("/:id", h.Department.DeleteHandler)
}
