package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

type ConfigHandler struct {
	endpoints *config.ExternalAPIConfig
}

func NewConfigHandler(endpoints *config.ExternalAPIConfig) *ConfigHandler {
	return &ConfigHandler{endpoints: endpoints}
}

// EndpointsHandler handles GET /api/config
func (h *ConfigHandler) EndpointsHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Endpoints have successfully been initialized!", h.endpoints.Endpoints())
}
