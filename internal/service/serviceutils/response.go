package serviceutils

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/logger"
)

// ResponseDTO is the envelope every JSON endpoint answers with.
type ResponseDTO struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
}

// ResponseSuccess writes data inside the envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, ResponseDTO{Message: message, Status: status, Data: data})
}

// ResponseError logs err and writes message inside the envelope. err itself
// is never sent to the client.
func ResponseError(c echo.Context, status int, message string, err error) error {
	if err != nil {
		ctx := c.Request().Context()
		if status >= 500 {
			logger.ErrorLog(ctx, "%s: %v", message, err)
		} else {
			logger.DebugLog(ctx, "%s: %v", message, err)
		}
	}
	return c.JSON(status, ResponseDTO{Message: message, Status: status, Data: nil})
}
