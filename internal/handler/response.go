package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"indexscore/internal/apperr"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// fail maps a service error onto the response envelope: validation is a
// client error, missing ids are 404, everything else is an upstream
// failure.
func fail(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case apperr.IsNotFound(err):
		Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
