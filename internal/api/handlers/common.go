package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/castlehq/checkmate/internal/utils"
)

type APIError struct {
	Code    utils.Code         `json:"code"`
	Message string             `json:"message"`
	Details []utils.FieldError `json:"details,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
			Details: ae.Details,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func requireUserID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok && id != 0 {
			return id, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return 0, false
}

// uintParam parses a numeric path parameter, writing the error itself.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		writeError(c, utils.EV("Params", "invalid path parameter", []utils.FieldError{
			{Field: name, Message: "must be a positive integer"},
		}))
		return 0, false
	}
	return uint(v), true
}
