package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hr-admin-platform/backend/internal/errs"
)

// Resp is the envelope for every admin API response.
type Resp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResp(c *gin.Context, data ...any) {
	if len(data) == 0 {
		c.JSON(http.StatusOK, Resp{Code: http.StatusOK, Message: "success"})
		return
	}
	c.JSON(http.StatusOK, Resp{Code: http.StatusOK, Message: "success", Data: data[0]})
}

// ErrorResp maps the error taxonomy to an HTTP status. Anything outside the
// taxonomy is treated as the store being unavailable.
func ErrorResp(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logrus.WithError(err).Error("request failed")
	}
	c.JSON(code, Resp{Code: code, Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.SessionNotFound), errors.Is(err, errs.SettingNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.TokenExists):
		return http.StatusConflict
	case errors.Is(err, errs.ExpiryInPast),
		errors.Is(err, errs.MissingField),
		errors.Is(err, errs.InvalidSettingValue):
		return http.StatusBadRequest
	case errors.Is(err, errs.TimeoutNotConfigured):
		return http.StatusPreconditionFailed
	default:
		return http.StatusServiceUnavailable
	}
}
