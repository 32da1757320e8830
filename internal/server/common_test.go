package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"hr-admin-platform/backend/internal/errs"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", errs.SessionNotFound, http.StatusNotFound},
		{"setting not found", errs.SettingNotFound, http.StatusNotFound},
		{"token exists", errs.TokenExists, http.StatusConflict},
		{"expiry in past", errs.ExpiryInPast, http.StatusBadRequest},
		{"missing field", errs.MissingField, http.StatusBadRequest},
		{"invalid setting value", errs.InvalidSettingValue, http.StatusBadRequest},
		{"timeout not configured", errs.TimeoutNotConfigured, http.StatusPreconditionFailed},
		{"wrapped sentinel", fmt.Errorf("%w: user_id", errs.MissingField), http.StatusBadRequest},
		{"store failure", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
