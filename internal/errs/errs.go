// Package errs holds the sentinel errors shared by the session, settings,
// and policy code paths. Handlers map them to HTTP status codes.
package errs

import "errors"

var (
	SessionNotFound = errors.New("session not found")
	SettingNotFound = errors.New("setting not found")

	// TokenExists is returned when a session insert collides on session_token.
	TokenExists = errors.New("session token already exists")

	ExpiryInPast        = errors.New("expires_at must be in the future")
	MissingField        = errors.New("required field missing")
	InvalidSettingValue = errors.New("invalid setting value")

	// TimeoutNotConfigured is returned by cleanup when no session_timeout
	// setting exists. Cleanup requires an explicit timeout policy; read-only
	// compliance checks treat the missing setting as vacuously satisfied.
	TimeoutNotConfigured = errors.New("session_timeout setting is not configured")
)
