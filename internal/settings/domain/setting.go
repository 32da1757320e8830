package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hr-admin-platform/backend/internal/errs"
)

// Setting keys recognized by the policy evaluator and cleanup.
const (
	KeySessionTimeout         = "session_timeout"
	KeySessionConcurrentLimit = "session_concurrent_limit"
)

// ValueKind tags the parsed type of a setting value.
type ValueKind int

const (
	StringValue ValueKind = iota
	IntValue
	BoolValue
)

// Value is a setting value parsed and validated once when the row is read,
// instead of re-parsing the raw string at each policy evaluation.
type Value struct {
	Kind ValueKind
	Int  int
	Bool bool
	Str  string
}

// SecuritySetting is one persisted key/value security configuration row.
// At most one row exists per key.
type SecuritySetting struct {
	ID        string
	Key       string
	Value     Value
	Raw       string
	Category  string
	UpdatedBy string // empty when never updated by a user
	UpdatedAt time.Time
}

func kindFor(key string) ValueKind {
	switch key {
	case KeySessionTimeout, KeySessionConcurrentLimit:
		return IntValue
	default:
		return StringValue
	}
}

// ParseValue validates raw for the given key and returns the typed value.
// Integer-typed keys must hold a positive integer.
func ParseValue(key, raw string) (Value, error) {
	switch kindFor(key) {
	case IntValue:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s=%q is not an integer", errs.InvalidSettingValue, key, raw)
		}
		if n <= 0 {
			return Value{}, fmt.Errorf("%w: %s must be positive, got %d", errs.InvalidSettingValue, key, n)
		}
		return Value{Kind: IntValue, Int: n}, nil
	case BoolValue:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1":
			return Value{Kind: BoolValue, Bool: true}, nil
		case "false", "0":
			return Value{Kind: BoolValue, Bool: false}, nil
		default:
			return Value{}, fmt.Errorf("%w: %s=%q is not a boolean", errs.InvalidSettingValue, key, raw)
		}
	default:
		return Value{Kind: StringValue, Str: raw}, nil
	}
}
