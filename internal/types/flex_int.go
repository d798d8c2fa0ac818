package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt is an int that can be unmarshaled from a JSON number or a JSON
// string. Non-numeric input decodes to 0 instead of failing, so callers can
// coerce to their domain default (the browser client sent capacities and
// counts as free-form form values).
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	// Try unmarshaling as a number first
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	// Try unmarshaling as a string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(val)
		return nil
	}

	// Anything else falls back to zero rather than rejecting the request.
	*f = 0
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int converts FlexInt back to int.
func (f FlexInt) Int() int {
	return int(f)
}

// IntOr returns the value, or def when the value is not positive.
func (f FlexInt) IntOr(def int) int {
	if f < 1 {
		return def
	}
	return int(f)
}
