// Package util provides parameter parsing helpers shared across components.
package util

import "strings"

// ParseBoolValue parses a boolean string with a default value.
// Accepts: true/1/yes/on and false/0/no/off (case-insensitive). Empty or
// invalid values return the default.
func ParseBoolValue(val string, defaultValue bool) bool {
	if val == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}
