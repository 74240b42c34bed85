package domain

import "strings"

// IsBlank reports whether s is empty after trimming leading/trailing whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
