package patch

import "strings"

// CoalesceText treats a blank string the same as a missing one.
func CoalesceText(ptr *string, fallback string) string {
	if ptr == nil || strings.TrimSpace(*ptr) == "" {
		return fallback
	}
	return strings.TrimSpace(*ptr)
}
