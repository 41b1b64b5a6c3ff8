package goble

import "strings"

// normalizeUUID converts a UUID string to the internal lookup format
// (lowercase, no dashes). Handles both dashed and already normalized forms.
func normalizeUUID(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}
