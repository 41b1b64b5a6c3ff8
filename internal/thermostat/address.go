package thermostat

import (
	"fmt"
	"strings"
)

// NormalizeAddress converts a device address to its canonical identity:
// lower-case, colon-separated. Addresses differing only in separator
// character or case normalize to the same identity, and the function is
// idempotent.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.ReplaceAll(addr, "-", ":"))
}

// ValidateAddress normalizes addr and checks that it is a plausible device
// identity: non-empty, hex digits and colon separators only. Platform stacks
// report either MAC addresses or peripheral UUIDs, both of which fit.
func ValidateAddress(addr string) (string, error) {
	normalized := NormalizeAddress(addr)
	if normalized == "" {
		return "", fmt.Errorf("address cannot be empty")
	}
	for _, r := range normalized {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r == ':':
		default:
			return "", fmt.Errorf("invalid address %q: unexpected character %q", addr, r)
		}
	}
	return normalized, nil
}
