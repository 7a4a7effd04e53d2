package domain

import (
	"fmt"
	"strings"
)

// addressLen is "0x" plus 40 hex characters
const addressLen = 42

// NormalizeAddress validates a wallet address and lowercases it.
// Addresses are compared case-insensitively everywhere, so the
// lowercase form is the canonical one.
func NormalizeAddress(addr string) (string, error) {
	if len(addr) != addressLen || addr[0] != '0' || (addr[1] != 'x' && addr[1] != 'X') {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	for _, c := range addr[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	return strings.ToLower(addr), nil
}
