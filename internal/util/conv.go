package util

import (
	"strconv"
)

// MustParseUint converts s to an unsigned id, returning 0 when s is not a number.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseID parses a positive path id.
func ParseID(field, s string) (uint, error) {
	id := MustParseUint(s)
	if id == 0 {
		return 0, Invalid(field, "invalid "+field)
	}
	return id, nil
}
