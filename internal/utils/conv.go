package utils

import (
	"strconv"
)

// StringToUint parses a positive id, returns 0 if the input is not one
func StringToUint(s string) uint {
	i, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(i)
}
