// Package sled implements the "cube the bits" recalibration over sled path segments.
package sled

import (
	"strconv"
	"strings"
)

// Extract returns every segment of path that parses as a base-10 uint32.
// A single leading '+' is accepted; anything else that does not parse is dropped.
func Extract(path string) []uint32 {
	segments := strings.Split(path, "/")
	ids := make([]uint32, 0, len(segments))
	for _, s := range segments {
		if v, ok := parseSegment(s); ok {
			ids = append(ids, v)
		}
	}
	return ids
}

func parseSegment(s string) (uint32, bool) {
	digits, _ := strings.CutPrefix(s, "+")
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// Cube XORs ids together and cubes the result. Arithmetic wraps modulo 2^32.
func Cube(ids []uint32) uint32 {
	var acc uint32
	for _, id := range ids {
		acc ^= id
	}
	return acc * acc * acc
}

// Recalibrate runs Extract and Cube over path.
func Recalibrate(path string) uint32 {
	return Cube(Extract(path))
}
