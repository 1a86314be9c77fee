// Package utils provides shared utilities for text, math, and logging.
package utils

import humanize "github.com/dustin/go-humanize"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Count formats n with thousands separators (12345 -> "12,345").
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Bytes formats a byte size for humans (2048 -> "2.0 kB").
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
