package util

import (
	"strconv"
	"strings"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return val
	}
	return defaultValue
}

// ParseInt64 parses a string to an int64, returning defaultValue if parsing fails
func ParseInt64(s string, defaultValue int64) int64 {
	if val, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return val
	}
	return defaultValue
}

// ParseList splits a comma-separated query value, dropping blanks
func ParseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
