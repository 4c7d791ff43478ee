// Package toolutil provides shared helpers for the go_youtube MCP tools.
package toolutil

import (
	"fmt"
	"strings"
	"time"
)

// OrDefault returns def when v is zero or negative.
func OrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Required returns an error naming field when v is blank.
func Required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// CleanURLs trims every entry and drops blanks, keeping order.
func CleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Timestamp formats t as RFC 3339, or "" for the zero time.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
