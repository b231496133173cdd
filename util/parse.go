package util

import (
	"fmt"
	"strings"
)

// ParseSize parses a human-readable size string (e.g. "10MB", "512KB", "2GB")
// into bytes. Returns defaultBytes if the string cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	}

	var val int64
	var rest string
	if n, _ := fmt.Sscanf(s, "%d%s", &val, &rest); n == 1 && val >= 0 {
		return val * multiplier
	}
	return defaultBytes
}

// MaskDSN hides the parts of a connection string that may carry
// credentials: the query ("file:films.db?_auth_pass=x" becomes
// "file:films.db?***") and any user info before the host.
func MaskDSN(dsn string) string {
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i] + "?***"
	}
	at := strings.LastIndexByte(dsn, '@')
	if at < 0 {
		return dsn
	}
	start := 0
	if j := strings.Index(dsn, "://"); j >= 0 && j < at {
		start = j + len("://")
	}
	return dsn[:start] + "***" + dsn[at:]
}
