package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Key patterns whose string values are fully redacted. Packed remote keys
// grant memory access to whoever holds them; they never belong in logs.
var sensitiveKeyPatterns = []string{
	"rkey",
	"mkey",
	"key_buffer",
	"secret",
	"credential",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive redacts attributes that carry key material. Byte-slice
// values under a sensitive key are replaced with a length annotation so the
// size stays diagnosable; strings are fully masked.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			redacted[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if !IsSensitiveKey(a.Key) {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		if buf, ok := a.Value.Any().([]byte); ok {
			return slog.String(a.Key, fmt.Sprintf("<%d bytes>", len(buf)))
		}
	}
	return a
}

// IsSensitiveKey checks if an attribute key suggests key material.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
