package repository

import (
	"reflect"
	"strings"
)

const (
	redactedMarker  = "[REDACTED]"
	truncatedMarker = "...[TRUNCATED]"

	// maxLoggedStringLen caps the length of any string that reaches a log
	// field; longer values are truncated.
	maxLoggedStringLen = 100
)

// sensitiveKeySubstrings flags map keys whose value must never appear in a
// log line. Matching is case-insensitive and substring-based, so "api_key"
// and "AuthToken" are both caught.
var sensitiveKeySubstrings = []string{
	"password", "token", "secret", "key", "api_key", "auth", "credential",
}

// Sanitize returns a copy of v safe for logging: sensitive map values are
// replaced with a redaction marker, long strings are truncated, and nested
// maps and slices are walked recursively. The input is never mutated.
func Sanitize(v any) any {
	if v == nil {
		return nil
	}

	switch t := v.(type) {
	case string:
		return sanitizeString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = redactedMarker
			} else {
				out[k] = Sanitize(val)
			}
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = redactedMarker
			} else {
				out[k] = sanitizeString(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Sanitize(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sanitizeString(item)
		}
		return out
	}

	// Other slice and map shapes go through reflection so caller-supplied
	// filter values of arbitrary element types are still covered.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Sanitize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			for _, mk := range rv.MapKeys() {
				k := mk.String()
				if isSensitiveKey(k) {
					out[k] = redactedMarker
				} else {
					out[k] = Sanitize(rv.MapIndex(mk).Interface())
				}
			}
			return out
		}
	}

	return v
}

func sanitizeString(s string) string {
	if len(s) > maxLoggedStringLen {
		return s[:maxLoggedStringLen] + truncatedMarker
	}
	return s
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeySubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
