package logging

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Redacted replaces masked values.
const Redacted = "[REDACTED]"

// DefaultBodyAllowlist lists JSON fields logged verbatim in debug request and
// response logs. Anything else, such as customer emails and result rows, is
// redacted.
var DefaultBodyAllowlist = []string{
	"question", "sql", "detail", "retry_after", "id",
}

// MaskHeader redacts sensitive header values based on header name.
//
// Credential headers (X-API-Key, Authorization) are replaced by a
// fingerprint so log lines from one caller can be correlated. Secret-like
// headers are fully redacted. Other headers are returned unchanged.
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	switch lowerName {
	case "x-api-key", "authorization":
		if value == "" {
			return ""
		}
		return "sha256:" + Fingerprint(value)
	}

	if strings.Contains(lowerName, "password") ||
		strings.Contains(lowerName, "secret") ||
		strings.Contains(lowerName, "cookie") {
		return Redacted
	}

	return value
}

// MaskJSONBody redacts primitive fields not named in allowlist.
// Objects and arrays are always walked so nested allowlisted fields survive.
//
// A nil allowlist returns body unchanged. Bodies that are not valid JSON are
// returned as-is.
func MaskJSONBody(body []byte, allowlist []string) []byte {
	if allowlist == nil || len(body) == 0 {
		return body
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, field := range allowlist {
		allowed[field] = true
	}

	result, err := json.Marshal(maskJSONValue(data, allowed))
	if err != nil {
		return body
	}
	return result
}

func maskJSONValue(value any, allowed map[string]bool) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			switch val.(type) {
			case map[string]any, []any:
				if allowed[key] {
					out[key] = val
				} else {
					out[key] = maskJSONValue(val, allowed)
				}
			default:
				if allowed[key] {
					out[key] = val
				} else {
					out[key] = Redacted
				}
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = maskJSONValue(item, allowed)
		}
		return out
	default:
		return value
	}
}

// FormatBinaryData returns a size marker for non-text bodies.
func FormatBinaryData(data []byte) string {
	return fmt.Sprintf("[BINARY: %d bytes]", len(data))
}
