package paymentlog

import (
	"encoding/json"
	"regexp"
)

const (
	maxStringLen   = 500
	maxArrayItems  = 10
	maxDepth       = 2
	truncateMarker = "…[truncated]"
	depthSentinel  = "[max depth]"
)

var sensitiveKey = regexp.MustCompile(`(?i)secret|key|password|token|signature|cvv|card|pan|otp`)

// Sanitize returns a copy of payload safe to persist: sensitive keys are
// dropped at every level, long strings are truncated, arrays are capped and
// nesting deeper than two levels below the root is replaced by a sentinel.
// Structs are normalized through their JSON form first.
func Sanitize(payload any) map[string]any {
	if payload == nil {
		return nil
	}
	root, ok := normalize(payload).(map[string]any)
	if !ok {
		return map[string]any{"value": sanitizeValue(normalize(payload), 1)}
	}
	return sanitizeMap(root, 0)
}

func sanitizeMap(in map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if sensitiveKey.MatchString(k) {
			continue
		}
		out[k] = sanitizeValue(v, depth+1)
	}
	return out
}

func sanitizeValue(v any, depth int) any {
	switch val := v.(type) {
	case string:
		return truncate(val)
	case map[string]any:
		if depth > maxDepth {
			return depthSentinel
		}
		return sanitizeMap(val, depth)
	case []any:
		if depth > maxDepth {
			return depthSentinel
		}
		if len(val) > maxArrayItems {
			val = val[:maxArrayItems]
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item, depth+1)
		}
		return out
	default:
		return val
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxStringLen {
		return s
	}
	return string(runes[:maxStringLen]) + truncateMarker
}

// normalize converts arbitrary values into the generic JSON shapes the
// sanitizer walks. Raw JSON bytes are decoded rather than stored as a blob.
func normalize(payload any) any {
	switch p := payload.(type) {
	case map[string]any, []any, string, float64, bool:
		return p
	case json.RawMessage:
		return decodeJSON(p)
	case []byte:
		return decodeJSON(p)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) any {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return truncate(string(raw))
	}
	return out
}
