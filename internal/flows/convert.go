package flows

import "strconv"

// Argument objects arrive both as native Go values and as generic JSON
// decodings ([]any, float64), so the coercions below accept either.

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intSlice(value any) []int64 {
	switch v := value.(type) {
	case []int64:
		return v
	case []int:
		out := make([]int64, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out
	case []any:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, int64(n))
			case int64:
				out = append(out, n)
			case string:
				if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
					out = append(out, parsed)
				}
			}
		}
		return out
	default:
		return nil
	}
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return fallback
}

func boolOr(value any, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

func intOr(value any, fallback int64) int64 {
	n, ok, err := parseInt(value)
	if err != nil || !ok {
		return fallback
	}
	return n
}
