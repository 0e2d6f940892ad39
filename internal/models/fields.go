package models

// Conversion helpers for document fields. The store hands back untyped maps
// whose slice values may be []any (JSON decoding) or concrete slices
// (in-process writes), so readers must accept both.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asSlice(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func asStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
