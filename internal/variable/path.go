package variable

import (
	"strconv"
	"strings"
)

// Extract resolves a dotted/indexed path (e.g. "data.items[0].value")
// against a JSON-decoded payload. The second return is false the moment any
// intermediate node is missing, nil, or not indexable. That is the "no data
// yet" signal, not an error. An empty path returns the payload unchanged.
func Extract(payload interface{}, path string) (interface{}, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return payload, true
	}

	current := payload
	for _, part := range strings.Split(path, ".") {
		field, indexes, ok := splitIndexes(part)
		if !ok {
			return nil, false
		}

		if field != "" {
			m, ok := current.(map[string]interface{})
			if !ok {
				return nil, false
			}
			current, ok = m[field]
			if !ok {
				return nil, false
			}
		}

		for _, idx := range indexes {
			arr, ok := current.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}

		if current == nil {
			return nil, false
		}
	}

	return current, true
}

// splitIndexes splits one path segment into its field name and any trailing
// bracket indexes, e.g. "items[0][2]" -> ("items", [0 2]).
func splitIndexes(part string) (string, []int, bool) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return "", nil, false
		}
		return part, nil, true
	}

	field := part[:open]
	rest := part[open:]
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		closing := strings.IndexByte(rest, ']')
		if closing < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:closing])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[closing+1:]
	}
	return field, indexes, true
}
