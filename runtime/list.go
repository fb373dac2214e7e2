package runtime

import (
	"sort"
	"strings"
)

// foldKeys builds a ListResult from a flat key listing. Keys outside prefix
// are dropped. With a delimiter, keys below the next delimiter collapse
// into one DelimitedPrefixes entry.
func foldKeys(keys []string, prefix, delimiter string) *ListResult {
	result := &ListResult{Keys: make([]string, 0, len(keys))}
	seen := make(map[string]bool)
	for _, key := range keys {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				p := prefix + rest[:i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					result.DelimitedPrefixes = append(result.DelimitedPrefixes, p)
				}
				continue
			}
		}
		result.Keys = append(result.Keys, key)
	}
	sort.Strings(result.Keys)
	sort.Strings(result.DelimitedPrefixes)
	return result
}
