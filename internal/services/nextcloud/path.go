package nextcloud

import (
	"fmt"
	"slices"
	"strings"

	"lecturebot/internal/textutil"
)

// Join concatenates path segments with single slashes, dropping empty
// segments and surrounding slashes.
func Join(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, "/")
}

// UniqueName returns base when it is not in existing, otherwise the
// lowest-numbered "{stem}_{n}{ext}" that is free.
func UniqueName(existing []string, base string) string {
	if !slices.Contains(existing, base) {
		return base
	}
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}
	stem, ext := textutil.SplitExt(base)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
