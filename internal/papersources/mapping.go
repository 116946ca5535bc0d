package papersources

import (
	"strings"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// TitleOrUntitled trims title and substitutes domain.UntitledPaper for blank titles.
func TitleOrUntitled(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return domain.UntitledPaper
}

// ClampLimit returns requested bounded to (0, max], using def for non-positive requests.
func ClampLimit(requested, def, max int) int {
	if requested <= 0 {
		requested = def
	}
	if max > 0 && requested > max {
		requested = max
	}
	return requested
}

// CompactStrings trims every value and drops the blank ones.
func CompactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
