package papersources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helixir/paper-aggregator/internal/domain"
)

func TestTitleOrUntitled(t *testing.T) {
	assert.Equal(t, "Graph Networks", TitleOrUntitled("  Graph Networks "))
	assert.Equal(t, domain.UntitledPaper, TitleOrUntitled(""))
	assert.Equal(t, domain.UntitledPaper, TitleOrUntitled(" \n\t"))
	assert.Equal(t, "Untitled", domain.UntitledPaper)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name                string
		requested, def, max int
		expected            int
	}{
		{"within bounds", 10, 25, 100, 10},
		{"zero uses default", 0, 25, 100, 25},
		{"negative uses default", -3, 25, 100, 25},
		{"clamped to max", 500, 25, 100, 100},
		{"no max", 500, 25, 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampLimit(tt.requested, tt.def, tt.max))
		})
	}
}

func TestCompactStrings(t *testing.T) {
	assert.Equal(t, []string{"Ada", "Grace"}, CompactStrings([]string{" Ada ", "", "  ", "Grace"}))
	assert.Empty(t, CompactStrings(nil))
}
