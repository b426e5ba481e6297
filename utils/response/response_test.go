package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int
	}{
		{"exact division", 1, 10, 100, 10},
		{"partial last page", 2, 10, 95, 10},
		{"single record", 1, 10, 1, 1},
		{"empty result", 1, 10, 0, 0},
		{"limit larger than total", 1, 100, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := CalculatePagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, meta.Page)
			assert.Equal(t, tt.limit, meta.Limit)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
		})
	}
}

func TestCalculatePaginationEchoesRequestedPage(t *testing.T) {
	// A page past the end is echoed as requested, never clamped
	meta := CalculatePagination(99, 10, 5)
	assert.Equal(t, 99, meta.Page)
	assert.Equal(t, 1, meta.TotalPages)
}
