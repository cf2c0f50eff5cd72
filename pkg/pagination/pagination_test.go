package pagination_test

import (
	"net/url"
	"testing"

	"github.com/ryanmio/actblue-jail/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantSearch   bool
	}{
		{"defaults", "", 1, 20, false},
		{"explicit values", "page=3&page_size=50", 3, 50, false},
		{"oversized page size clamped", "page_size=9999", 1, 100, false},
		{"negative page normalized", "page=-1", 1, 20, false},
		{"search captured", "search=urgent", 1, 20, true},
		{"garbage ignored", "page=abc&page_size=xyz", 1, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.FromQuery(values, cfg)

			if req.Page != tt.wantPage {
				t.Errorf("page: got %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("page_size: got %d, want %d", req.PageSize, tt.wantPageSize)
			}
			if (req.Search != nil) != tt.wantSearch {
				t.Errorf("search: got %v", req.Search)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("offset: got %d, want 50", got)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder adds page", 101, 20, 6},
		{"empty result still one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]int{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("total pages: got %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Data == nil {
				t.Error("data must never be nil")
			}
		})
	}
}
