package httpresp

import "testing"

func TestNewPaginationCeil(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		pages       int
	}{
		{1, 10, 0, 0},
		{1, 10, 1, 1},
		{1, 10, 10, 1},
		{1, 10, 11, 2},
		{2, 10, 25, 3},
		{1, 50, 50, 1},
		{1, 1, 7, 7},
	}

	for _, tc := range cases {
		p := NewPagination(tc.page, tc.limit, tc.total)
		if p.Pages != tc.pages {
			t.Fatalf("total=%d limit=%d: expected %d pages, got %d", tc.total, tc.limit, tc.pages, p.Pages)
		}
		if p.Current != tc.page {
			t.Fatalf("current must echo the requested page, got %d", p.Current)
		}
		if p.Total != tc.total || p.Limit != tc.limit {
			t.Fatalf("envelope must carry total and limit unchanged")
		}
	}
}
