package pagination

import (
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	p := PageRequest{}
	p.Defaults()
	if p.Page != 1 || p.PageSize != DefaultPageSize {
		t.Errorf("unexpected defaults: %+v", p)
	}

	p = PageRequest{Page: 3, PageSize: 500}
	p.Defaults()
	if p.Page != 3 || p.PageSize != MaxPageSize {
		t.Errorf("expected page size capped at %d, got %+v", MaxPageSize, p)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{total: 0, pageSize: 20, want: 0},
		{total: 1, pageSize: 20, want: 1},
		{total: 20, pageSize: 20, want: 1},
		{total: 21, pageSize: 20, want: 2},
		{total: 5, pageSize: 0, want: 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		req  PageRequest
		want []int
	}{
		{name: "first page", req: PageRequest{Page: 1, PageSize: 2}, want: []int{1, 2}},
		{name: "last partial page", req: PageRequest{Page: 3, PageSize: 2}, want: []int{5}},
		{name: "past the end", req: PageRequest{Page: 4, PageSize: 2}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slice(items, tt.req); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Slice() = %v, want %v", got, tt.want)
			}
		})
	}
}
