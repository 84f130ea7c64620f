package pagination

import "testing"

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []struct {
		name      string
		index     int
		size      int
		wantItems []int
		wantIndex int
		wantTotal int
		hasPrev   bool
		hasNext   bool
	}{
		{"first page", 0, 3, []int{1, 2, 3}, 0, 3, false, true},
		{"middle page", 1, 3, []int{4, 5, 6}, 1, 3, true, true},
		{"last short page", 2, 3, []int{7}, 2, 3, true, false},
		{"beyond end clamps to last", 9, 3, []int{7}, 2, 3, true, false},
		{"negative clamps to first", -1, 3, []int{1, 2, 3}, 0, 3, false, true},
		{"size larger than items", 0, 50, []int{1, 2, 3, 4, 5, 6, 7}, 0, 1, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Slice(items, tc.index, tc.size)
			if len(p.Items) != len(tc.wantItems) {
				t.Fatalf("items = %v, want %v", p.Items, tc.wantItems)
			}
			for i := range p.Items {
				if p.Items[i] != tc.wantItems[i] {
					t.Fatalf("items = %v, want %v", p.Items, tc.wantItems)
				}
			}
			if p.Index != tc.wantIndex || p.Total != tc.wantTotal {
				t.Errorf("index/total = %d/%d, want %d/%d", p.Index, p.Total, tc.wantIndex, tc.wantTotal)
			}
			if p.HasPrev != tc.hasPrev || p.HasNext != tc.hasNext {
				t.Errorf("hasPrev/hasNext = %v/%v, want %v/%v", p.HasPrev, p.HasNext, tc.hasPrev, tc.hasNext)
			}
		})
	}
}

func TestSliceEmpty(t *testing.T) {
	p := Slice([]string{}, 3, 5)
	if len(p.Items) != 0 || p.Index != 0 || p.HasPrev || p.HasNext {
		t.Errorf("empty input must yield an empty first page, got %+v", p)
	}
}
