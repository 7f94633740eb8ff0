package repository

import (
	"reflect"
	"testing"
)

func TestSortIDs(t *testing.T) {
	cases := []struct {
		in   []uint64
		want []uint64
	}{
		{nil, nil},
		{[]uint64{3}, []uint64{3}},
		{[]uint64{3, 1, 2}, []uint64{1, 2, 3}},
		{[]uint64{2, 2, 1, 3, 1}, []uint64{1, 2, 3}},
	}
	for _, c := range cases {
		got := SortIDs(append([]uint64(nil), c.in...))
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SortIDs(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
	if got := placeholders(1); got != "?" {
		t.Errorf("placeholders(1) = %q", got)
	}
	if got := placeholders(3); got != "?,?,?" {
		t.Errorf("placeholders(3) = %q", got)
	}
}
