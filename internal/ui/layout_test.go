package ui

import "testing"

func TestDetermineLayoutMode(t *testing.T) {
	cases := []struct {
		cols, rows int
		want       LayoutMode
	}{
		{60, 30, LayoutTooSmall},
		{120, 10, LayoutTooSmall},
		{80, 24, LayoutCompact},
		{109, 40, LayoutCompact},
		{110, 28, LayoutWide},
		{200, 50, LayoutWide},
	}
	for _, c := range cases {
		if got := DetermineLayoutMode(c.cols, c.rows); got != c.want {
			t.Fatalf("DetermineLayoutMode(%d, %d) = %v, want %v", c.cols, c.rows, got, c.want)
		}
	}
}
