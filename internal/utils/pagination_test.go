package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"-3", 0, -3},
		{"", 10, 10},
		{"abc", 5, 5},
		{"4.2", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(0, 1, 100); got != 1 {
		t.Fatalf("below: got %d", got)
	}
	if got := ClampInt(250, 1, 100); got != 100 {
		t.Fatalf("above: got %d", got)
	}
	if got := ClampInt(20, 1, 100); got != 20 {
		t.Fatalf("inside: got %d", got)
	}
}
