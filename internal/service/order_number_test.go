package service

import "testing"

func TestFormatOrderNo(t *testing.T) {
	cases := []struct {
		day  string
		seq  int64
		want string
	}{
		{"20250131", 1, "ORD-20250131-000001"},
		{"20250131", 42, "ORD-20250131-000042"},
		{"20251231", 999999, "ORD-20251231-999999"},
		{"20251231", 1000000, "ORD-20251231-1000000"}, // 超过 6 位自然扩展
	}
	for _, c := range cases {
		if got := FormatOrderNo(c.day, c.seq); got != c.want {
			t.Errorf("FormatOrderNo(%s, %d) = %s, want %s", c.day, c.seq, got, c.want)
		}
	}
}
