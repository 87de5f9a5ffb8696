package semantic

import "testing"

func TestStringifySeconds(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0"},
		{1, "1s"},
		{59, "59s"},
		{60, "1m"},
		{120, "2m"},
		{90, "90s"}, // not divisible into minutes
		{3600, "1h"},
		{86400, "1d"},
		{604800, "1w"},
		{1036800, "12d"}, // 12 days: not promoted to weeks, 12 % 7 != 0
		{1209600, "2w"},
	}
	for _, tc := range cases {
		if got := StringifySeconds(tc.seconds); got != tc.want {
			t.Errorf("StringifySeconds(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestStringifySeconds_Deterministic(t *testing.T) {
	for _, n := range []int64{0, 120, 1036800} {
		first := StringifySeconds(n)
		second := StringifySeconds(n)
		if first != second {
			t.Errorf("StringifySeconds(%d) not deterministic: %q then %q", n, first, second)
		}
	}
}

func TestStringifyBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{1, "1B"},
		{1023, "1023B"},
		{1024, "1KiB"},
		{1536, "1536B"}, // not divisible into KiB
		{2 << 20, "2MiB"},
		{3 << 30, "3GiB"},
	}
	for _, tc := range cases {
		if got := StringifyBytes(tc.n); got != tc.want {
			t.Errorf("StringifyBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestApproxBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{4508876800, "4.2 GiB"},
	}
	for _, tc := range cases {
		if got := ApproxBytes(tc.n); got != tc.want {
			t.Errorf("ApproxBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
