package ui

import (
	"testing"
	"time"
)

func TestFormatting(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{got: Volume(12450.4, "kg"), want: "12,450 kg"},
		{got: Volume(200, "kg"), want: "200 kg"},
		{got: Weight(100, "kg"), want: "100 kg"},
		{got: Weight(22.5, "lb"), want: "22.5 lb"},
		{got: Count(1500), want: "1,500"},
		{got: Clock(90 * time.Second), want: "1:30"},
		{got: Clock(5 * time.Second), want: "0:05"},
		{got: Clock(time.Hour + 2*time.Minute + 3*time.Second), want: "1:02:03"},
		{got: Clock(-time.Second), want: "0:00"},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
