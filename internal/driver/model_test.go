package driver

import "testing"

func TestStatusSelfReportable(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusAvailable, true},
		{StatusUnavailable, true},
		{StatusOffline, true},
		{StatusBusy, false},
		{Status("DANCING"), false},
	}
	for _, c := range cases {
		if got := c.status.SelfReportable(); got != c.want {
			t.Fatalf("%s: SelfReportable=%v, want %v", c.status, got, c.want)
		}
	}
}

func TestAverageScore(t *testing.T) {
	if got := AverageScore(nil); got != 0 {
		t.Fatalf("empty ratings: expected 0, got %v", got)
	}

	ratings := []Rating{{Score: 5}, {Score: 4}, {Score: 3}}
	if got := AverageScore(ratings); got != 4 {
		t.Fatalf("expected average 4, got %v", got)
	}
}
