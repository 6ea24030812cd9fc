package status

import (
	"context"
	"runtime"
	"testing"
)

func TestCollectUsesProbes(t *testing.T) {
	var probed []string
	c := NewCollector()
	c.run = func(ctx context.Context, name string, args ...string) string {
		probed = append(probed, name)
		return " 10:00  up 3 days "
	}

	st, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if st.OS != runtime.GOOS {
		t.Fatalf("expected OS %s, got %s", runtime.GOOS, st.OS)
	}
	if st.Hostname == "" {
		t.Fatal("expected hostname")
	}
	if st.Uptime == "" || len(probed) == 0 || probed[0] != "uptime" {
		t.Fatalf("expected uptime probe, got %+v (probed %v)", st, probed)
	}
}

func TestBatteryLine(t *testing.T) {
	out := "Now drawing from 'AC Power'\n -InternalBattery-0 (id=1)\t87%; charged; 0:00 remaining present: true\n"
	got := batteryLine(out)
	want := "-InternalBattery-0 (id=1)\t87%; charged; 0:00 remaining present: true"
	if got != want {
		t.Fatalf("batteryLine = %q, want %q", got, want)
	}
}
