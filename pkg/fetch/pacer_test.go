package fetch

import (
	"testing"
	"time"
)

func TestPacerFirstFetchNotDelayed(t *testing.T) {
	pacer := NewPacer(200*time.Millisecond, testLogger())

	start := time.Now()
	pacer.ApplyDelay("example.com", 200*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first fetch should not be delayed, waited %v", elapsed)
	}
}

func TestPacerDelaysSubsequentFetches(t *testing.T) {
	pacer := NewPacer(0, testLogger())

	pacer.UpdateLastRequestTime("example.com")
	start := time.Now()
	pacer.ApplyDelay("example.com", 100*time.Millisecond)
	elapsed := time.Since(start)

	// Jitter only extends the pause; allow a small margin for the time
	// between recording the request and computing the remaining sleep
	if elapsed < 95*time.Millisecond {
		t.Errorf("expected politeness pause of ~100ms, waited only %v", elapsed)
	}
}

func TestPacerSkipsWhenEnoughTimePassed(t *testing.T) {
	pacer := NewPacer(0, testLogger())

	pacer.UpdateLastRequestTime("example.com")
	time.Sleep(60 * time.Millisecond)

	start := time.Now()
	pacer.ApplyDelay("example.com", 50*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("no pause expected once the delay has already elapsed, waited %v", elapsed)
	}
}

func TestPacerHostsAreIndependent(t *testing.T) {
	pacer := NewPacer(0, testLogger())

	pacer.UpdateLastRequestTime("a.example.com")
	start := time.Now()
	pacer.ApplyDelay("b.example.com", 200*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("different host should not be delayed, waited %v", elapsed)
	}
}

func TestPacerZeroDelayDisabled(t *testing.T) {
	pacer := NewPacer(0, testLogger())

	pacer.UpdateLastRequestTime("example.com")
	start := time.Now()
	pacer.ApplyDelay("example.com", 0)
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("zero delay should disable pacing, waited %v", elapsed)
	}
}
