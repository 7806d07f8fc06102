package fetch

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pacer inserts a politeness pause between successive fetches to a host.
// The first fetch to a host is never delayed; every later one waits until at
// least minDelay has passed since the previous attempt.
type Pacer struct {
	hostLastRequest   map[string]time.Time // hostname -> last request attempt time
	hostLastRequestMu sync.Mutex           // Protects hostLastRequest map
	defaultDelay      time.Duration        // Fallback delay if specific delay is invalid
	log               *logrus.Entry
}

// NewPacer creates a Pacer
func NewPacer(defaultDelay time.Duration, log *logrus.Entry) *Pacer {
	return &Pacer{
		hostLastRequest: make(map[string]time.Time),
		defaultDelay:    defaultDelay,
		log:             log,
	}
}

// ApplyDelay sleeps if the time since the last request to the host is less than minDelay
// Adds up to +10% jitter to desynchronize requests; the pause never undershoots minDelay
func (p *Pacer) ApplyDelay(host string, minDelay time.Duration) {
	if minDelay <= 0 {
		minDelay = p.defaultDelay
	}
	if minDelay <= 0 {
		return
	}

	// Read last request time safely
	p.hostLastRequestMu.Lock()
	lastReqTime, exists := p.hostLastRequest[host]
	p.hostLastRequestMu.Unlock() // Unlock before potentially sleeping

	if !exists {
		return // First fetch to this host, no pause
	}

	elapsed := time.Since(lastReqTime)
	if elapsed >= minDelay {
		return
	}
	sleepDuration := minDelay - elapsed

	// Add jitter: up to +10% of sleepDuration, never shortening the pause
	var jitter time.Duration
	if jitterRange := int64(sleepDuration) / 10; jitterRange > 0 {
		jitter = time.Duration(rand.Int63n(jitterRange))
	}

	finalSleep := sleepDuration + jitter
	p.log.WithFields(logrus.Fields{
		"host": host, "sleep": finalSleep, "required_delay": minDelay, "elapsed": elapsed,
	}).Debug("Politeness pause before fetch")
	time.Sleep(finalSleep)
}

// UpdateLastRequestTime records the current time as the last request attempt time for the host
// Call this *after* an HTTP request attempt to the host
func (p *Pacer) UpdateLastRequestTime(host string) {
	p.hostLastRequestMu.Lock()
	p.hostLastRequest[host] = time.Now()
	p.hostLastRequestMu.Unlock()
}
