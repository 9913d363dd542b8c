// Package testutils provides deterministic generators and fixtures for Devion tests.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BaseTime is the first instant handed out by deterministic clocks.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex
)

// FixedClock returns a clock that always reports BaseTime.
func FixedClock() func() time.Time {
	return func() time.Time {
		return BaseTime
	}
}

// SteppingClock returns a clock that advances one second per call,
// starting at BaseTime.
func SteppingClock() func() time.Time {
	var mu sync.Mutex
	var ticks int64
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := BaseTime.Add(time.Duration(ticks) * time.Second)
		ticks++
		return t
	}
}

// DeterministicUUID returns UUIDs like 00000001-0000-4000-8000-000000000001,
// 00000002-0000-4000-8000-000000000002 and so on.
func DeterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++

	// Format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ResetTestCounters resets the deterministic counters.
func ResetTestCounters() {
	idMutex.Lock()
	defer idMutex.Unlock()
	idCounter = 0
}
