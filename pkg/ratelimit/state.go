// Package ratelimit implements domains service throttle tracking and request gating.
// It monitors the X-RateLimit-Remaining and X-RateLimit-Reset headers so that
// paginated enumerations back off before the service starts rejecting calls.
package ratelimit

import (
	"time"
)

// Response headers carrying the throttle window.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Redis keys for throttle state storage.
const (
	RedisKeyRemaining      = "domains:throttle:remaining"
	RedisKeyResetTimestamp = "domains:throttle:reset_timestamp"
	RedisKeyLastUpdate     = "domains:throttle:last_update"
)

// Thresholds for throttle decisions.
const (
	// ThresholdCritical blocks all requests when calls remaining falls below this value.
	ThresholdCritical = 5

	// ThresholdWarning applies throttling when calls remaining falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation.
	ThresholdHealthy = 50
)

// ThrottleState represents the current service throttle window.
// With Redis configured it is shared across all client instances.
type ThrottleState struct {
	// Remaining is the number of calls left in the current window.
	// Extracted from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	// Calculated from the X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *ThrottleState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *ThrottleState) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical && !s.windowPassed()
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *ThrottleState) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock() && !s.windowPassed()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *ThrottleState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current Remaining.
func (s *ThrottleState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}

// windowPassed reports whether a known reset time lies in the past, in which
// case the recorded counts no longer apply.
func (s *ThrottleState) windowPassed() bool {
	return !s.ResetAt.IsZero() && time.Now().After(s.ResetAt)
}

// defaultState is assumed until the service reports real data.
func defaultState() *ThrottleState {
	return &ThrottleState{
		Remaining:  100,
		ResetAt:    time.Now().Add(60 * time.Second),
		LastUpdate: time.Now(),
		IsHealthy:  true,
	}
}
