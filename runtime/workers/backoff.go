package workers

import "time"

// Backoff returns the delay before the next attempt of a job that has
// already failed `attempts` times: exponential doubling from base, capped.
func Backoff(attempts int, base, cap time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= cap || d <= 0 {
			return cap
		}
	}
	if d > cap {
		return cap
	}
	return d
}
