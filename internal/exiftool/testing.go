package exiftool

import "time"

// SetTestTimeouts overrides the per-call timeouts on a runner.
// This should only be used in tests.
func SetTestTimeouts(r *Runner, single, batch time.Duration) {
	if single > 0 {
		r.singleTimeout = single
	}
	if batch > 0 {
		r.batchTimeout = batch
	}
}
