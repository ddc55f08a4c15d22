//go:build !linux && !darwin && !windows && !freebsd && !openbsd && !netbsd && !dragonfly

package scrypthash

import "errors"

// totalMemory has no probe on this platform. Calibration is unavailable;
// callers can still hash with pinned parameters via Options.Params.
func totalMemory() (uint64, error) {
	return 0, errors.New("no total-memory probe for this platform")
}
