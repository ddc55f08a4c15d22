package scrypthash

import "errors"

// Sentinel errors returned by hashing and calibration operations.
//
// Use [errors.Is] for comparisons:
//
//	_, err := hasher.Check(password, encoded)
//	if errors.Is(err, scrypthash.ErrMalformedRecord) {
//	    // input is not a hash record at all
//	}
var (
	// ErrCapabilityUnavailable is returned when the host's total-memory or
	// CPU-throughput probe cannot be read. Hashing cannot proceed without a
	// capability estimate; the condition is an environment problem and no
	// retry is attempted internally.
	ErrCapabilityUnavailable = errors.New("scrypthash: system capability probe unavailable")

	// ErrRandomUnavailable is returned when the system entropy source fails
	// while drawing a salt.
	ErrRandomUnavailable = errors.New("scrypthash: entropy source unavailable")

	// ErrKDFFailure is returned during hash construction when the key
	// derivation function rejects its parameters or errors internally.
	// During verification a failed derivation is reported as a plain
	// non-match instead, never as an error.
	ErrKDFFailure = errors.New("scrypthash: key derivation failed")

	// ErrMalformedRecord is returned when an input is structurally incapable
	// of being a hash record: shorter than [RecordLen] bytes, or not valid
	// base64 on the string API. A well-formed record that simply does not
	// match the password is a (false, nil) result, not an error.
	ErrMalformedRecord = errors.New("scrypthash: malformed hash record")

	// ErrInvalidOption is returned when a constructor is called with a
	// parameter value that falls outside the allowed range (e.g., a negative
	// memory fraction or a pinned cost exponent above 63).
	ErrInvalidOption = errors.New("scrypthash: invalid option value")
)
