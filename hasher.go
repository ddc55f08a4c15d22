package scrypthash

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/crypto/scrypt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMemFraction is the default share of physical memory the
	// parameter selector may budget for one derivation.
	DefaultMemFraction = 0.1

	// DefaultMaxTime is the default CPU-time budget for one derivation.
	DefaultMaxTime = time.Second
)

// DefaultMinParams is the default rehash threshold: records weaker than
// N=2^14, r=8, p=1 in any dimension are reported by [Hasher.NeedsRehash].
var DefaultMinParams = Params{LogN: 14, R: BlockFactor, P: 1}

// KDFFunc derives keyLen bytes of key material from a password and salt
// under the scrypt cost parameters N, r, p. [golang.org/x/crypto/scrypt.Key]
// is the default implementation; the signature matches it exactly so
// alternative derivers (hardware-backed, instrumented for tests) can be
// swapped in via [Options].
type KDFFunc func(password, salt []byte, N, r, p, keyLen int) ([]byte, error)

// Options configures a [Hasher].
//
// The budgets only influence newly produced records; every record is
// self-describing, so previously produced records remain verifiable under
// any Options.
type Options struct {
	// MemFraction is the share of total physical memory to budget per
	// derivation, in [0, 1]. Values of 0 or above 0.5 are treated as 0.5
	// during selection. Default: [DefaultMemFraction].
	MemFraction float64

	// MaxTime is the CPU-time budget per derivation. Default:
	// [DefaultMaxTime].
	MaxTime time.Duration

	// Params, when non-nil, pins the cost parameters and skips machine
	// calibration entirely. Useful for reproducible parameter choices and
	// for fast test configurations.
	Params *Params

	// MinParams is the weakest parameter set [Hasher.NeedsRehash] accepts
	// without flagging. The zero value selects [DefaultMinParams].
	MinParams Params

	// KDF replaces the key derivation function. Nil selects
	// [golang.org/x/crypto/scrypt.Key].
	KDF KDFFunc
}

// DefaultOptions returns Options with the recommended defaults: 10% of
// physical memory, a one second time budget, adaptive calibration on every
// hash, and the scrypt KDF.
func DefaultOptions() Options {
	return Options{
		MemFraction: DefaultMemFraction,
		MaxTime:     DefaultMaxTime,
		MinParams:   DefaultMinParams,
	}
}

func validateOptions(opts Options) error {
	if math.IsNaN(opts.MemFraction) || opts.MemFraction < 0 || opts.MemFraction > 1 {
		return fmt.Errorf("%w: mem fraction must be in [0,1], got %v", ErrInvalidOption, opts.MemFraction)
	}
	if opts.MaxTime < 0 {
		return fmt.Errorf("%w: max time must be ≥ 0, got %v", ErrInvalidOption, opts.MaxTime)
	}
	if opts.Params != nil {
		if err := opts.Params.validate(); err != nil {
			return err
		}
	}
	if opts.MinParams != (Params{}) {
		if err := opts.MinParams.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Hasher
// ──────────────────────────────────────────────────────────────────────────────

// Hasher produces and verifies scrypt hash records.
//
// Each record is a 96-byte self-describing artifact carrying the cost
// parameters, the salt, a header checksum, and an HMAC-SHA256 signature
// keyed by the derived key. [Hasher.Make] / [Hasher.Check] move records as
// base64 strings for text-oriented storage; [Hasher.MakeRecord] /
// [Hasher.CheckRecord] work on the raw bytes.
//
// # Thread safety
//
// Hasher is immutable after construction and safe for concurrent use. No
// state is shared between calls; concurrent calibration runs may skew each
// other's throughput estimate slightly, which only perturbs parameter
// choice, never correctness.
type Hasher struct {
	opts Options
	kdf  KDFFunc
}

// NewHasher constructs a Hasher. Use [DefaultOptions] for the recommended
// defaults. Returns [ErrInvalidOption] when an option is out of range.
func NewHasher(opts Options) (*Hasher, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if opts.MinParams == (Params{}) {
		opts.MinParams = DefaultMinParams
	}
	kdf := opts.KDF
	if kdf == nil {
		kdf = scrypt.Key
	}
	return &Hasher{opts: opts, kdf: kdf}, nil
}

// Options returns the hasher's configuration.
func (h *Hasher) Options() Options { return h.opts }

// selectParams picks cost parameters for one construction: the pinned set
// when configured, otherwise a fresh machine calibration.
func (h *Hasher) selectParams() (Params, error) {
	if h.opts.Params != nil {
		return *h.opts.Params, nil
	}
	return Calibrate(h.opts.MemFraction, h.opts.MaxTime)
}

// Make hashes password and returns the record encoded with standard base64,
// suitable for storage in text-oriented systems. The encoding carries no
// semantics; [Hasher.MakeRecord] returns the same 96 bytes raw.
func (h *Hasher) Make(password string) (string, error) {
	rec, err := h.MakeRecord([]byte(password))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(rec), nil
}

// MakeRecord hashes password into a fresh 96-byte hash record.
//
// Cost parameters are selected per [Options], a 32-byte random salt is
// drawn, the KDF derives 64 bytes of key material, and the record is
// assembled with its header checksum and signature. Construction is atomic:
// on any error ([ErrCapabilityUnavailable], [ErrRandomUnavailable],
// [ErrKDFFailure]) no record is returned.
func (h *Hasher) MakeRecord(password []byte) ([]byte, error) {
	params, err := h.selectParams()
	if err != nil {
		return nil, err
	}

	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomUnavailable, err)
	}

	key, err := h.deriveKey(password, salt, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKDFFailure, err)
	}

	rec := make([]byte, RecordLen)
	writeHeader(rec, params, salt)
	writeChecksum(rec)
	writeSignature(rec, key[32:])
	return rec, nil
}

// Check verifies password against a base64-encoded record produced by
// [Hasher.Make]. It returns (false, nil) for a well-formed record that does
// not match and [ErrMalformedRecord] for input that cannot be a record.
func (h *Hasher) Check(password, encoded string) (bool, error) {
	rec, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: invalid base64: %v", ErrMalformedRecord, err)
	}
	return h.CheckRecord([]byte(password), rec)
}

// CheckRecord verifies password against a raw 96-byte hash record.
//
// Validation order is fixed: length, then header checksum, then the KDF and
// signature. The checksum gate rejects corrupt or foreign records before
// any expensive derivation is attempted. A KDF failure during verification
// is reported as a plain non-match — to the caller it is indistinguishable
// from a wrong password.
func (h *Hasher) CheckRecord(password, record []byte) (bool, error) {
	params, salt, err := parseRecord(record)
	if err != nil {
		return false, err
	}
	if !checksumOK(record) {
		return false, nil
	}
	key, err := h.deriveKey(password, salt, params)
	if err != nil {
		return false, nil
	}
	return signatureOK(record, key[32:]), nil
}

// deriveKey runs the KDF for the given parameters. The cost exponent is
// passed through unvalidated: an infeasible exponent from a record makes the
// KDF itself fail loudly rather than being silently capped here.
func (h *Hasher) deriveKey(password, salt []byte, params Params) ([]byte, error) {
	key, err := h.kdf(password, salt, 1<<uint(params.LogN), int(params.R), int(params.P), keyLen)
	if err != nil {
		return nil, err
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("kdf returned %d bytes, want %d", len(key), keyLen)
	}
	return key, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Inspection
// ──────────────────────────────────────────────────────────────────────────────

// Info carries metadata parsed from a hash record without verifying any
// password against it.
type Info struct {
	// Params are the cost parameters the record was produced with.
	Params Params

	// Salt is the 32-byte random salt embedded in the record.
	Salt []byte
}

// Info parses a base64-encoded record and returns its parameters and salt.
// The header checksum is verified first, so Info returns
// [ErrMalformedRecord] for corrupt or foreign input; no KDF work is done.
func (h *Hasher) Info(encoded string) (Info, error) {
	rec, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Info{}, fmt.Errorf("%w: invalid base64: %v", ErrMalformedRecord, err)
	}
	params, salt, err := parseRecord(rec)
	if err != nil {
		return Info{}, err
	}
	if !checksumOK(rec) {
		return Info{}, fmt.Errorf("%w: header checksum mismatch", ErrMalformedRecord)
	}
	out := Info{Params: params, Salt: make([]byte, SaltLen)}
	copy(out.Salt, salt)
	return out, nil
}

// NeedsRehash reports whether a record was produced with parameters weaker
// than the configured [Options.MinParams] in any dimension. Callers should
// re-hash the password on the next successful login when this returns true.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	info, err := h.Info(encoded)
	if err != nil {
		return false, err
	}
	return info.Params.Less(h.opts.MinParams), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Package-level convenience
// ──────────────────────────────────────────────────────────────────────────────

// Hash hashes password with [DefaultOptions]: parameters are calibrated to
// the current machine against the default budgets.
func Hash(password string) (string, error) {
	h, err := NewHasher(DefaultOptions())
	if err != nil {
		return "", err
	}
	return h.Make(password)
}

// Check verifies password against a base64-encoded record using
// [DefaultOptions]. Since records are self-describing, this verifies any
// record regardless of the options it was produced under.
func Check(password, encoded string) (bool, error) {
	h, err := NewHasher(DefaultOptions())
	if err != nil {
		return false, err
	}
	return h.Check(password, encoded)
}
