package scrypthash

import (
	"fmt"
	"time"

	"golang.org/x/crypto/scrypt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Cost parameters
// ──────────────────────────────────────────────────────────────────────────────

const (
	// BlockFactor is the scrypt block-size factor (r). It is fixed at 8 by
	// policy; the selector never derives it from machine capability. Records
	// produced by other implementations may carry a different r, and the
	// verify path honours whatever the record encodes.
	BlockFactor uint32 = 8

	// MinMemLimit is the floor applied to the memory budget: 1 MiB. The
	// floor keeps the scheme usable on memory-starved hosts at a reduced
	// security margin.
	MinMemLimit uint64 = 1 << 20

	// MinOpsLimit is the floor applied to the CPU budget, in salsa20/8 core
	// invocations: 2^15. Even an aggressive time budget buys at least this
	// much work.
	MinOpsLimit float64 = 32768

	// maxLogN bounds the power-of-two search. scrypt requires N to fit the
	// cost_log2 byte of the record, and 2^63 already exceeds any plausible
	// memory budget.
	maxLogN = 63
)

// Params is a scrypt cost-parameter triple.
//
// The scrypt memory cost is 128·N·r bytes and the CPU cost is 4·N·r·p
// salsa20/8 core invocations, where N = 2^LogN. [PickParams] chooses the
// triple from a machine capability estimate; records carry it so that
// verification needs no external configuration.
type Params struct {
	// LogN is the base-2 logarithm of the CPU/memory cost parameter N.
	// Valid range for derivation: [1, 62] — 2^63 does not fit the KDF's
	// cost parameter. Records may encode larger exponents; the verify path
	// passes them through and lets the KDF reject them.
	LogN int

	// R is the block-size factor. The selector always emits [BlockFactor].
	R uint32

	// P is the parallelization factor. Always ≥ 1.
	P uint32
}

// N returns the scrypt cost parameter 2^LogN.
func (p Params) N() uint64 { return 1 << uint(p.LogN) }

// MemoryBytes returns the approximate peak memory the KDF will allocate for
// these parameters: 128·N·r bytes.
func (p Params) MemoryBytes() uint64 { return 128 * p.N() * uint64(p.R) }

// Less reports whether p is strictly weaker than q in any dimension: a lower
// cost exponent, a smaller block factor, or less parallelism.
func (p Params) Less(q Params) bool {
	return p.LogN < q.LogN || p.R < q.R || p.P < q.P
}

func (p Params) validate() error {
	// 62, not 63: 2^63 overflows the int cost parameter the KDF takes, so a
	// pinned exponent of 63 could never derive anything.
	if p.LogN < 1 || p.LogN > maxLogN-1 {
		return fmt.Errorf("%w: cost exponent must be in [1,62], got %d", ErrInvalidOption, p.LogN)
	}
	if p.R < 1 {
		return fmt.Errorf("%w: block factor must be ≥ 1, got %d", ErrInvalidOption, p.R)
	}
	if p.P < 1 {
		return fmt.Errorf("%w: parallelization factor must be ≥ 1, got %d", ErrInvalidOption, p.P)
	}
	if uint64(p.R)*uint64(p.P) >= 1<<30 {
		return fmt.Errorf("%w: r·p must be < 2^30, got %d·%d", ErrInvalidOption, p.R, p.P)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Selection
// ──────────────────────────────────────────────────────────────────────────────

// PickParams computes the strongest parameter triple that fits both a memory
// budget and a CPU-time budget, given a capability estimate for the host.
//
// The memory budget is memFraction of totalMemory, clamped to at most half of
// physical memory (a memFraction of 0, or above 0.5, selects the 0.5 cap) and
// floored at [MinMemLimit]. The CPU budget is opsPerSecond·maxTime salsa20/8
// core invocations, floored at [MinOpsLimit].
//
// The memory budget requires 128·N·r ≤ memlimit; the CPU budget requires
// 4·N·r·p ≤ opslimit. When opslimit < memlimit/32 the CPU budget is the
// binding constraint: p is pinned to 1 and N is the largest power of two
// whose successor would overshoot the CPU bound. Otherwise N is chosen from
// the memory bound the same way and the leftover CPU budget is spent on p.
//
// PickParams is a pure function; [Calibrate] feeds it live probe results.
// Callers with known capability figures can use it directly to reproduce a
// selection.
func PickParams(totalMemory uint64, opsPerSecond float64, memFraction float64, maxTime time.Duration) Params {
	if memFraction <= 0 || memFraction > 0.5 {
		memFraction = 0.5
	}
	memlimit := uint64(float64(totalMemory) * memFraction)
	if memlimit < MinMemLimit {
		memlimit = MinMemLimit
	}

	opslimit := opsPerSecond * maxTime.Seconds()
	if opslimit < MinOpsLimit {
		opslimit = MinOpsLimit
	}

	r := BlockFactor

	if opslimit < float64(memlimit)/32 {
		// CPU budget binds: single lane, N from the ops bound.
		maxN := opslimit / float64(r*4)
		return Params{LogN: log2Floor(maxN), R: r, P: 1}
	}

	// Memory budget binds: N from the memory bound, then spend the rest of
	// the CPU budget on parallelism.
	maxN := float64(memlimit / uint64(r*128))
	logN := log2Floor(maxN)

	maxRP := opslimit / 4 / float64(uint64(1)<<uint(logN))
	if maxRP > 0x3fffffff {
		maxRP = 0x3fffffff
	}
	p := uint32(maxRP) / r
	if p < 1 {
		p = 1
	}
	return Params{LogN: logN, R: r, P: p}
}

// log2Floor returns the largest exponent e in [1, 63] such that 2^e does not
// exceed maxN, found as the smallest e with 2^e > maxN/2. The halving keeps
// headroom: the next power of two would overshoot the budget.
func log2Floor(maxN float64) int {
	logN := 1
	for ; logN < maxLogN; logN++ {
		if float64(uint64(1)<<uint(logN)) > maxN/2 {
			break
		}
	}
	return logN
}

// ──────────────────────────────────────────────────────────────────────────────
// Capability probes
// ──────────────────────────────────────────────────────────────────────────────

// Calibrate probes the host's total memory and KDF throughput, then selects
// cost parameters for the given budgets with [PickParams].
//
// The probes run fresh on every call — nothing is cached — so repeated calls
// adapt to transient machine load. Two calls with identical budgets may
// therefore pick slightly different parameters; that variance is expected.
// Returns [ErrCapabilityUnavailable] when either probe fails.
func Calibrate(memFraction float64, maxTime time.Duration) (Params, error) {
	mem, err := totalMemory()
	if err != nil {
		return Params{}, fmt.Errorf("%w: reading total memory: %v", ErrCapabilityUnavailable, err)
	}
	ops, err := measureOpsPerSecond()
	if err != nil {
		return Params{}, fmt.Errorf("%w: measuring KDF throughput: %v", ErrCapabilityUnavailable, err)
	}
	return PickParams(mem, ops, memFraction, maxTime), nil
}

// Calibration constants. Each scrypt derivation at N=128, r=1, p=1 performs
// 4·N·r·p = 512 salsa20/8 core invocations, which is the unit the cost model
// counts in.
const (
	calibLogN       = 7
	calibOpsPerCall = 4 * (1 << calibLogN)
	calibBatch      = 16
	calibWindow     = 100 * time.Millisecond
)

var (
	calibPassword = []byte("calibration")
	calibSalt     = []byte("scrypthash-calibration-salt")
)

// measureOpsPerSecond times small fixed-cost scrypt derivations for roughly
// calibWindow of wall-clock time and extrapolates the core throughput.
// Concurrent calibration runs skew each other's estimate slightly; callers
// accept that in exchange for load-adaptive parameters.
func measureOpsPerSecond() (float64, error) {
	calls := 0
	start := time.Now()
	for {
		for i := 0; i < calibBatch; i++ {
			if _, err := scrypt.Key(calibPassword, calibSalt, 1<<calibLogN, 1, 1, 32); err != nil {
				return 0, fmt.Errorf("calibration derivation: %w", err)
			}
		}
		calls += calibBatch
		if elapsed := time.Since(start); elapsed >= calibWindow {
			return float64(calls*calibOpsPerCall) / elapsed.Seconds(), nil
		}
	}
}
