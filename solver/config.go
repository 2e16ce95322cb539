package solver

import (
	"errors"
	"runtime"

	"github.com/lox/craftsolver/simulator"
)

// Settings aggregates a simulator.Settings with the knobs that only the
// solver layer cares about: how hard to search and what kind of
// solution to settle for.
type Settings struct {
	Simulator simulator.Settings

	// BackloadProgress requires every quality-dealing action to precede
	// every progress-dealing action in an accepted macro, trading away
	// some reachable quality for simpler, more predictable rotations.
	BackloadProgress bool

	// AllowUnsoundBranchPruning permits the search to discard branches
	// using heuristics that are not proven admissible, trading
	// optimality guarantees for speed on settings where an exact search
	// would not finish in reasonable time.
	AllowUnsoundBranchPruning bool

	// AllowNonMaxQualitySolutions lets the solver return the best
	// available quality when max quality is unreachable under the given
	// resources. When false the search discards every branch whose
	// quality upper bound falls short of the target, which is much
	// faster but answers NoSolution on recipes the crafter cannot
	// hit max quality on at all.
	AllowNonMaxQualitySolutions bool

	// MaxThreads caps how many goroutines the batch-expansion and
	// wavefront-fill worker pools may use. Zero means
	// runtime.GOMAXPROCS(0).
	MaxThreads int
}

// Validate ensures the settings are well-formed before a solve starts.
func (s Settings) Validate() error {
	if s.Simulator.MaxProgress == 0 {
		return errors.New("max progress must be > 0")
	}
	if s.Simulator.MaxCP <= 0 {
		return errors.New("max CP must be > 0")
	}
	if s.Simulator.MaxDurability <= 0 {
		return errors.New("max durability must be > 0")
	}
	if s.Simulator.AllowedActions == 0 {
		return errors.New("at least one action must be allowed")
	}
	if s.MaxThreads < 0 {
		return errors.New("max threads cannot be negative")
	}
	return nil
}

// Threads returns the configured worker count, defaulting to
// GOMAXPROCS when unset.
func (s Settings) Threads() int {
	if s.MaxThreads > 0 {
		return s.MaxThreads
	}
	return runtime.GOMAXPROCS(0)
}

// MaxProgress and MaxQuality forward to the wrapped simulator settings,
// kept as methods so solver code reads naturally without reaching
// through s.Simulator everywhere.
func (s Settings) MaxProgress() uint32 { return s.Simulator.MaxProgress }
func (s Settings) MaxQuality() uint32  { return s.Simulator.MaxQuality }

// DefaultSettings returns the exhaustive-search configuration: no
// unsound pruning, and the best reachable quality is reported even when
// it falls short of the recipe's maximum.
func DefaultSettings(sim simulator.Settings) Settings {
	return Settings{
		Simulator:                   sim,
		BackloadProgress:            false,
		AllowUnsoundBranchPruning:   false,
		AllowNonMaxQualitySolutions: true,
		MaxThreads:                  0,
	}
}
