package solver

import "sync"

const (
	// DefaultSeed is the base seed used by randomized searches while the
	// fixed-seed toggle is on.
	DefaultSeed uint64 = 42

	// DefaultIterations is the iteration count used when none is configured.
	DefaultIterations = 10000
)

// Config holds the process-wide solver toggles.
type Config struct {
	// UseFixedSeed makes randomized searches start from Seed instead of a
	// fresh random base, so repeated runs return identical trees.
	UseFixedSeed bool
	Seed         uint64

	// UseParallel evaluates candidates on multiple goroutines. Results are
	// identical either way.
	UseParallel bool
}

var (
	globalMu sync.RWMutex
	global   = defaultConfig()
)

func defaultConfig() Config {
	return Config{UseFixedSeed: true, Seed: DefaultSeed, UseParallel: true}
}

// SetUseFixedSeed turns the fixed base seed on or off. The seed is only
// recorded when use is true; turning the toggle off keeps the previous seed
// for when it is turned back on.
func SetUseFixedSeed(use bool, seed uint64) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.UseFixedSeed = use
	if use {
		global.Seed = seed
	}
}

// SetUseParallel turns parallel candidate evaluation on or off.
func SetUseParallel(use bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.UseParallel = use
}

// Defaults returns a snapshot of the process-wide toggles.
func Defaults() Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// ResetDefaults restores the toggles to their initial values.
// This is primarily useful for testing.
func ResetDefaults() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = defaultConfig()
}
