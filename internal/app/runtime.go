package app

import (
	"sync"

	"github.com/kelseyhightower/envconfig"
)

const testModeEnv = "POSDASH_TEST_MODE"

// runtimeFlags are process switches read apart from Config so they work
// before the rest of the environment is valid.
type runtimeFlags struct {
	TestMode bool `envconfig:"POSDASH_TEST_MODE"`
}

var (
	flagsMu sync.Mutex
	flags   *runtimeFlags
)

func loadFlags() *runtimeFlags {
	var f runtimeFlags
	if err := envconfig.Process("", &f); err != nil {
		// An unparseable switch is treated as off.
		return &runtimeFlags{}
	}
	return &f
}

// InTestMode reports whether the binaries should return before starting
// servers or connecting to Redis. Any boolean POSDASH_TEST_MODE is accepted.
func InTestMode() bool {
	flagsMu.Lock()
	defer flagsMu.Unlock()
	if flags == nil {
		flags = loadFlags()
	}
	return flags.TestMode
}

// RefreshTestMode drops the cached switches so the next read sees the
// current environment.
func RefreshTestMode() {
	flagsMu.Lock()
	flags = nil
	flagsMu.Unlock()
}
