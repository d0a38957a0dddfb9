package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "FLEETDESK_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the process runs under the test harness. In
// test mode the server skips background consumers such as the ledger
// snapshot watcher.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads FLEETDESK_TEST_MODE after the environment changed.
func RefreshTestMode() {
	testModeOnce.Do(func() {})
	detectTestMode()
}

// StartBackground reports whether long-running consumers should start.
func StartBackground() bool {
	return !InTestMode()
}
