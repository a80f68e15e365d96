// Cross-platform capability probing, per spec §9's design note: "is
// binary X available on this host?" is a small yes/no probe whose
// implementation varies by OS but whose contract does not.
package enumerator

import (
	"os/exec"
	"runtime"
	"sync"
)

var (
	capMu    sync.Mutex
	capCache = map[string]bool{}
)

// HasBinary reports whether name is resolvable on PATH. Results are
// memoized per-process; ResetCapabilityCache clears the memo for tests.
func HasBinary(name string) bool {
	capMu.Lock()
	defer capMu.Unlock()
	if v, ok := capCache[name]; ok {
		return v
	}
	found := probeBinary(name)
	capCache[name] = found
	return found
}

// ResetCapabilityCache clears the memoized probe results (for tests).
func ResetCapabilityCache() {
	capMu.Lock()
	defer capMu.Unlock()
	capCache = map[string]bool{}
}

func probeBinary(name string) bool {
	if runtime.GOOS == "windows" {
		_, err := exec.LookPath(name + ".exe")
		if err == nil {
			return true
		}
	}
	_, err := exec.LookPath(name)
	return err == nil
}
