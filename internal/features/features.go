// Package features implements a feature flagging mechanism for corevm.
//
// Features are intended to control engine-wide behavior that an embedder
// may want to toggle without recompiling: the spec.md §9 Open Questions
// (weak inline caches, the Mod opcode's fmod-vs-round-to-nearest behavior)
// are both modeled as features rather than compile-time constants.
package features

import (
	"os"
	"strings"
	"sync"
)

// EnvVarName is the name of the environment variable which contains the
// list of feature flags.
const EnvVarName = "COREVM_FEATURES"

const (
	// WeakInlineCaches makes PropertyCache entries weak GC roots: a cache
	// whose HiddenClass is otherwise unreachable is cleared instead of
	// keeping the class graph alive. See spec.md §9 Open Questions.
	WeakInlineCaches = "weak-inline-caches"
	// ModRoundToNearest switches the Mod opcode from the C-library fmod
	// (round-toward-zero) behavior to ECMA-compliant round-to-nearest.
	// See spec.md §4.1 "Arithmetic and comparisons".
	ModRoundToNearest = "mod-round-to-nearest"
)

var (
	lock sync.RWMutex
	list []string
)

// EnableFromEnvironment extracts the list of corevm features enabled from
// the COREVM_FEATURES environment variable.
func EnableFromEnvironment() {
	if v := os.Getenv(EnvVarName); v != "" {
		Enable(strings.Split(v, ",")...)
	}
}

// Enable the list of features passed as arguments.
//
// The function is idempotent and atomic; features that are already present
// are skipped. Unrecognized features are ignored.
func Enable(fs ...string) {
	lock.Lock()
	defer lock.Unlock()

	enabled := list
	for _, f := range fs {
		if supported(f) && !have(enabled, f) {
			enabled = append(enabled, f)
		}
	}
	list = enabled
}

// Disable removes a feature from the enabled list, if present.
func Disable(f string) {
	lock.Lock()
	defer lock.Unlock()

	filtered := list[:0:0]
	for _, e := range list {
		if e != f {
			filtered = append(filtered, e)
		}
	}
	list = filtered
}

// List returns the current list of enabled features. The caller must treat
// the returned slice as read-only.
func List() []string {
	lock.RLock()
	defer lock.RUnlock()
	return list
}

// Have returns true if the given feature is enabled.
func Have(feature string) bool {
	lock.RLock()
	features := list
	lock.RUnlock()
	return have(features, feature)
}

func have(list []string, feature string) bool {
	for _, f := range list {
		if f == feature {
			return true
		}
	}
	return false
}

func supported(feature string) bool {
	switch feature {
	case WeakInlineCaches, ModRoundToNearest:
		return true
	default:
		return false
	}
}
