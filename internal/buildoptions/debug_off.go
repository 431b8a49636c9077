//go:build !corevm_debug

package buildoptions

// DebugAssertionsEnabled is false in ordinary builds. See debug_on.go.
const DebugAssertionsEnabled = false
