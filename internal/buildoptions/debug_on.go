//go:build corevm_debug

package buildoptions

// DebugAssertionsEnabled gates the "debug builds only" assertions named
// throughout spec.md (handle-scope baseline checks, catch-table coverage
// checks, shape-monotonicity checks). Build with -tags corevm_debug to
// enable them; production embedders leave them compiled out.
const DebugAssertionsEnabled = true
