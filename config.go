package corevm

import "github.com/corevm/corevm/internal/frame"

// RuntimeConfig configures a Runtime before it is created. It follows
// the teacher's (tetratelabs/wazero) config.go fluent, clone-and-set
// pattern: every With* method returns a new RuntimeConfig rather than
// mutating the receiver, so a shared base config can be specialized per
// Runtime without aliasing bugs.
type RuntimeConfig struct {
	maxCallStackDepth int
	dictionaryThreshold int
	lazyParseThreshold  int
	weakInlineCaches    bool
	debugLogging        bool
}

// NewRuntimeConfig returns the default configuration: a
// frame.DefaultMaxDepth call stack, the spec's own dictionary-mode and
// lazy-parse thresholds, strong inline caches, and logging disabled.
func NewRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		maxCallStackDepth: frame.DefaultMaxDepth,
	}
}

func (c RuntimeConfig) clone() RuntimeConfig { return c }

// WithMaxCallStackDepth overrides the default call-stack depth bound
// (spec.md §4.1's "bounded call stack").
func (c RuntimeConfig) WithMaxCallStackDepth(depth int) RuntimeConfig {
	ret := c.clone()
	ret.maxCallStackDepth = depth
	return ret
}

// WithDictionaryThreshold overrides spec.md §3.3's K, the own-property
// count above which an object converts to dictionary mode. 0 keeps the
// package default (internal/shape.DictionaryConversionThreshold).
func (c RuntimeConfig) WithDictionaryThreshold(k int) RuntimeConfig {
	ret := c.clone()
	ret.dictionaryThreshold = k
	return ret
}

// WithLazyParseThreshold overrides the byte-length threshold above
// which a function body is parsed lazily (spec.md §7). 0 keeps the
// package default (internal/parser.LazyParseThreshold).
func (c RuntimeConfig) WithLazyParseThreshold(n int) RuntimeConfig {
	ret := c.clone()
	ret.lazyParseThreshold = n
	return ret
}

// WithWeakInlineCaches enables the Open Question resolution recorded in
// DESIGN.md: PropertyCache entries become weak references to their
// HiddenClass, invalidated rather than keeping a dead shape graph alive.
func (c RuntimeConfig) WithWeakInlineCaches(enabled bool) RuntimeConfig {
	ret := c.clone()
	ret.weakInlineCaches = enabled
	return ret
}

// WithDebugLogging makes NewRuntime attach internal/vmlog's StderrHandler
// to the Root logger instead of the default discarding handler. The
// handler stays installed process-wide after that Runtime is gone, and
// loggers derived from Root before the call keep the handler they were
// created with.
func (c RuntimeConfig) WithDebugLogging(enabled bool) RuntimeConfig {
	ret := c.clone()
	ret.debugLogging = enabled
	return ret
}
