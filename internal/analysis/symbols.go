package analysis

import (
	"strings"
	"sync"

	"github.com/ianlancetaylor/demangle"
)

// symbolCache memoizes demangled function names for tracing.
type symbolCache struct {
	mu            sync.RWMutex
	demangleCache map[string]string
}

var cache = &symbolCache{
	demangleCache: make(map[string]string),
}

// CachedDemangle returns the demangled form of a C++ symbol, or the name
// unchanged when it is not mangled.
func CachedDemangle(mangled string) string {
	cache.mu.RLock()
	if cached, exists := cache.demangleCache[mangled]; exists {
		cache.mu.RUnlock()
		return cached
	}
	cache.mu.RUnlock()

	demangled := demangle.Filter(mangled, demangle.NoClones)

	cache.mu.Lock()
	cache.demangleCache[mangled] = demangled
	cache.mu.Unlock()
	return demangled
}

// IgnoreList decides which functions are never scanned. Names are matched
// by prefix and by substring.
type IgnoreList struct {
	Prefixes   []string
	Substrings []string
}

// DefaultIgnoreList skips sanitizer, fuzzer runtime and compiler support
// functions whose comparisons never reflect the target's input format.
func DefaultIgnoreList() IgnoreList {
	return IgnoreList{
		Prefixes: []string{
			"asan.", "llvm.", "sancov.", "__ubsan", "ign.", "__afl", "_fini",
			"__libc_", "__asan", "__msan", "__cmplog", "__sancov", "__san",
			"__cxx_", "__decide_deferred", "_GLOBAL", "_ZZN6__asan",
			"_ZZN6__lsan", "msan.", "LLVMFuzzerM", "LLVMFuzzerC",
			"LLVMFuzzerI", "maybe_duplicate_stderr", "discard_output",
			"close_stdout", "dup_and_close_stderr", "maybe_close_fd_mask",
			"ExecuteFilesOnyByOne",
		},
		Substrings: []string{
			"__asan", "__msan", "__ubsan", "__lsan", "__san", "__sanitize",
			"__cxx", "_GLOBAL__", "DebugCounter", "DwarfDebug", "DebugLoc",
		},
	}
}

// With returns a copy of l with extra prefixes appended.
func (l IgnoreList) With(prefixes ...string) IgnoreList {
	out := IgnoreList{
		Prefixes:   append(append([]string(nil), l.Prefixes...), prefixes...),
		Substrings: append([]string(nil), l.Substrings...),
	}
	return out
}

// Ignored reports whether the function called name should be skipped.
// Unnamed functions are always skipped.
func (l IgnoreList) Ignored(name string) bool {
	if name == "" {
		return true
	}
	for _, p := range l.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range l.Substrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
