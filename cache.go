package ppcfeatures

import "sync"

// Cache for CPUFeatures() results. The instruction set of a running process
// does not change, so we detect once and hand out the same mask afterwards.
var (
	cachedMask  Mask
	cacheFilled bool
	cacheMu     sync.Mutex
)

// CPUFeatures detects CPU features once and caches the result.
// The allowed mask comes from [AllowedFromEnv]. Subsequent calls return the
// cached result without re-detecting.
// Use [DetectCPUFeatures] if you need fresh results or a custom allowed mask.
func CPUFeatures() Mask {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cacheFilled {
		return cachedMask
	}
	cachedMask = DetectCPUFeatures(AllowedFromEnv())
	cacheFilled = true
	return cachedMask
}

// Has reports whether the cached feature set contains f.
func Has(f Feature) bool {
	return CPUFeatures().Has(f)
}

// ResetCache clears the cached mask, forcing the next [CPUFeatures] call to re-detect.
// This is primarily useful for testing.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cachedMask = 0
	cacheFilled = false
}
