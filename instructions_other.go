//go:build !ppc64 && !ppc64le

package ppcfeatures

const (
	// powerHWCAP reports whether the kernel's HWCAP words use the POWER bit layout.
	// Other architectures assign bit 28 and friends to unrelated features.
	powerHWCAP = false
	// instructionProbesCompiled reports whether this build can inject the probe instructions.
	instructionProbesCompiled = false
)

// instructionProbes is empty: there is nothing to execute off POWER.
var instructionProbes = map[string]Probe{}
