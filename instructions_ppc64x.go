//go:build ppc64 || ppc64le

package ppcfeatures

const (
	// powerHWCAP reports whether the kernel's HWCAP words use the POWER bit layout.
	powerHWCAP = true
	// instructionProbesCompiled reports whether this build can inject the probe instructions.
	instructionProbesCompiled = true
)

// Implemented in instructions_ppc64x.s.
func vorProbe() int
func vcipherProbe() int
func darnProbe() uint64

var instructionProbes = map[string]Probe{
	"altivec":      {Name: "altivec", Fn: vorProbe},
	"power-crypto": {Name: "power-crypto", Fn: vcipherProbe},
	"darn":         {Name: "darn", Fn: func() int { return darnResult(darnProbe()) }},
}
