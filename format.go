package ppcfeatures

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Report describes one detection in enough detail for diagnostics.
type Report struct {
	// Arch is runtime.GOARCH of the running binary.
	Arch string `json:"arch"`
	// Source is the detection surface that produced Features.
	Source Source `json:"source"`
	// Words holds the raw capability words. Zero unless Source is SourceAuxv;
	// HWCAP2 stays zero when it was never consulted.
	Words HWCAPWords `json:"words"`
	// Allowed is the mask the detection was restricted to.
	Allowed Mask `json:"allowed"`
	// Features is the detected mask, always a subset of Allowed.
	Features Mask `json:"features"`
	// RuntimeDARN is the Go runtime's own view of darn support.
	// It is informational and never affects Features.
	RuntimeDARN bool `json:"runtime_darn"`

	why  map[Feature]string
	errs map[Feature]error
}

// Inspect runs a fresh detection restricted to allowed and returns the full report.
func Inspect(allowed Mask, opts ...Option) *Report {
	return newReport(newDetector(opts...).detect(allowed))
}

func newReport(det detection) *Report {
	return &Report{
		Arch:        runtime.GOARCH,
		Source:      det.source,
		Words:       det.words,
		Allowed:     det.allowed,
		Features:    det.mask,
		RuntimeDARN: cpu.PPC64.HasDARN,
		why:         det.why,
		errs:        det.errs,
	}
}

// String returns a human-readable summary of the report.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Architecture: %s\n", r.Arch)
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	b.WriteString("\n")

	if r.Source == SourceAuxv {
		b.WriteString("Capability Vector:\n")
		fmt.Fprintf(&b, "  HWCAP:  %#016x\n", r.Words.HWCAP)
		fmt.Fprintf(&b, "  HWCAP2: %#016x\n", r.Words.HWCAP2)
		b.WriteString("\n")
	}

	b.WriteString("Features:\n")
	for _, f := range FeatureValues() {
		result, _ := r.Result(f)
		writeResult(&b, "  "+f.String(), result)
		if !result.Supported {
			fmt.Fprintf(&b, "    %s\n", r.Diagnose(f))
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Allowed: %s\n", r.Allowed)
	fmt.Fprintf(&b, "Go runtime darn: %s\n", yesNo(r.RuntimeDARN))

	return b.String()
}

func writeResult(b *strings.Builder, name string, res ProbeResult) {
	if res.Error != nil {
		fmt.Fprintf(b, "%s: %s (error: %v)\n", name, yesNo(res.Supported), res.Error)
	} else {
		fmt.Fprintf(b, "%s: %s\n", name, yesNo(res.Supported))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
