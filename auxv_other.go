//go:build !linux

package ppcfeatures

import "log/slog"

// Linux auxiliary vector tags. They only name the words in [StaticVector]
// here; other kernels number their tags differently and are never read.
const (
	tagHWCAP  = 16
	tagHWCAP2 = 26
)

// SystemVector returns the capability vector of the running process.
// On non-Linux platforms the vector is never available and detection
// falls back to instruction probes.
func SystemVector() CapabilityVector {
	return noVector{}
}

func systemVector(_ *slog.Logger) CapabilityVector {
	return noVector{}
}
