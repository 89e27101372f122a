package ppcfeatures

import "errors"

// ErrNoCapabilityVector is returned when the OS does not expose HWCAP words to the process.
var ErrNoCapabilityVector = errors.New("capability vector not available")

// CapabilityVector exposes the OS hardware capability words to the detector.
type CapabilityVector interface {
	// Available reports whether the OS exposes the auxiliary vector at all.
	Available() bool
	// Word returns the value stored under an auxiliary vector tag, or 0 if absent.
	Word(tag uint64) uint64
}

// StaticVector is a [CapabilityVector] over a fixed set of tag/value pairs.
// A nil StaticVector is unavailable.
type StaticVector map[uint64]uint64

func (v StaticVector) Available() bool { return v != nil }

func (v StaticVector) Word(tag uint64) uint64 { return v[tag] }

// NewStaticVector builds a vector holding the given HWCAP and HWCAP2 words.
func NewStaticVector(hwcap, hwcap2 uint64) StaticVector {
	return StaticVector{
		tagHWCAP:  hwcap,
		tagHWCAP2: hwcap2,
	}
}

type noVector struct{}

func (noVector) Available() bool     { return false }
func (noVector) Word(_ uint64) uint64 { return 0 }

// HWCAPWords holds the raw hardware capability words.
type HWCAPWords struct {
	HWCAP  uint64 `json:"hwcap"`
	HWCAP2 uint64 `json:"hwcap2"`
}

// ReadHWCAP returns the raw HWCAP and HWCAP2 words of the running process.
// It returns [ErrNoCapabilityVector] when the OS does not expose them.
func ReadHWCAP() (HWCAPWords, error) {
	return readHWCAP(SystemVector())
}

func readHWCAP(v CapabilityVector) (HWCAPWords, error) {
	if !v.Available() {
		return HWCAPWords{}, ErrNoCapabilityVector
	}
	return HWCAPWords{
		HWCAP:  v.Word(tagHWCAP),
		HWCAP2: v.Word(tagHWCAP2),
	}, nil
}
