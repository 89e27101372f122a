package ppcfeatures

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProbeResult represents the outcome of detecting a single CPU feature.
type ProbeResult struct {
	// Supported indicates whether the feature is available and allowed.
	Supported bool
	// Error is non-nil if the detection itself failed (not just unsupported).
	Error error
}

// FeatureError represents an error when a required CPU feature is unavailable.
type FeatureError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *FeatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feature %s: %s: %v", e.Feature, e.Reason, e.Err)
	}
	return fmt.Sprintf("feature %s: %s", e.Feature, e.Reason)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// Feature represents an optional POWER instruction-set extension.
type Feature int

const (
	// FeatureAltivec is the Altivec/VMX vector unit.
	FeatureAltivec Feature = iota
	// FeaturePowerCrypto is the in-core crypto engine (vcipher and friends, POWER8+).
	FeaturePowerCrypto
	// FeatureDARN is the hardware random number instruction (darn, POWER9+).
	FeatureDARN
)

var featureNames = map[Feature]string{
	FeatureAltivec:     "altivec",
	FeaturePowerCrypto: "power-crypto",
	FeatureDARN:        "darn",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Feature(%d)", f)
}

// Flag returns the exported mask bit of the feature, or 0 if the feature is unknown.
func (f Feature) Flag() Mask {
	if _, ok := featureNames[f]; !ok {
		return 0
	}
	return Mask(1) << uint(f)
}

// FeatureValues returns all known features in registry order.
func FeatureValues() []Feature {
	return []Feature{FeatureAltivec, FeaturePowerCrypto, FeatureDARN}
}

// FeatureNames returns the names of all known features in registry order.
func FeatureNames() []string {
	values := FeatureValues()
	names := make([]string, 0, len(values))
	for _, f := range values {
		names = append(names, f.String())
	}
	return names
}

// Mask is a set of CPU features. Each set bit corresponds to exactly one [Feature].
type Mask uint32

// AllFeatures is the mask with every known feature set.
const AllFeatures = Mask(1<<0 | 1<<1 | 1<<2)

// Has reports whether the feature's flag is set in m.
func (m Mask) Has(f Feature) bool {
	flag := f.Flag()
	return flag != 0 && m&flag == flag
}

// Features returns the features set in m in registry order.
func (m Mask) Features() []Feature {
	var out []Feature
	for _, f := range FeatureValues() {
		if m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (m Mask) String() string {
	features := m.Features()
	if len(features) == 0 {
		return "none"
	}
	names := make([]string, 0, len(features))
	for _, f := range features {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}

// MarshalJSON encodes the mask as a list of feature names.
func (m Mask) MarshalJSON() ([]byte, error) {
	names := []string{}
	for _, f := range m.Features() {
		names = append(names, f.String())
	}
	return json.Marshal(names)
}

// Source identifies which detection surface produced a result.
type Source int

const (
	// SourceNone means neither the capability vector nor instruction probes were usable.
	SourceNone Source = iota
	// SourceAuxv means the result came from the HWCAP/HWCAP2 auxiliary vector words.
	SourceAuxv
	// SourceProbe means the result came from executing candidate instructions.
	SourceProbe
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceAuxv:
		return "auxv"
	case SourceProbe:
		return "instruction probe"
	default:
		return fmt.Sprintf("Source(%d)", s)
	}
}

// MarshalText encodes the source by name.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
