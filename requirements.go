package ppcfeatures

// Requirement describes a gate condition consumable by [Check].
//
// Built-in implementations are [Feature] and [FeatureGroup].
type Requirement interface {
	isRequirement()
}

// FeatureGroup is a reusable set of [Requirement] items.
type FeatureGroup []Requirement

// VectorCrypto is the feature set needed by POWER8 AES/GHASH code paths.
var VectorCrypto = FeatureGroup{FeatureAltivec, FeaturePowerCrypto}

func (Feature) isRequirement()      {}
func (FeatureGroup) isRequirement() {}

type requirementSet struct {
	features []Feature
	seen     map[Feature]struct{}
}

func normalizeRequirements(required []Requirement) requirementSet {
	rs := requirementSet{seen: map[Feature]struct{}{}}
	for _, req := range required {
		rs.add(req)
	}
	return rs
}

func (rs *requirementSet) add(req Requirement) {
	switch r := req.(type) {
	case Feature:
		if _, ok := rs.seen[r]; ok {
			return
		}
		rs.seen[r] = struct{}{}
		rs.features = append(rs.features, r)
	case FeatureGroup:
		for _, nested := range r {
			if nested == nil {
				continue
			}
			rs.add(nested)
		}
	}
}

// mask returns the union of all required feature flags.
func (rs requirementSet) mask() Mask {
	var m Mask
	for _, f := range rs.features {
		m |= f.Flag()
	}
	return m
}
