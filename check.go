package ppcfeatures

import "fmt"

// Check validates the specified requirements against a fresh detection and
// returns a *[FeatureError] for the first unsatisfied requirement, or nil if
// all are met. Features cleared through PPCFEATURES_CLEAR count as unsatisfied.
func Check(required ...Requirement) error {
	return CheckWith(required, AllowedFromEnv())
}

// CheckWith is [Check] with an explicit allowed mask and detection options.
func CheckWith(required []Requirement, allowed Mask, opts ...Option) error {
	rs := normalizeRequirements(required)

	r := Inspect(allowed, opts...)
	for _, f := range rs.features {
		result, known := r.Result(f)
		if !known {
			return &FeatureError{Feature: f.String(), Reason: "unknown feature"}
		}
		if !result.Supported {
			return &FeatureError{
				Feature: f.String(),
				Reason:  r.Diagnose(f),
				Err:     result.Error,
			}
		}
	}
	return nil
}

// Result maps a [Feature] to its corresponding [ProbeResult] in the report.
// Returns false as the second value if the feature is unknown.
func (r *Report) Result(f Feature) (ProbeResult, bool) {
	if _, ok := lookupCapability(f); !ok {
		return ProbeResult{}, false
	}
	return ProbeResult{
		Supported: r.Features.Has(f),
		Error:     r.errs[f],
	}, true
}

// Diagnose returns an enriched reason string explaining why a feature
// is not reported and what the operator can do about it.
func (r *Report) Diagnose(f Feature) string {
	c, ok := lookupCapability(f)
	if !ok {
		return "unknown feature"
	}
	if r.Features.Has(f) {
		return "supported"
	}

	reason := r.why[f]
	switch reason {
	case "":
	case reasonCleared:
		return fmt.Sprintf("%s (see %s)", reasonCleared, ClearEnv)
	case reasonBitClear(c):
		return fmt.Sprintf("%s; the CPU or kernel does not support %s", reason, f)
	default:
		if err := r.errs[f]; err != nil {
			return fmt.Sprintf("%s: %v", reason, err)
		}
		return reason
	}
	return "not supported"
}
