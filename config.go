package ppcfeatures

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ClearEnv names the environment variable listing features that must never be
// reported by [CPUFeatures], e.g. PPCFEATURES_CLEAR=darn,power-crypto.
const ClearEnv = "PPCFEATURES_CLEAR"

// ParseFeature returns the feature with the given name, ignoring case and
// surrounding whitespace.
func ParseFeature(name string) (Feature, error) {
	name = strings.TrimSpace(name)
	for _, f := range FeatureValues() {
		if strings.EqualFold(name, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown feature: %q (available: %s)", name, strings.Join(FeatureNames(), ", "))
}

// ParseMask parses a comma-separated list of feature names into a mask.
// Empty entries are skipped; an unknown name is an error.
func ParseMask(s string) (Mask, error) {
	var m Mask
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFeature(part)
		if err != nil {
			return 0, err
		}
		m |= f.Flag()
	}
	return m, nil
}

// AllowedFromEnv returns [AllFeatures] minus the features named in PPCFEATURES_CLEAR.
// Unknown names are skipped, so a typo never widens what gets reported.
func AllowedFromEnv() Mask {
	return allowedFrom(os.Getenv(ClearEnv), slog.Default())
}

func allowedFrom(clear string, logger *slog.Logger) Mask {
	allowed := AllFeatures
	for _, part := range strings.Split(clear, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFeature(part)
		if err != nil {
			logger.Warn("ignoring entry in "+ClearEnv, slog.String("entry", part), slog.Any("error", err))
			continue
		}
		allowed &^= f.Flag()
	}
	return allowed
}
