package ppcfeatures

import (
	"errors"
	"fmt"
	"math/bits"
	"testing"
)

func TestFeature_Flag(t *testing.T) {
	tests := []struct {
		feature Feature
		want    Mask
	}{
		{FeatureAltivec, 1},
		{FeaturePowerCrypto, 2},
		{FeatureDARN, 4},
		{Feature(99), 0},
	}
	for _, tt := range tests {
		if got := tt.feature.Flag(); got != tt.want {
			t.Errorf("%v.Flag() = %d, want %d", tt.feature, got, tt.want)
		}
	}
}

func TestFeature_FlagsAreDistinctPowersOfTwo(t *testing.T) {
	var seen Mask
	for _, f := range FeatureValues() {
		flag := f.Flag()
		if bits.OnesCount32(uint32(flag)) != 1 {
			t.Errorf("%v.Flag() = %#x, not a power of two", f, flag)
		}
		if seen&flag != 0 {
			t.Errorf("%v.Flag() = %#x collides with another feature", f, flag)
		}
		seen |= flag
	}
	if seen != AllFeatures {
		t.Errorf("union of flags = %#x, want AllFeatures %#x", seen, AllFeatures)
	}
}

func TestFeature_String(t *testing.T) {
	tests := []struct {
		feature Feature
		want    string
	}{
		{FeatureAltivec, "altivec"},
		{FeaturePowerCrypto, "power-crypto"},
		{FeatureDARN, "darn"},
		{Feature(99), "Feature(99)"},
	}
	for _, tt := range tests {
		if got := tt.feature.String(); got != tt.want {
			t.Errorf("Feature(%d).String() = %q, want %q", tt.feature, got, tt.want)
		}
	}
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	want := []string{"altivec", "power-crypto", "darn"}
	if len(names) != len(want) {
		t.Fatalf("FeatureNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FeatureNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMask(t *testing.T) {
	m := FeatureAltivec.Flag() | FeatureDARN.Flag()

	if !m.Has(FeatureAltivec) || !m.Has(FeatureDARN) {
		t.Errorf("%v.Has() missing a set feature", m)
	}
	if m.Has(FeaturePowerCrypto) {
		t.Errorf("%v.Has(FeaturePowerCrypto) = true", m)
	}
	if m.Has(Feature(99)) {
		t.Errorf("%v.Has(Feature(99)) = true", m)
	}
	if got := m.String(); got != "altivec,darn" {
		t.Errorf("String() = %q, want %q", got, "altivec,darn")
	}
	if got := Mask(0).String(); got != "none" {
		t.Errorf("Mask(0).String() = %q, want %q", got, "none")
	}
}

func TestMask_MarshalJSON(t *testing.T) {
	tests := []struct {
		mask Mask
		want string
	}{
		{0, `[]`},
		{AllFeatures, `["altivec","power-crypto","darn"]`},
		{FeaturePowerCrypto.Flag(), `["power-crypto"]`},
	}
	for _, tt := range tests {
		got, err := tt.mask.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if string(got) != tt.want {
			t.Errorf("Mask(%d).MarshalJSON() = %s, want %s", tt.mask, got, tt.want)
		}
	}
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		source Source
		want   string
	}{
		{SourceNone, "none"},
		{SourceAuxv, "auxv"},
		{SourceProbe, "instruction probe"},
		{Source(9), "Source(9)"},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestFeatureError(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		err := &FeatureError{Feature: "darn", Reason: "not supported"}
		if got := err.Error(); got != "feature darn: not supported" {
			t.Errorf("Error() = %q", got)
		}
		if err.Unwrap() != nil {
			t.Error("Unwrap() should be nil")
		}
	})

	t.Run("with wrapped error", func(t *testing.T) {
		inner := fmt.Errorf("exec: %w", ErrUnknownProbe)
		err := &FeatureError{Feature: "darn", Reason: "instruction probe could not run", Err: inner}
		if got := err.Error(); got != "feature darn: instruction probe could not run: exec: unknown probe" {
			t.Errorf("Error() = %q", got)
		}
		if !errors.Is(err, ErrUnknownProbe) {
			t.Error("errors.Is(err, ErrUnknownProbe) = false")
		}
	})
}

func TestOutcome(t *testing.T) {
	ok := Executed(1)
	if !ok.Executed() || !ok.Returned(1) || ok.Returned(0) {
		t.Errorf("Executed(1) = %+v", ok)
	}
	if got := ok.String(); got != "executed(1)" {
		t.Errorf("String() = %q", got)
	}

	fault := Faulted(nil)
	if fault.Executed() || fault.Returned(0) {
		t.Errorf("Faulted(nil) = %+v", fault)
	}
	if got := fault.String(); got != "faulted" {
		t.Errorf("String() = %q", got)
	}

	broken := Faulted(ErrUnknownProbe)
	if broken.Executed() {
		t.Error("Faulted(err).Executed() = true")
	}
	if got := broken.String(); got != "faulted(unknown probe)" {
		t.Errorf("String() = %q", got)
	}
}
