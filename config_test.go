package ppcfeatures

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseFeature(t *testing.T) {
	tests := []struct {
		input   string
		want    Feature
		wantErr bool
	}{
		{"altivec", FeatureAltivec, false},
		{" Power-Crypto ", FeaturePowerCrypto, false},
		{"DARN", FeatureDARN, false},
		{"vsx", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFeature(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFeature(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFeature(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFeature_ErrorListsAvailable(t *testing.T) {
	_, err := ParseFeature("vsx")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "altivec, power-crypto, darn") {
		t.Errorf("error %q missing available features", err)
	}
}

func TestParseMask(t *testing.T) {
	tests := []struct {
		input   string
		want    Mask
		wantErr bool
	}{
		{"", 0, false},
		{" , ,", 0, false},
		{"altivec", FeatureAltivec.Flag(), false},
		{"darn,altivec,darn", FeatureAltivec.Flag() | FeatureDARN.Flag(), false},
		{"altivec,power-crypto,darn", AllFeatures, false},
		{"altivec,sse2", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMask(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMask(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMask(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAllowedFrom(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tests := []struct {
		clear string
		want  Mask
	}{
		{"", AllFeatures},
		{"darn", FeatureAltivec.Flag() | FeaturePowerCrypto.Flag()},
		{"ALTIVEC, power-crypto", FeatureDARN.Flag()},
		{"altivec,power-crypto,darn", 0},
		{"bogus,darn", FeatureAltivec.Flag() | FeaturePowerCrypto.Flag()},
	}
	for _, tt := range tests {
		if got := allowedFrom(tt.clear, logger); got != tt.want {
			t.Errorf("allowedFrom(%q) = %v, want %v", tt.clear, got, tt.want)
		}
	}

	if !strings.Contains(logs.String(), "bogus") {
		t.Errorf("unknown entry was not logged: %q", logs.String())
	}
}

func TestAllowedFromEnv(t *testing.T) {
	t.Setenv(ClearEnv, "power-crypto")
	if got, want := AllowedFromEnv(), FeatureAltivec.Flag()|FeatureDARN.Flag(); got != want {
		t.Errorf("AllowedFromEnv() = %v, want %v", got, want)
	}
}
