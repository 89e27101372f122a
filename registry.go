package ppcfeatures

import "math/bits"

// wide gates the HWCAP2-only features. Their bits are undefined on 32-bit targets,
// so this must stay a compile-time constant.
const wide = bits.UintSize == 64

// HWCAP/HWCAP2 bits, see arch/powerpc/include/uapi/asm/cputable.h.
const (
	hwcapAltivec    = 28 // PPC_FEATURE_HAS_ALTIVEC
	hwcap2VecCrypto = 25 // PPC_FEATURE2_VEC_CRYPTO
	hwcap2DARN      = 21 // PPC_FEATURE2_DARN
)

// auxvWord selects one of the hardware capability words.
type auxvWord int

const (
	wordHWCAP auxvWord = iota
	wordHWCAP2
)

func (w auxvWord) tag() uint64 {
	if w == wordHWCAP2 {
		return tagHWCAP2
	}
	return tagHWCAP
}

func (w auxvWord) String() string {
	if w == wordHWCAP2 {
		return "HWCAP2"
	}
	return "HWCAP"
}

// capability describes how a single feature is detected.
type capability struct {
	feature Feature
	word    auxvWord
	bit     uint
	// kernelName is the cputable.h constant for the bit.
	kernelName string
	// wideOnly features are never evaluated on 32-bit builds.
	wideOnly bool
	// requires must already be reported before this row is evaluated.
	requires Mask
	// probe names the entry in instructionProbes.
	probe string
}

func (c capability) hwcapBit() uint64 {
	return uint64(1) << c.bit
}

// registry is evaluated in order; requires only refers to earlier rows.
var registry = []capability{
	{
		feature:    FeatureAltivec,
		word:       wordHWCAP,
		bit:        hwcapAltivec,
		kernelName: "PPC_FEATURE_HAS_ALTIVEC",
		probe:      "altivec",
	},
	{
		feature:    FeaturePowerCrypto,
		word:       wordHWCAP2,
		bit:        hwcap2VecCrypto,
		kernelName: "PPC_FEATURE2_VEC_CRYPTO",
		wideOnly:   true,
		requires:   FeatureAltivec.Flag(),
		probe:      "power-crypto",
	},
	{
		feature:    FeatureDARN,
		word:       wordHWCAP2,
		bit:        hwcap2DARN,
		kernelName: "PPC_FEATURE2_DARN",
		wideOnly:   true,
		requires:   FeatureAltivec.Flag(),
		probe:      "darn",
	},
}

func lookupCapability(f Feature) (capability, bool) {
	for _, c := range registry {
		if c.feature == f {
			return c, true
		}
	}
	return capability{}, false
}
