package ppcfeatures

import "log/slog"

// detectFromAuxv maps HWCAP/HWCAP2 bits to feature flags.
//
// The result is authoritative: a clear bit means the feature is absent, there is
// no fallback to instruction probes. HWCAP2 is read only once a row that depends on
// it survives its precondition, which on 32-bit builds never happens.
func (d *detector) detectFromAuxv(allowed Mask) (Mask, HWCAPWords, map[Feature]string) {
	var (
		feat  Mask
		words HWCAPWords
		read  [2]bool
		why   = make(map[Feature]string, len(registry))
	)

	load := func(w auxvWord) uint64 {
		if !read[w] {
			read[w] = true
			val := d.vector.Word(w.tag())
			if w == wordHWCAP2 {
				words.HWCAP2 = val
			} else {
				words.HWCAP = val
			}
			d.logger.Debug("read capability word", slog.String("word", w.String()), slog.String("value", hexWord(val)))
		}
		if w == wordHWCAP2 {
			return words.HWCAP2
		}
		return words.HWCAP
	}

	for _, c := range registry {
		if reason, ok := d.gate(c, feat); !ok {
			why[c.feature] = reason
			continue
		}
		if load(c.word)&c.hwcapBit() == 0 {
			why[c.feature] = reasonBitClear(c)
			continue
		}
		if !allowed.Has(c.feature) {
			why[c.feature] = reasonCleared
			continue
		}
		feat |= c.feature.Flag()
	}
	return feat, words, why
}
