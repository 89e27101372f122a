package ppcfeatures

import (
	"log/slog"
	"time"
)

// detectFromProbes executes each registered instruction under the runner.
//
// Probes for features outside allowed are skipped since they could never be
// reported. A probe counts as success only when it executed and returned 1; the
// darn probe already folds the "value is not all ones" check into its return
// value. That check is a heuristic against a core that silently ignores the
// opcode, and a genuine all-ones random value will misclassify as absent.
func (d *detector) detectFromProbes(allowed Mask) (Mask, map[Feature]string, map[Feature]error) {
	var feat Mask
	why := make(map[Feature]string, len(registry))
	errs := make(map[Feature]error)

	for _, c := range registry {
		if reason, ok := d.gate(c, feat); !ok {
			why[c.feature] = reason
			continue
		}
		if !allowed.Has(c.feature) {
			why[c.feature] = reasonCleared
			continue
		}
		p, ok := d.probes[c.probe]
		if !ok {
			why[c.feature] = reasonNoProbe
			continue
		}

		start := time.Now()
		out := d.runner.Run(p)
		d.logger.Debug("ran instruction probe",
			slog.String("probe", p.Name),
			slog.String("outcome", out.String()),
			slog.Duration("took", time.Since(start)),
		)

		if out.Err != nil {
			errs[c.feature] = out.Err
		}
		if !out.Returned(1) {
			why[c.feature] = reasonProbeFailed(out)
			continue
		}
		feat |= c.feature.Flag()
	}
	return feat, why, errs
}

// darnAllOnes is what darn returns on error, and what a core that silently
// treats the opcode as a no-op may leave behind.
const darnAllOnes = ^uint64(0)

// darnResult maps a raw darn value to the probe convention: 1 for a usable
// random value, 0 otherwise.
func darnResult(v uint64) int {
	if v == darnAllOnes {
		return 0
	}
	return 1
}
