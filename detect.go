package ppcfeatures

import (
	"fmt"
	"log/slog"
)

// config holds the collaborators of a detection.
type config struct {
	vector CapabilityVector
	runner Runner
	logger *slog.Logger
}

// Option configures how features are detected.
type Option func(*config)

// WithCapabilityVector replaces the OS capability vector.
// This is primarily for testing; production code uses [SystemVector].
func WithCapabilityVector(v CapabilityVector) Option {
	return func(c *config) {
		c.vector = v
	}
}

// WithRunner replaces the probe runner. The default is [ExecRunner].
func WithRunner(r Runner) Option {
	return func(c *config) {
		c.runner = r
	}
}

// WithLogger sets the logger used for debug output. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// detector runs one detection. It is built fresh for every call.
type detector struct {
	vector CapabilityVector
	runner Runner
	logger *slog.Logger
	// probes is nil when the build cannot inject instructions.
	probes map[string]Probe
}

func newDetector(opts ...Option) *detector {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.vector == nil {
		cfg.vector = systemVector(cfg.logger)
	}
	if cfg.runner == nil {
		cfg.runner = ExecRunner{}
	}

	d := &detector{
		vector: cfg.vector,
		runner: cfg.runner,
		logger: cfg.logger,
	}
	if instructionProbesCompiled {
		d.probes = instructionProbes
	}
	return d
}

// detection is the full outcome of one detection call.
type detection struct {
	source  Source
	allowed Mask
	mask    Mask
	words   HWCAPWords
	why     map[Feature]string
	errs    map[Feature]error
}

// DetectCPUFeatures returns the POWER instruction-set extensions supported by the
// running CPU, restricted to allowed.
//
// When the OS exposes HWCAP words they are the only source consulted. Otherwise,
// on builds that can inject POWER instructions, each candidate instruction is
// executed under a [Runner]. With neither surface the result is 0, which is a
// normal outcome rather than an error.
//
// The result is computed afresh on every call; see [CPUFeatures] for a cached view.
func DetectCPUFeatures(allowed Mask, opts ...Option) Mask {
	return newDetector(opts...).detect(allowed).mask
}

func (d *detector) detect(allowed Mask) detection {
	det := detection{allowed: allowed}

	switch {
	case d.vector.Available():
		det.source = SourceAuxv
		det.mask, det.words, det.why = d.detectFromAuxv(allowed)
	case d.probes != nil:
		det.source = SourceProbe
		det.mask, det.why, det.errs = d.detectFromProbes(allowed)
	default:
		det.source = SourceNone
		det.why = make(map[Feature]string, len(registry))
		for _, c := range registry {
			det.why[c.feature] = reasonNoSurface
		}
	}

	det.mask &= allowed
	d.logger.Debug("detected cpu features",
		slog.String("source", det.source.String()),
		slog.String("allowed", allowed.String()),
		slog.String("features", det.mask.String()),
	)
	return det
}

// gate checks the build and precondition constraints of a registry row against
// the features reported so far.
func (d *detector) gate(c capability, reported Mask) (string, bool) {
	if c.wideOnly && !wide {
		return reasonNarrow, false
	}
	if missing := c.requires &^ reported; missing != 0 {
		return fmt.Sprintf("requires %s", missing), false
	}
	return "", true
}

const (
	reasonCleared   = "disabled by the allowed feature mask"
	reasonNarrow    = "only detectable on 64-bit builds"
	reasonNoProbe   = "no instruction probe compiled for this feature"
	reasonNoSurface = "no capability vector and no instruction probes on this platform"
)

func reasonBitClear(c capability) string {
	return fmt.Sprintf("%s bit %d (%s) not set by the kernel", c.word, c.bit, c.kernelName)
}

func reasonProbeFailed(out Outcome) string {
	if out.Executed() {
		return fmt.Sprintf("instruction probe returned %d", out.Value)
	}
	if out.Err != nil {
		return "instruction probe could not run"
	}
	return "instruction probe faulted"
}

func hexWord(v uint64) string {
	return fmt.Sprintf("%#x", v)
}
