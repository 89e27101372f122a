// Package ppcfeatures provides runtime detection of optional POWER/PowerPC
// instruction-set extensions: the Altivec vector unit, the in-core crypto
// engine (vcipher) and the hardware random number instruction (darn).
//
// The result is a [Mask] that callers use to pick optimized code paths
// without building a binary per CPU.
//
// # Detection
//
// Two surfaces are consulted, in order:
//   - the HWCAP/HWCAP2 words the Linux kernel places in the auxiliary vector.
//     When present they are authoritative, even if an expected bit is clear.
//   - instruction probes, on ppc64/ppc64le builds only: each candidate
//     instruction runs under a [Runner] that contains illegal-instruction
//     faults. The default [ExecRunner] runs every probe in a child process.
//
// With neither surface the result is empty, which is a normal outcome.
//
// The crypto and darn features are only ever reported together with Altivec,
// and only on 64-bit builds.
//
// # Quick Check
//
// Gate a code path on a feature, detecting once per process:
//
//	if ppcfeatures.Has(ppcfeatures.FeaturePowerCrypto) {
//	    useVCipher()
//	}
//
// Validate requirements with actionable errors:
//
//	if err := ppcfeatures.Check(ppcfeatures.VectorCrypto); err != nil {
//	    var fe *ppcfeatures.FeatureError
//	    if errors.As(err, &fe) {
//	        log.Fatalf("cpu not ready: %s: %s", fe.Feature, fe.Reason)
//	    }
//	    log.Fatal(err)
//	}
//
// # Allowed Mask
//
// Every detection takes an allowed [Mask]; features outside it are never
// reported, whatever the hardware supports. [CPUFeatures] and [Check] derive
// it from the PPCFEATURES_CLEAR environment variable:
//
//	PPCFEATURES_CLEAR=darn ./server
//
// # Probe Children
//
// [ExecRunner] starts probe children by re-executing the current binary with
// argv[0] set to "ppcfeatures-probe-<name>" (see github.com/moby/sys/reexec).
// Importing this package therefore changes how such a process starts: it runs
// the named probe during package initialization, prints the result and exits
// before main is reached. Binaries that re-exec themselves for their own
// purposes must not pick names with that prefix.
//
// # Diagnostics
//
// [Inspect] returns a [Report] with the detection source, raw capability
// words and a reason for every feature that was not reported:
//
//	fmt.Println(ppcfeatures.Inspect(ppcfeatures.AllFeatures))
package ppcfeatures
