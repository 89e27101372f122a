package ppcfeatures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/moby/sys/reexec"
)

// Probe is a minimal code fragment executing one representative instruction.
type Probe struct {
	// Name identifies the probe across process boundaries.
	Name string
	// Fn executes the instruction and returns a value the caller checks.
	Fn func() int
}

// Outcome is the tagged result of running a [Probe]: either the probe executed
// and returned Value, or it faulted.
type Outcome struct {
	executed bool
	// Value is the probe's return value. Only meaningful when Executed reports true.
	Value int
	// Err is non-nil when the runner itself failed rather than the instruction.
	Err error
}

// Executed returns the outcome of a probe that completed without a hardware fault.
func Executed(value int) Outcome {
	return Outcome{executed: true, Value: value}
}

// Faulted returns the outcome of a probe whose execution was cut short.
// A nil err means the instruction trapped; a non-nil err means the probe
// could not be run at all.
func Faulted(err error) Outcome {
	return Outcome{Err: err}
}

// Executed reports whether the probe ran to completion.
func (o Outcome) Executed() bool {
	return o.executed
}

// Returned reports whether the probe ran to completion and returned want.
func (o Outcome) Returned(want int) bool {
	return o.executed && o.Value == want
}

func (o Outcome) String() string {
	switch {
	case o.executed:
		return fmt.Sprintf("executed(%d)", o.Value)
	case o.Err != nil:
		return fmt.Sprintf("faulted(%v)", o.Err)
	default:
		return "faulted"
	}
}

// Runner executes probes under fault containment. Implementations must never
// let a hardware fault raised by a probe reach the calling process.
type Runner interface {
	Run(p Probe) Outcome
}

// RunnerFunc adapts a function to the [Runner] interface.
type RunnerFunc func(p Probe) Outcome

func (f RunnerFunc) Run(p Probe) Outcome { return f(p) }

// probeCommandPrefix prefixes the argv[0] a probe child is started with.
const probeCommandPrefix = "ppcfeatures-probe-"

// defaultProbeTimeout bounds a child that never reaches the probe.
const defaultProbeTimeout = 5 * time.Second

// exitUnknownProbe is the child exit code for a probe name it does not know.
const exitUnknownProbe = 3

var (
	// ErrUnknownProbe is reported for a probe name missing from the probe table.
	ErrUnknownProbe = errors.New("unknown probe")
	// ErrProbeTimeout is reported when a child does not exit in time.
	ErrProbeTimeout = errors.New("probe timed out")
)

// ExecRunner runs each probe in a fresh copy of the current executable.
//
// Every probe in the package's probe table is registered with reexec under
// "ppcfeatures-probe-<name>". The child, started with that argv[0], runs exactly
// one probe during package initialization, prints the result and exits. An
// illegal instruction kills only the child, which the parent reports as a fault.
type ExecRunner struct {
	// Timeout bounds each child. Defaults to 5s.
	Timeout time.Duration
}

// Run implements [Runner].
func (r ExecRunner) Run(p Probe) Outcome {
	if _, ok := instructionProbes[p.Name]; !ok {
		return Faulted(fmt.Errorf("probe %s: %w", p.Name, ErrUnknownProbe))
	}

	cmd := reexec.Command(probeCommand(p.Name))
	if cmd == nil {
		return Faulted(fmt.Errorf("probe %s: re-exec not supported on %s", p.Name, runtime.GOOS))
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return Faulted(fmt.Errorf("probe %s: start child: %w", p.Name, err))
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	timer := time.AfterFunc(timeout, func() {
		_ = cmd.Process.Kill()
	})
	err := cmd.Wait()
	if !timer.Stop() {
		return Faulted(fmt.Errorf("probe %s: %w after %s", p.Name, ErrProbeTimeout, timeout))
	}

	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			if ee.ExitCode() == exitUnknownProbe {
				return Faulted(fmt.Errorf("probe %s: %w", p.Name, ErrUnknownProbe))
			}
			// Killed by a signal (SIGILL, SIGSEGV, ...) or any other abnormal exit.
			return Faulted(nil)
		}
		return Faulted(fmt.Errorf("probe %s: wait child: %w", p.Name, err))
	}

	value, err := strconv.Atoi(strings.TrimSpace(stdout.String()))
	if err != nil {
		return Faulted(fmt.Errorf("probe %s: malformed child output %q: %w", p.Name, stdout.String(), err))
	}
	return Executed(value)
}

func probeCommand(name string) string {
	return probeCommandPrefix + name
}

// init registers the probe table with reexec and serves the request when this
// process is a probe child. All package-level variables, including test-only
// probe tables, are initialized before init runs.
func init() {
	for name := range instructionProbes {
		reexec.Register(probeCommand(name), func() {
			os.Exit(serveProbe(name, os.Stdout))
		})
	}
	reexec.Init()
}

func serveProbe(name string, w io.Writer) int {
	p, ok := instructionProbes[name]
	if !ok || p.Fn == nil {
		return exitUnknownProbe
	}
	fmt.Fprintln(w, p.Fn())
	return 0
}
