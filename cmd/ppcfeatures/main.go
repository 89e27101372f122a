package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/leodido/ppcfeatures"
	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ppcfeatures",
		Short: "POWER instruction-set extension detection",
		Long: `ppcfeatures reports which optional POWER/PowerPC instruction-set extensions
the running CPU supports: Altivec, in-core crypto (vcipher) and darn.

It reads the HWCAP/HWCAP2 words exposed by the kernel and, where those are
unavailable, executes candidate instructions in isolated child processes.
Use it for operator diagnostics or CI/CD gating.`,
		SilenceUsage: true,
	}

	root.AddCommand(probeCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(hwcapCmd())
	root.AddCommand(versionCmd())
	return root
}

// ProbeOptions defines flags for the probe subcommand.
type ProbeOptions struct {
	JSON    bool                `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
	Clear   featureRequirements `flag:"clear" flagshort:"c" flagdescr:"Features to exclude from the allowed mask" flagcustom:"true"`
	Verbose bool                `flag:"verbose" flagshort:"v" flagdescr:"Log detection steps to stderr"`
}

func (o *ProbeOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *ProbeOptions) DefineClear(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*featureRequirements)
	*fieldPtr = nil
	return fieldPtr, descr
}

func (o *ProbeOptions) DecodeClear(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseFeatureRequirements(s)
}

func probeCmd() *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Detect all CPU features and display results",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			allowed := ppcfeatures.AllowedFromEnv() &^ opts.Clear.mask()
			r := ppcfeatures.Inspect(allowed, ppcfeatures.WithLogger(newLogger(c.ErrOrStderr(), opts.Verbose)))

			if opts.JSON {
				return printJSON(c.OutOrStdout(), reportJSON(r))
			}

			fmt.Fprint(c.OutOrStdout(), r)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Require featureRequirements `flag:"require" flagshort:"r" flagdescr:"Required features (see available features above)" flagrequired:"true" flagcustom:"true"`
	JSON    bool                `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

// Attach defines the flags. structcli wires CompleteRequire as the --require completion.
func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *CheckOptions) DefineRequire(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*featureRequirements)
	*fieldPtr = nil
	return fieldPtr, descr
}

func (o *CheckOptions) DecodeRequire(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseFeatureRequirements(s)
}

// CompleteRequire suggests feature names for the comma-separated --require value.
func (o *CheckOptions) CompleteRequire(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	current := toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		current = toComplete[i+1:]
	}

	selected := map[string]struct{}{}
	for _, part := range strings.Split(prefix, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			selected[name] = struct{}{}
		}
	}

	var out []string
	for _, name := range ppcfeatures.FeatureNames() {
		if _, dup := selected[name]; dup {
			continue
		}
		if strings.HasPrefix(name, strings.ToLower(current)) {
			out = append(out, prefix+name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func checkCmd() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check specific CPU feature requirements",
		Long:  checkLongDescription(),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(opts.Require) == 0 {
				return fmt.Errorf("no features specified")
			}

			requirements := make([]ppcfeatures.Requirement, 0, len(opts.Require))
			for _, f := range opts.Require {
				requirements = append(requirements, f)
			}

			err := ppcfeatures.Check(requirements...)
			if err != nil {
				var fe *ppcfeatures.FeatureError
				if !errors.As(err, &fe) {
					return err
				}
				if opts.JSON {
					if jerr := printJSON(c.OutOrStdout(), map[string]any{
						"ok":      false,
						"feature": fe.Feature,
						"reason":  fe.Reason,
					}); jerr != nil {
						return jerr
					}
				} else {
					fmt.Fprintf(c.ErrOrStderr(), "FAIL: %s - %s\n", fe.Feature, fe.Reason)
				}
				// Already reported; main only turns the error into exit code 1.
				c.SilenceErrors = true
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{"ok": true})
			}
			fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// HWCAPOptions defines flags for the hwcap subcommand.
type HWCAPOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *HWCAPOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func hwcapCmd() *cobra.Command {
	opts := &HWCAPOptions{}

	cmd := &cobra.Command{
		Use:   "hwcap",
		Short: "Display the raw HWCAP and HWCAP2 words",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			words, err := ppcfeatures.ReadHWCAP()
			if errors.Is(err, ppcfeatures.ErrNoCapabilityVector) {
				fmt.Fprintln(c.ErrOrStderr(), "capability vector not available")
				c.SilenceErrors = true
				return err
			}
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{
					"AT_HWCAP":  fmt.Sprintf("%#x", words.HWCAP),
					"AT_HWCAP2": fmt.Sprintf("%#x", words.HWCAP2),
				})
			}

			fmt.Fprintf(c.OutOrStdout(), "AT_HWCAP:  %#016x\n", words.HWCAP)
			fmt.Fprintf(c.OutOrStdout(), "AT_HWCAP2: %#016x\n", words.HWCAP2)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool version and detected features",
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(out, "ppcfeatures %s", version)
				if commit != "" {
					fmt.Fprintf(out, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(out, " built %s", date)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, "ppcfeatures (dev)")
			}

			fmt.Fprintf(out, "Features: %s\n", ppcfeatures.CPUFeatures())
			return nil
		},
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func reportJSON(r *ppcfeatures.Report) map[string]any {
	reasons := map[string]string{}
	for _, f := range ppcfeatures.FeatureValues() {
		if !r.Features.Has(f) {
			reasons[f.String()] = r.Diagnose(f)
		}
	}
	return map[string]any{
		"report":  r,
		"reasons": reasons,
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func availableFeatures() string {
	return strings.Join(ppcfeatures.FeatureNames(), ", ")
}

func checkLongDescription() string {
	return fmt.Sprintf(`Check that the CPU supports all required features.
Exits with code 0 if all requirements are met, 1 if any are missing.

Available features:
%s`, formatWrappedList(ppcfeatures.FeatureNames(), "  ", 80))
}

func formatWrappedList(items []string, indent string, maxWidth int) string {
	if len(items) == 0 {
		return indent + "(none)"
	}

	lines := make([]string, 0, len(items))
	line := indent
	for i, item := range items {
		token := item
		if i < len(items)-1 {
			token += ", "
		}

		if len(line)+len(token) > maxWidth && line != indent {
			lines = append(lines, strings.TrimRight(line, " "))
			line = indent + token
			continue
		}

		line += token
	}

	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}

type featureRequirements []ppcfeatures.Feature

var featureIdentifierMap = func() map[ppcfeatures.Feature][]string {
	ids := make(map[ppcfeatures.Feature][]string, len(ppcfeatures.FeatureValues()))
	for _, f := range ppcfeatures.FeatureValues() {
		ids[f] = []string{f.String()}
	}
	return ids
}()

func (r *featureRequirements) String() string {
	names := make([]string, 0, len(*r))
	for _, f := range *r {
		names = append(names, f.String())
	}

	return strings.Join(names, ",")
}

func (r *featureRequirements) Set(input string) error {
	features, err := parseFeatureRequirements(input)
	if err != nil {
		return err
	}

	*r = append(*r, features...)
	return nil
}

func (r *featureRequirements) Type() string {
	return "feature"
}

func (r featureRequirements) mask() ppcfeatures.Mask {
	var m ppcfeatures.Mask
	for _, f := range r {
		m |= f.Flag()
	}
	return m
}

func parseFeatureRequirements(input string) (featureRequirements, error) {
	if strings.TrimSpace(input) == "" {
		return featureRequirements{}, nil
	}

	parts := strings.Split(input, ",")
	features := make(featureRequirements, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		var feature ppcfeatures.Feature
		enumValue := enumflag.New(&feature, "ppcfeatures.Feature", featureIdentifierMap, enumflag.EnumCaseInsensitive)
		if err := enumValue.Set(name); err != nil {
			return nil, fmt.Errorf("unknown feature: %q (available: %s)", name, availableFeatures())
		}

		features = append(features, feature)
	}

	return features, nil
}
