package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AbdelazizMoustafa10m/stencil/internal/config"
	"github.com/AbdelazizMoustafa10m/stencil/internal/expr"
	"github.com/AbdelazizMoustafa10m/stencil/internal/logging"
	"github.com/AbdelazizMoustafa10m/stencil/internal/prompt"
	"github.com/AbdelazizMoustafa10m/stencil/internal/resolve"
)

// defineFlag collects repeatable -D key=value definitions.
type defineFlag struct {
	values map[string]string
	order  []string
}

var _ pflag.Value = (*defineFlag)(nil)

func (d *defineFlag) String() string {
	parts := make([]string, 0, len(d.order))
	for _, k := range d.order {
		parts = append(parts, k+"="+d.values[k])
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (d *defineFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, seen := d.values[key]; !seen {
		d.order = append(d.order, key)
	}
	d.values[key] = value
	return nil
}

func (d *defineFlag) Type() string { return "key=value" }

// Map returns a copy of the definitions; later definitions of a key win.
func (d *defineFlag) Map() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

func (d *defineFlag) reset() {
	d.values = nil
	d.order = nil
}

// configureFlags holds the parsed flags for the configure command.
type configureFlags struct {
	defines       defineFlag
	descriptor    string
	batch         bool
	format        string
	output        string
	maxAttempts   int
	retainAnswers bool
	noStandard    bool
	accessible    bool
}

var configureOpts configureFlags

// newQueryer builds the interactive side of resolution. Tests replace it with
// a scripted fake.
var newQueryer = func(cmd *cobra.Command, accessible bool) resolve.Queryer {
	return prompt.NewTerminal(
		prompt.WithOutput(cmd.ErrOrStderr()),
		prompt.WithAccessible(accessible),
	)
}

var configureCmd = &cobra.Command{
	Use:   "configure [group:artifact[:version]]",
	Short: "Resolve the properties of a template",
	Long: `Resolve every property declared by a template and print the result.

The template is looked up in the catalog by coordinates, or read directly
with --descriptor. Values given with -D (or in the [properties] table of
stencil.toml) override defaults. Remaining properties are computed from
their default expressions, which may reference other properties:

  [[property]]
  key = "package"
  default = "${groupId}.${lower(serviceName)}"

In interactive mode each unresolved property is asked for, with the
computed default as suggestion, and the full set is confirmed before it is
printed. With --batch a property that cannot be resolved is an error.`,
	Example: `  stencil configure com.example:quickstart -DgroupId=com.acme -DserviceName=billing
  stencil configure --descriptor stencil-template.toml --batch --format env
  stencil configure com.example:quickstart:1.2 --output project.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigure,
}

func init() {
	f := configureCmd.Flags()
	f.VarP(&configureOpts.defines, "define", "D", "Set a property value (repeatable)")
	f.StringVar(&configureOpts.descriptor, "descriptor", "", "Read the template descriptor from this file instead of the catalog")
	f.BoolVar(&configureOpts.batch, "batch", false, "Never prompt; fail on unresolvable properties (env: STENCIL_BATCH)")
	f.StringVar(&configureOpts.format, "format", formatTOML, "Output format: "+strings.Join(outputFormats, ", "))
	f.StringVarP(&configureOpts.output, "output", "o", "", "Write the result to a file instead of stdout")
	f.IntVar(&configureOpts.maxAttempts, "max-attempts", 0, "Give up after this many rejected confirmations, 0 for no limit (env: STENCIL_MAX_ATTEMPTS)")
	f.BoolVar(&configureOpts.retainAnswers, "retain-answers", false, "Pre-fill answers from the previous round after a rejected confirmation")
	f.BoolVar(&configureOpts.noStandard, "no-standard", false, "Do not add groupId, artifactId, version and package")
	f.BoolVar(&configureOpts.accessible, "accessible", false, "Use line-based prompts (automatic when stdin is not a terminal)")

	_ = configureCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = configureCmd.MarkFlagFilename("descriptor", "toml", "yaml", "yml", "json", "jsonc")

	rootCmd.AddCommand(configureCmd)
}

// configureOverrides converts explicitly set flags into config overrides so
// that unset flags leave file and environment values in place.
func configureOverrides(cmd *cobra.Command, opts *configureFlags) *config.CLIOverrides {
	o := &config.CLIOverrides{Properties: opts.defines.Map()}
	flags := cmd.Flags()
	if flags.Changed("batch") {
		o.Batch = &opts.batch
	}
	if flags.Changed("max-attempts") {
		o.MaxAttempts = &opts.maxAttempts
	}
	if flags.Changed("retain-answers") {
		o.RetainAnswers = &opts.retainAnswers
	}
	if flags.Changed("no-standard") {
		o.NoStandard = &opts.noStandard
	}
	return o
}

func runConfigure(cmd *cobra.Command, args []string) error {
	opts := &configureOpts
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown output format %q: must be one of %s", opts.format, strings.Join(outputFormats, ", "))
	}

	rc, err := loadSettings(configureOverrides(cmd, opts))
	if err != nil {
		return err
	}
	settings := rc.Config.Resolve

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	set, err := loadDescriptorSet(ctx, rc, args, opts.descriptor)
	if err != nil {
		return err
	}
	if settings.StandardProperties {
		set = set.WithStandard()
	}

	logger := logging.New("configure")
	mode := resolve.ModeBatch
	var queryer resolve.Queryer
	if settings.Interactive {
		mode = resolve.ModeInteractive
		queryer = newQueryer(cmd, opts.accessible || !isStdinTTY())
	}
	logger.Debug("resolving",
		"template", set.Name(),
		"properties", set.Len(),
		"overrides", len(rc.Config.Properties),
		"mode", mode)

	resolver := resolve.New(expr.NewHCL(), queryer,
		resolve.WithLogger(logging.New("resolve")),
		resolve.WithMaxAttempts(settings.MaxAttempts),
		resolve.WithRetainAnswers(settings.RetainAnswers),
	)
	result, err := resolver.Resolve(ctx, set, rc.Config.Properties, mode)
	if err != nil {
		return err
	}

	if extra := undeclaredOverrides(rc, result); len(extra) > 0 {
		logger.Warn("-D values not declared by the template are only visible to expressions",
			"keys", strings.Join(extra, ","))
	}

	if opts.output == "" {
		return writeResult(cmd.OutOrStdout(), result, opts.format)
	}
	if err := writeFile(opts.output, result, opts.format); err != nil {
		return err
	}
	logger.Info("wrote properties",
		"path", opts.output,
		"properties", result.Len(),
		"fingerprint", fmt.Sprintf("%016x", result.Fingerprint()))
	return nil
}

func writeFile(path string, result *resolve.Result, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return writeResult(f, result, format)
}

// undeclaredOverrides returns the -D keys that the template does not
// declare, sorted. Keys from the [properties] table are shared between
// templates and are not reported.
func undeclaredOverrides(rc *config.ResolvedConfig, result *resolve.Result) []string {
	var keys []string
	for k := range rc.Config.Properties {
		if rc.Sources["properties."+k] != config.SourceCLI {
			continue
		}
		if _, ok := result.Get(k); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
