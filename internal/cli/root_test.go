package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetRootCmd resets all global flag values and Cobra's internal "Changed"
// tracking to pristine state, including the flags of every subcommand. It
// must be called at the start of every test that invokes Execute().
func resetRootCmd(t *testing.T) {
	t.Helper()
	flagVerbose = false
	flagQuiet = false
	flagConfig = ""
	flagDir = ""
	flagNoColor = false
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetIn(nil)
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	resetSubcommandFlags(rootCmd)
	configureOpts.defines.reset()
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

// resetSubcommandFlags restores every local flag below cmd to its default.
func resetSubcommandFlags(cmd *cobra.Command) {
	for _, child := range cmd.Commands() {
		child.Flags().VisitAll(func(f *pflag.Flag) {
			if _, ok := f.Value.(*defineFlag); !ok {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
		resetSubcommandFlags(child)
	}
}

// runCLI executes the root command with args and returns stdout, stderr and
// the exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	code := Execute()
	return stdout.String(), stderr.String(), code
}

// noopCmdName is the name of the test-only noop subcommand.
const noopCmdName = "__test_noop"

// addNoopCmd registers a minimal subcommand so that PersistentPreRunE runs
// without any command side effects.
func addNoopCmd(t *testing.T) {
	t.Helper()
	noop := &cobra.Command{
		Use:    noopCmdName,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	rootCmd.AddCommand(noop)
	t.Cleanup(func() {
		rootCmd.RemoveCommand(noop)
	})
}

// chdirRestore returns to the current directory when the test ends.
func chdirRestore(t *testing.T) {
	t.Helper()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "stencil", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "template properties")
	assert.True(t, rootCmd.SilenceUsage, "SilenceUsage must be true")
	assert.True(t, rootCmd.SilenceErrors, "SilenceErrors must be true")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"configure", "describe", "list", "init", "config", "version", "completion"} {
		assert.True(t, names[want], "subcommand %q must be registered", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	tests := []struct {
		flagName  string
		shorthand string
		envHint   string
	}{
		{flagName: "verbose", shorthand: "v", envHint: "STENCIL_VERBOSE"},
		{flagName: "quiet", shorthand: "q", envHint: "STENCIL_QUIET"},
		{flagName: "config"},
		{flagName: "dir"},
		{flagName: "no-color", envHint: "NO_COLOR"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "persistent flag %q must be registered", tt.flagName)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			if tt.envHint != "" {
				assert.Contains(t, flag.Usage, tt.envHint)
			}
		})
	}
}

func TestExecute_NoSubcommand_ReturnsZero(t *testing.T) {
	resetRootCmd(t)

	stdout, _, code := runCLI(t)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Available Commands")
}

func TestExecute_UnknownSubcommand_ReturnsOne(t *testing.T) {
	resetRootCmd(t)

	_, stderr, code := runCLI(t, "nonexistent-command")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestPersistentPreRunE_Flags(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)

	_, _, code := runCLI(t, "--verbose", "--no-color", "--config", "/path/to/stencil.toml", noopCmdName)
	assert.Equal(t, 0, code)
	assert.True(t, flagVerbose)
	assert.True(t, flagNoColor)
	assert.Equal(t, "/path/to/stencil.toml", flagConfig)
}

func TestPersistentPreRunE_EnvVars(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)
	t.Setenv("STENCIL_QUIET", "1")
	t.Setenv("NO_COLOR", "1")

	_, _, code := runCLI(t, noopCmdName)
	assert.Equal(t, 0, code)
	assert.True(t, flagQuiet, "STENCIL_QUIET should enable quiet mode")
	assert.True(t, flagNoColor, "NO_COLOR should disable color")
}

func TestPersistentPreRunE_InvalidLogFormat(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)
	t.Setenv("STENCIL_LOG_FORMAT", "xml")

	_, stderr, code := runCLI(t, noopCmdName)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown log format")
}

func TestPersistentPreRunE_DirFlag(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)
	chdirRestore(t)

	tmpDir := t.TempDir()
	_, _, code := runCLI(t, "--dir", tmpDir, noopCmdName)
	assert.Equal(t, 0, code)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	resolvedCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	resolvedTmp, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, resolvedTmp, resolvedCwd)
}

func TestPersistentPreRunE_DirFlag_Invalid(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)

	_, stderr, code := runCLI(t, "--dir", "/nonexistent/path/that/does/not/exist", noopCmdName)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "changing directory to")
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	// AddCommand re-parents the shared subcommands; hand them back.
	t.Cleanup(func() {
		children := append([]*cobra.Command(nil), cmd.Commands()...)
		for _, child := range children {
			rootCmd.RemoveCommand(child)
			rootCmd.AddCommand(child)
		}
	})

	assert.Equal(t, "stencil", cmd.Use)
	for _, name := range []string{"verbose", "quiet", "config", "dir", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.NotEmpty(t, cmd.Commands())
}
