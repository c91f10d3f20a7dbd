package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/logging"
	"github.com/AbdelazizMoustafa10m/stencil/internal/resolve"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool
)

// rootCmd is the base command for stencil.
var rootCmd = &cobra.Command{
	Use:   "stencil",
	Short: "Resolve template properties for project generation",
	Long: `stencil resolves the properties a project template needs before files are
generated. Defaults may reference other properties with ${...} expressions;
values are taken from -D overrides, computed from defaults, or asked for
interactively, then confirmed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("STENCIL_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("STENCIL_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("STENCIL_NO_COLOR") != "") {
			flagNoColor = true
		}

		format, err := logging.ParseFormat(os.Getenv("STENCIL_LOG_FORMAT"))
		if err != nil {
			return err
		}
		logging.Setup(flagVerbose, flagQuiet, format)

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: STENCIL_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: STENCIL_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to stencil.toml config file")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Override working directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: STENCIL_NO_COLOR, NO_COLOR)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, resolve.ErrUserAborted) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "aborted")
			return 1
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. The
// persistent flags are registered on local variables so the returned command
// is safe for concurrent use by generators.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) output (env: STENCIL_VERBOSE)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors (env: STENCIL_QUIET)")
	cmd.PersistentFlags().String("config", "", "Path to stencil.toml config file")
	cmd.PersistentFlags().String("dir", "", "Override working directory")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (env: STENCIL_NO_COLOR, NO_COLOR)")

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
