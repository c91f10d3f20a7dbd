// Command gen-completions writes the stencil completion scripts for bash, zsh,
// fish and PowerShell into one directory, ready to be packaged with a release.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/stencil/internal/cli"
)

// script pairs a completion file name with its generator.
type script struct {
	name string
	gen  func(root *cobra.Command, w io.Writer) error
}

var scripts = []script{
	{"stencil.bash", func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
	{"_stencil", func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) }},
	{"stencil.fish", func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) }},
	{"stencil.ps1", func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) }},
}

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		log.Error("generating completions", "err", err)
		os.Exit(1)
	}
	log.Info("completions written", "dir", outDir, "files", len(scripts))
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	root := cli.NewRootCmd()
	for _, s := range scripts {
		path := filepath.Join(outDir, s.name)
		if err := writeScript(root, path, s.gen); err != nil {
			return err
		}
		log.Debug("wrote completion script", "path", path)
	}
	return nil
}

func writeScript(root *cobra.Command, path string, gen func(*cobra.Command, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gen(root, f); err != nil {
		f.Close()
		return fmt.Errorf("generating %s: %w", path, err)
	}
	return f.Close()
}
