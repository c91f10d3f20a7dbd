// Command gen-manpages renders a section 1 man page for stencil and every
// subcommand with cobra/doc.
//
// Usage:
//
//	go run ./scripts/gen-manpages [output-dir]
//
// The default output directory is "man/man1".
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/stencil/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/stencil/internal/cli"
)

func main() {
	outDir := "man/man1"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal("creating output directory", "dir", outDir, "err", err)
	}

	root := cli.NewRootCmd()
	root.DisableAutoGenTag = true

	header := &doc.GenManHeader{
		Title:   "STENCIL",
		Section: "1",
		Source:  "stencil " + buildinfo.GetInfo().Version,
		Manual:  "stencil manual",
	}
	if err := doc.GenManTree(root, header, outDir); err != nil {
		log.Fatal("generating man pages", "err", err)
	}
	log.Info("man pages written", "dir", outDir)
}
