// Command stencil resolves the properties of a project template from -D
// overrides, stencil.toml and interactive answers.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/stencil/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
