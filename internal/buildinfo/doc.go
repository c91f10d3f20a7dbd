// Package buildinfo reports the stencil version. Release builds set the
// variables below with -ldflags -X; `go install` builds fall back to the
// module version recorded in the binary.
package buildinfo

// These variables are set at build time via -ldflags -X.
var (
	// Version is the semantic version or git describe output.
	Version = "dev"

	// Commit is the short git commit SHA.
	Commit = "unknown"

	// Date is the UTC build timestamp in RFC3339 format.
	Date = "unknown"
)
