package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/AbdelazizMoustafa10m/stencil/internal/expr"
	"github.com/AbdelazizMoustafa10m/stencil/internal/resolve"
)

// Output formats accepted by --format.
const (
	formatTOML = "toml"
	formatJSON = "json"
	formatEnv  = "env"
)

var outputFormats = []string{formatTOML, formatJSON, formatEnv}

func validFormat(f string) bool {
	for _, v := range outputFormats {
		if v == f {
			return true
		}
	}
	return false
}

// writeResult renders the resolved properties to w in the given format.
func writeResult(w io.Writer, result *resolve.Result, format string) error {
	switch format {
	case formatTOML:
		return toml.NewEncoder(w).Encode(result.Values())
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Values())
	case formatEnv:
		for _, k := range result.Keys() {
			if _, err := fmt.Fprintf(w, "%s=%s\n", envName(k), shellQuote(result.Value(k))); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be one of %s", format, strings.Join(outputFormats, ", "))
	}
}

// envName maps a property key to an environment variable name:
// "groupId" becomes "GROUP_ID".
func envName(key string) string {
	return strings.ToUpper(expr.Snake(key))
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
