package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "project.name"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// Validate checks the configuration for correctness and completeness.
// It performs semantic validation and unknown key detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (may be nil if no file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateCatalog(vr, &cfg.Catalog)
	validateResolve(vr, &cfg.Resolve)
	validateProperties(vr, cfg.Properties)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateCatalog checks the [catalog] section.
func validateCatalog(vr *ValidationResult, c *CatalogConfig) {
	// Warning: the catalog directory does not exist. Commands that take
	// --descriptor still work without one.
	if c.Dir != "" {
		if info, err := os.Stat(c.Dir); err != nil || !info.IsDir() {
			addWarning(vr, "catalog.dir",
				fmt.Sprintf("directory %q does not exist", c.Dir))
		}
	}
}

// validateResolve checks the [resolve] section.
func validateResolve(vr *ValidationResult, r *ResolveConfig) {
	if r.MaxAttempts < 0 {
		addError(vr, "resolve.max_attempts",
			fmt.Sprintf("must not be negative, got %d (0 means unlimited)", r.MaxAttempts))
	}
}

// validateProperties checks the [properties] table. Keys are sorted so the
// issues come out in a stable order.
func validateProperties(vr *ValidationResult, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch {
		case strings.TrimSpace(k) == "":
			addError(vr, "properties", "property key must not be empty")
		case strings.TrimSpace(k) != k:
			addError(vr, "properties."+k, "property key must not have surrounding whitespace")
		case strings.ContainsAny(k, "${}"):
			addError(vr, "properties."+k, "property key must not contain '$', '{' or '}'")
		}
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
