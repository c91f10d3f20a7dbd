package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Mode selects how unresolved properties are handled.
type Mode int

const (
	// ModeBatch resolves without a human. A property with no usable value is
	// an error.
	ModeBatch Mode = iota
	// ModeInteractive asks a Queryer for every property that is not supplied
	// as an override, then asks for confirmation of the whole set.
	ModeInteractive
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeBatch:
		return "batch"
	case ModeInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Source records where a resolved value came from.
type Source string

const (
	// SourceOverride marks a value supplied by the caller before resolution.
	SourceOverride Source = "override"
	// SourceDefault marks a value computed from a default expression.
	SourceDefault Source = "default"
	// SourcePrompt marks a value entered (or accepted) interactively.
	SourcePrompt Source = "prompt"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrUnresolvableProperty is returned in batch mode when at least one
	// property has no usable value.
	ErrUnresolvableProperty = errors.New("unresolvable property")

	// ErrInvalidValue is returned in batch mode when a resolved value does not
	// match its property's pattern.
	ErrInvalidValue = errors.New("invalid property value")

	// ErrUserAborted is returned when the human cancels resolution, either
	// from the Queryer or by exhausting the confirmation budget.
	ErrUserAborted = errors.New("aborted by user")

	// ErrNoQueryer is returned when interactive resolution is requested from
	// a Resolver built without a Queryer.
	ErrNoQueryer = errors.New("interactive mode requires a queryer")
)

// Question describes one property to ask a human for.
type Question struct {
	Key         string
	Description string
	Pattern     string

	// Default is the suggested value computed from the property's default
	// expression. Only meaningful when HasDefault is true.
	Default    string
	HasDefault bool

	// Previous is the value given the last time this key was asked: a
	// rejected answer that did not match Pattern, or the answer from an
	// earlier confirmation round when answers are retained.
	Previous    string
	HasPrevious bool

	// Round is the 1-based confirmation round this question belongs to.
	Round int
}

// Queryer is the human side of interactive resolution. Both methods block
// until the human answers.
type Queryer interface {
	// Ask returns the value for one property. Returning q.Default unchanged
	// accepts the suggestion.
	Ask(ctx context.Context, q Question) (string, error)

	// Confirm shows the complete resolved set and reports whether the human
	// accepts it. Rejection restarts resolution.
	Confirm(ctx context.Context, result *Result) (bool, error)
}

// UnresolvableError reports every property that could not be resolved in one
// batch resolution.
type UnresolvableError struct {
	// Keys lists the failing properties in declaration order.
	Keys []string
	// Causes holds a per-key reason when one is known.
	Causes map[string]error
}

func (e *UnresolvableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrUnresolvableProperty, strings.Join(e.Keys, ", "))
	for _, key := range e.Keys {
		if cause, ok := e.Causes[key]; ok && cause != nil {
			fmt.Fprintf(&b, "\n  %s: %v", key, cause)
		}
	}
	return b.String()
}

// Is makes errors.Is(err, ErrUnresolvableProperty) true.
func (e *UnresolvableError) Is(target error) bool {
	return target == ErrUnresolvableProperty
}

// InvalidValueError reports resolved values rejected by their patterns.
type InvalidValueError struct {
	// Keys lists the offending properties in declaration order.
	Keys     []string
	Values   map[string]string
	Patterns map[string]string
}

func (e *InvalidValueError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrInvalidValue, strings.Join(e.Keys, ", "))
	for _, key := range e.Keys {
		fmt.Fprintf(&b, "\n  %s: %q does not match %q", key, e.Values[key], e.Patterns[key])
	}
	return b.String()
}

// Is makes errors.Is(err, ErrInvalidValue) true.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// Result is the immutable outcome of a resolution: one value for every
// declared property.
type Result struct {
	keys     []string
	values   map[string]string
	sources  map[string]Source
	attempts int
}

// Get returns the value resolved for key.
func (r *Result) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value resolved for key, or "" when key is not declared.
func (r *Result) Value(key string) string {
	return r.values[key]
}

// Keys returns the resolved keys in declaration order.
func (r *Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of resolved properties.
func (r *Result) Len() int { return len(r.keys) }

// Values returns a copy of the resolved mapping.
func (r *Result) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Source returns where the value for key came from.
func (r *Result) Source(key string) Source {
	return r.sources[key]
}

// Attempts returns how many resolution rounds were needed. Always 1 in batch
// mode; in interactive mode every rejected confirmation adds one.
func (r *Result) Attempts() int { return r.attempts }

// Fingerprint returns a stable hash of the resolved key/value pairs. Two
// results with the same values have the same fingerprint regardless of
// declaration order or sources.
func (r *Result) Fingerprint() uint64 {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(r.values[k])
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
