// Package descriptor holds the ordered, immutable set of required properties
// declared by a project template.
//
// A Set is plain data: it carries no resolution logic. Keys are unique within
// a set and declaration order is preserved, since it is the order in which a
// resolver visits properties during each pass. Adding a property never mutates
// an existing Set; With builds a new one.
package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedDescriptor is returned when a descriptor set cannot be built,
// for example because a key is declared twice.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

// Property is a single required property declared by a template.
type Property struct {
	// Key identifies the property. Unique within a Set.
	Key string

	// DefaultValue is the default expression. It may reference other
	// properties. Nil means the property has no default and must be supplied
	// or asked for.
	DefaultValue *string

	// Description is shown to a human when the property is asked for.
	Description string

	// Pattern is an optional regular expression every final value must match.
	Pattern string

	// re is Pattern compiled and anchored. Set by Compiled and by Set
	// construction; Matches ignores it once Pattern changes.
	re *regexp.Regexp
}

// HasDefault reports whether the property declares a default expression.
func (p Property) HasDefault() bool {
	return p.DefaultValue != nil
}

// Default returns the default expression, or "" when none is declared.
func (p Property) Default() string {
	if p.DefaultValue == nil {
		return ""
	}
	return *p.DefaultValue
}

// Matches reports whether value satisfies the property's pattern. A property
// without a pattern accepts every value. The pattern is anchored to the whole
// value.
func (p Property) Matches(value string) bool {
	if p.Pattern == "" {
		return true
	}
	re := p.re
	if re == nil || re.String() != anchorPattern(p.Pattern) {
		var err error
		if re, err = compilePattern(p.Pattern); err != nil {
			return false
		}
	}
	return re.MatchString(value)
}

// Compiled returns a copy of p with its pattern compiled, so repeated Matches
// calls do not recompile it. An invalid pattern is left uncompiled.
func (p Property) Compiled() Property {
	p.re = nil
	if p.Pattern != "" {
		if re, err := compilePattern(p.Pattern); err == nil {
			p.re = re
		}
	}
	return p
}

// Prop is a shorthand constructor for a property with a default expression.
func Prop(key, defaultValue string) Property {
	return Property{Key: key, DefaultValue: &defaultValue}
}

// Required is a shorthand constructor for a property without a default.
func Required(key string) Property {
	return Property{Key: key}
}

// Set is an ordered, immutable collection of properties.
type Set struct {
	name        string
	description string
	props       []Property
	index       map[string]int
}

// New builds a Set from props, preserving their order. It returns an error
// wrapping ErrMalformedDescriptor when a key is empty or duplicated, or when
// a pattern does not compile.
func New(props ...Property) (*Set, error) {
	s := &Set{
		props: make([]Property, 0, len(props)),
		index: make(map[string]int, len(props)),
	}
	for _, p := range props {
		if err := s.add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// tables.
func MustNew(props ...Property) *Set {
	s, err := New(props...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Set) add(p Property) error {
	key := strings.TrimSpace(p.Key)
	if key == "" {
		return fmt.Errorf("%w: property #%d has an empty key", ErrMalformedDescriptor, len(s.props)+1)
	}
	if key != p.Key {
		return fmt.Errorf("%w: key %q has surrounding whitespace", ErrMalformedDescriptor, p.Key)
	}
	if _, dup := s.index[key]; dup {
		return fmt.Errorf("%w: duplicate key %q", ErrMalformedDescriptor, key)
	}
	p.re = nil
	if p.Pattern != "" {
		re, err := compilePattern(p.Pattern)
		if err != nil {
			return fmt.Errorf("%w: key %q: invalid pattern: %v", ErrMalformedDescriptor, key, err)
		}
		p.re = re
	}
	if p.DefaultValue != nil {
		v := *p.DefaultValue
		p.DefaultValue = &v
	}
	s.index[key] = len(s.props)
	s.props = append(s.props, p)
	return nil
}

// Name returns the template name recorded in the descriptor file, if any.
func (s *Set) Name() string { return s.name }

// Description returns the template description recorded in the descriptor
// file, if any.
func (s *Set) Description() string { return s.description }

// Len returns the number of declared properties.
func (s *Set) Len() int { return len(s.props) }

// Properties returns a copy of the declared properties in declaration order.
func (s *Set) Properties() []Property {
	out := make([]Property, len(s.props))
	copy(out, s.props)
	return out
}

// Keys returns the declared keys in declaration order.
func (s *Set) Keys() []string {
	keys := make([]string, len(s.props))
	for i, p := range s.props {
		keys[i] = p.Key
	}
	return keys
}

// Lookup returns the property declared under key.
func (s *Set) Lookup(key string) (Property, bool) {
	i, ok := s.index[key]
	if !ok {
		return Property{}, false
	}
	return s.props[i], true
}

// Has reports whether key is declared.
func (s *Set) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// With returns a new Set containing the receiver's properties followed by
// props. The receiver is left untouched.
func (s *Set) With(props ...Property) (*Set, error) {
	all := make([]Property, 0, len(s.props)+len(props))
	all = append(all, s.props...)
	all = append(all, props...)
	next, err := New(all...)
	if err != nil {
		return nil, err
	}
	next.name = s.name
	next.description = s.description
	return next, nil
}

// Standard generation properties every generated project carries.
const (
	KeyGroupID    = "groupId"
	KeyArtifactID = "artifactId"
	KeyVersion    = "version"
	KeyPackage    = "package"

	// DefaultVersion is the default of the standard version property.
	DefaultVersion = "1.0-SNAPSHOT"
)

// WithStandard returns a new Set that also declares the standard generation
// properties (groupId, artifactId, version, package) the template does not
// declare itself. Standard properties are prepended in that order so they are
// asked for first.
func (s *Set) WithStandard() *Set {
	standard := []Property{
		Required(KeyGroupID),
		Required(KeyArtifactID),
		Prop(KeyVersion, DefaultVersion),
		Prop(KeyPackage, "${"+KeyGroupID+"}"),
	}

	all := make([]Property, 0, len(standard)+len(s.props))
	for _, p := range standard {
		if !s.Has(p.Key) {
			all = append(all, p)
		}
	}
	all = append(all, s.props...)

	// Keys were unique in s and standard keys are skipped when present, so New
	// cannot fail here.
	next := MustNew(all...)
	next.name = s.name
	next.description = s.description
	return next
}

func anchorPattern(pattern string) string {
	return `^(?:` + pattern + `)$`
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(anchorPattern(pattern))
}
