// Package resolve turns a template's declared properties, caller supplied
// overrides and default-value expressions into a complete configuration.
//
// Resolution runs in passes. Each pass evaluates the default expression of
// every pending property against the values known when the pass started. A
// property whose expression references something still unknown stays pending
// for a later pass, so defaults may reference properties declared anywhere in
// the set and chains of any depth resolve as long as they contain no cycle.
// The final values therefore depend only on dependency readiness, never on
// declaration order.
//
// In batch mode a property with no usable value is an error, and every such
// property is reported in a single UnresolvableError. In interactive mode a
// Queryer is asked for each property in pass order (properties stuck in a
// cycle are asked for without a suggestion), then for confirmation of the
// whole set. A rejected confirmation discards every interactive answer and
// starts again from the original overrides.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/stencil/internal/descriptor"
	"github.com/AbdelazizMoustafa10m/stencil/internal/expr"
)

// errNoDefault is the cause recorded for a batch property that has neither a
// default expression nor an override.
var errNoDefault = errors.New("no default value and no override supplied")

// Resolver resolves descriptor sets. It holds no per-call state; one Resolver
// may serve any number of sequential Resolve calls.
type Resolver struct {
	evaluator     expr.Evaluator
	queryer       Queryer
	logger        *log.Logger
	maxAttempts   int
	retainAnswers bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a charmbracelet/log Logger. Without one the resolver is
// silent.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMaxAttempts bounds the number of interactive confirmation rounds. Once
// n rounds have been rejected, Resolve returns ErrUserAborted. Zero or a
// negative n means unbounded.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		r.maxAttempts = n
	}
}

// WithRetainAnswers makes a restarted interactive round pass each key's
// answer from the rejected round as Question.Previous. By default a restart
// asks every question afresh.
func WithRetainAnswers(retain bool) Option {
	return func(r *Resolver) {
		r.retainAnswers = retain
	}
}

// New returns a Resolver using evaluator for default expressions and queryer
// for interactive input. queryer may be nil when only batch mode is used.
func New(evaluator expr.Evaluator, queryer Queryer, opts ...Option) *Resolver {
	r := &Resolver{
		evaluator: evaluator,
		queryer:   queryer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves every property in set. overrides are literal values taken
// as final; they are never re-evaluated, never overwritten by defaults and
// never asked for. Override keys that set does not declare are visible to
// default expressions but do not appear in the result.
//
// Batch mode fails with an error matching ErrUnresolvableProperty (or
// ErrInvalidValue). Interactive mode fails only with errors from the Queryer,
// ErrUserAborted, or a cancelled ctx.
func (r *Resolver) Resolve(ctx context.Context, set *descriptor.Set, overrides map[string]string, mode Mode) (*Result, error) {
	if set == nil {
		return nil, errors.New("resolve: nil descriptor set")
	}
	if r.evaluator == nil {
		return nil, errors.New("resolve: no expression evaluator configured")
	}

	switch mode {
	case ModeBatch:
		return r.resolveBatch(set, overrides)
	case ModeInteractive:
		if r.queryer == nil {
			return nil, ErrNoQueryer
		}
		return r.resolveInteractive(ctx, set, overrides)
	default:
		return nil, fmt.Errorf("resolve: unknown mode %v", mode)
	}
}

// resolveBatch adopts every computable default and collects every property
// that cannot get a value.
func (r *Resolver) resolveBatch(set *descriptor.Set, overrides map[string]string) (*Result, error) {
	a := newAttempt(set, overrides)
	failed := make(map[string]error)

	for pass := 1; len(a.pending) > 0; pass++ {
		ready := r.pass(a)
		r.debug("batch pass", "pass", pass, "ready", len(ready), "pending", len(a.pending))
		if len(ready) == 0 {
			break
		}
		for _, rd := range ready {
			if !rd.hasCandidate {
				cause := rd.cause
				if cause == nil {
					cause = errNoDefault
				}
				failed[rd.prop.Key] = cause
				continue
			}
			a.adopt(rd.prop.Key, rd.candidate, SourceDefault)
		}
	}

	for _, p := range a.pending {
		failed[p.Key] = a.blocked[p.Key]
	}
	if len(failed) > 0 {
		uerr := &UnresolvableError{Causes: failed}
		for _, key := range set.Keys() {
			if _, ok := failed[key]; ok {
				uerr.Keys = append(uerr.Keys, key)
			}
		}
		return nil, uerr
	}

	if err := validatePatterns(set, a.resolved); err != nil {
		return nil, err
	}
	return a.result(1), nil
}

// resolveInteractive runs ask/confirm rounds until the human accepts one.
func (r *Resolver) resolveInteractive(ctx context.Context, set *descriptor.Set, overrides map[string]string) (*Result, error) {
	var previous map[string]string

	for round := 1; ; round++ {
		if r.maxAttempts > 0 && round > r.maxAttempts {
			return nil, fmt.Errorf("%w: configuration rejected %d times", ErrUserAborted, r.maxAttempts)
		}

		a := newAttempt(set, overrides)
		for len(a.pending) > 0 {
			ready := r.pass(a)
			if len(ready) == 0 {
				// No progress: everything left is cyclic or references an
				// undeclared property. Ask for each without a suggestion.
				r.debug("breaking unresolvable references interactively", "keys", propertyKeys(a.pending))
				for _, p := range a.pending {
					ready = append(ready, readiness{prop: p})
				}
				a.pending = nil
			}
			for _, rd := range ready {
				value, err := r.ask(ctx, rd, previous, round)
				if err != nil {
					return nil, err
				}
				a.adopt(rd.prop.Key, value, SourcePrompt)
			}
		}

		result := a.result(round)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := r.queryer.Confirm(ctx, result)
		if err != nil {
			return nil, err
		}
		if ok {
			r.debug("configuration confirmed", "round", round, "properties", result.Len())
			return result, nil
		}

		r.info("configuration rejected, starting over", "round", round)
		previous = nil
		if r.retainAnswers {
			previous = make(map[string]string)
			for _, key := range result.keys {
				if result.sources[key] == SourcePrompt {
					previous[key] = result.values[key]
				}
			}
		}
	}
}

// ask obtains one interactive answer, re-asking until it satisfies the
// property's pattern.
func (r *Resolver) ask(ctx context.Context, rd readiness, previous map[string]string, round int) (string, error) {
	q := Question{
		Key:         rd.prop.Key,
		Description: rd.prop.Description,
		Pattern:     rd.prop.Pattern,
		Default:     rd.candidate,
		HasDefault:  rd.hasCandidate,
		Round:       round,
	}
	if prev, ok := previous[rd.prop.Key]; ok {
		q.Previous, q.HasPrevious = prev, true
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := r.queryer.Ask(ctx, q)
		if err != nil {
			return "", err
		}
		if rd.prop.Matches(answer) {
			return answer, nil
		}
		r.warn("value does not match pattern", "key", rd.prop.Key, "value", answer, "pattern", rd.prop.Pattern)
		q.Previous, q.HasPrevious = answer, true
	}
}

// readiness is a property that left the pending set during a pass.
type readiness struct {
	prop         descriptor.Property
	candidate    string
	hasCandidate bool
	cause        error
}

// pass evaluates every pending property against the values known at the
// start of the pass and returns those that became ready, in declaration
// order. Ready properties are removed from a.pending; adopting their values
// is up to the caller.
func (r *Resolver) pass(a *attempt) []readiness {
	var ready []readiness
	var still []descriptor.Property

	for _, p := range a.pending {
		if !p.HasDefault() {
			ready = append(ready, readiness{prop: p})
			continue
		}

		value, err := r.evaluator.Substitute(p.Default(), a.resolved)
		switch {
		case err == nil:
			ready = append(ready, readiness{prop: p, candidate: value, hasCandidate: true})
		case errors.Is(err, expr.ErrUnresolvedReference):
			a.blocked[p.Key] = err
			still = append(still, p)
		default:
			r.warn("default expression failed", "key", p.Key, "err", err)
			ready = append(ready, readiness{prop: p, cause: err})
		}
	}

	a.pending = still
	return ready
}

// attempt is the state of one resolution round. It is discarded whole when
// a confirmation is rejected.
type attempt struct {
	set      *descriptor.Set
	resolved map[string]string
	sources  map[string]Source
	pending  []descriptor.Property
	blocked  map[string]error
}

func newAttempt(set *descriptor.Set, overrides map[string]string) *attempt {
	a := &attempt{
		set:      set,
		resolved: make(map[string]string, len(overrides)+set.Len()),
		sources:  make(map[string]Source, set.Len()),
		blocked:  make(map[string]error),
	}
	for k, v := range overrides {
		a.resolved[k] = v
	}
	for _, p := range set.Properties() {
		if _, ok := overrides[p.Key]; ok {
			a.sources[p.Key] = SourceOverride
			continue
		}
		a.pending = append(a.pending, p)
	}
	return a
}

func (a *attempt) adopt(key, value string, source Source) {
	a.resolved[key] = value
	a.sources[key] = source
	delete(a.blocked, key)
}

// result snapshots the declared keys. Undeclared overrides are dropped.
func (a *attempt) result(round int) *Result {
	keys := a.set.Keys()
	res := &Result{
		keys:     keys,
		values:   make(map[string]string, len(keys)),
		sources:  make(map[string]Source, len(keys)),
		attempts: round,
	}
	for _, key := range keys {
		res.values[key] = a.resolved[key]
		res.sources[key] = a.sources[key]
	}
	return res
}

func validatePatterns(set *descriptor.Set, values map[string]string) error {
	var ierr *InvalidValueError
	for _, p := range set.Properties() {
		if p.Matches(values[p.Key]) {
			continue
		}
		if ierr == nil {
			ierr = &InvalidValueError{Values: map[string]string{}, Patterns: map[string]string{}}
		}
		ierr.Keys = append(ierr.Keys, p.Key)
		ierr.Values[p.Key] = values[p.Key]
		ierr.Patterns[p.Key] = p.Pattern
	}
	if ierr != nil {
		return ierr
	}
	return nil
}

func propertyKeys(props []descriptor.Property) []string {
	keys := make([]string, len(props))
	for i, p := range props {
		keys[i] = p.Key
	}
	return keys
}

func (r *Resolver) debug(msg string, kvs ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, kvs...)
	}
}

func (r *Resolver) info(msg string, kvs ...any) {
	if r.logger != nil {
		r.logger.Info(msg, kvs...)
	}
}

func (r *Resolver) warn(msg string, kvs ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, kvs...)
	}
}
