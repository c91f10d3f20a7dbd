// Package expr defines the boundary between property resolution and the
// template expression language used in default values.
//
// The resolver only needs to know whether an expression could be evaluated
// with the variables known so far. Evaluator implementations report a missing
// variable with an error matching ErrUnresolvedReference; every other error is
// a genuine evaluation failure.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedReference signals that an expression references a variable
// that is not (yet) known.
var ErrUnresolvedReference = errors.New("unresolved reference")

// Evaluator substitutes variables into a default-value expression.
type Evaluator interface {
	Substitute(expression string, vars map[string]string) (string, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(expression string, vars map[string]string) (string, error)

// Substitute calls f.
func (f EvaluatorFunc) Substitute(expression string, vars map[string]string) (string, error) {
	return f(expression, vars)
}

// UnresolvedError lists the variable names an expression needs but that were
// missing from the supplied variables.
type UnresolvedError struct {
	Expression string
	Names      []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("expression %q: unresolved reference to %s", e.Expression, strings.Join(e.Names, ", "))
}

// Is makes errors.Is(err, ErrUnresolvedReference) true.
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// EvalError is a failure to parse or evaluate an expression.
type EvalError struct {
	Expression string
	Detail     string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expression %q: %s", e.Expression, e.Detail)
}
