package expr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// HCL evaluates default values as HCL string templates:
//
//	com.example.${groupName}
//	${upper(serviceName)}
//	${pascal(artifactId)}
//	%{ if flavor == "web" }web-%{ endif }${artifactId}
//
// Every property is exposed as a top-level string variable. Missing variables
// are detected from the template's traversals before evaluation, so an
// expression that cannot be satisfied yet never reaches the evaluator.
type HCL struct {
	functions map[string]function.Function
}

// HCLOption configures an HCL evaluator.
type HCLOption func(*HCL)

// WithFunction registers an additional function callable from expressions.
// A function with the same name as a built-in replaces it.
func WithFunction(name string, fn function.Function) HCLOption {
	return func(h *HCL) {
		h.functions[name] = fn
	}
}

// NewHCL returns an evaluator with the built-in string functions.
func NewHCL(opts ...HCLOption) *HCL {
	h := &HCL{functions: builtinFunctions()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Functions returns the sorted names of the functions available to
// expressions.
func (h *HCL) Functions() []string {
	names := make([]string, 0, len(h.functions))
	for name := range h.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute implements Evaluator.
func (h *HCL) Substitute(expression string, vars map[string]string) (string, error) {
	tmpl, diags := hclsyntax.ParseTemplate([]byte(expression), "default", hcl.InitialPos)
	if diags.HasErrors() {
		return "", &EvalError{Expression: expression, Detail: diags.Error()}
	}

	traversals := tmpl.Variables()
	variables := make(map[string]cty.Value, len(traversals))
	var missing []string
	for _, traversal := range traversals {
		name := traversal.RootName()
		if _, seen := variables[name]; seen {
			continue
		}
		value, ok := vars[name]
		if !ok {
			if !containsString(missing, name) {
				missing = append(missing, name)
			}
			continue
		}
		variables[name] = cty.StringVal(value)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &UnresolvedError{Expression: expression, Names: missing}
	}

	ctx := &hcl.EvalContext{
		Variables: variables,
		Functions: h.functions,
	}
	val, diags := tmpl.Value(ctx)
	if diags.HasErrors() {
		return "", &EvalError{Expression: expression, Detail: diags.Error()}
	}
	if val.IsNull() {
		return "", &EvalError{Expression: expression, Detail: "evaluates to null"}
	}
	if !val.IsWhollyKnown() {
		return "", &EvalError{Expression: expression, Detail: "evaluates to an unknown value"}
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", &EvalError{Expression: expression, Detail: "result is not a string: " + err.Error()}
	}
	return str.AsString(), nil
}

func builtinFunctions() map[string]function.Function {
	return map[string]function.Function{
		"upper":         stdlib.UpperFunc,
		"lower":         stdlib.LowerFunc,
		"title":         stdlib.TitleFunc,
		"trimspace":     stdlib.TrimSpaceFunc,
		"trimprefix":    stdlib.TrimPrefixFunc,
		"trimsuffix":    stdlib.TrimSuffixFunc,
		"replace":       stdlib.ReplaceFunc,
		"regex_replace": stdlib.RegexReplaceFunc,
		"substr":        stdlib.SubstrFunc,
		"format":        stdlib.FormatFunc,
		"strlen":        stdlib.StrlenFunc,
		"camel":         stringFunc(Camel),
		"pascal":        stringFunc(Pascal),
		"snake":         stringFunc(Snake),
		"kebab":         stringFunc(Kebab),
		"package_path":  stringFunc(PackagePath),
	}
}

// stringFunc wraps a string transform as a single-argument cty function.
func stringFunc(fn func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "str", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(fn(args[0].AsString())), nil
		},
	})
}

func containsString(slice []string, target string) bool {
	for _, s := range slice {
		if s == target {
			return true
		}
	}
	return false
}
