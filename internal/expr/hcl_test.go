package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

func TestHCL_Substitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		vars map[string]string
		want string
	}{
		{name: "literal", expr: "y", want: "y"},
		{name: "empty", expr: "", want: ""},
		{name: "interpolation", expr: "x.${B}", vars: map[string]string{"B": "y"}, want: "x.y"},
		{name: "whole interpolation", expr: "${B}", vars: map[string]string{"B": "v"}, want: "v"},
		{name: "repeated reference", expr: "${a}-${a}", vars: map[string]string{"a": "z"}, want: "z-z"},
		{name: "escaped interpolation", expr: "$${a}", want: "${a}"},
		{name: "dollar without brace", expr: "$HOME", want: "$HOME"},
		{
			name: "maven style group id",
			expr: "com.example.${groupName}",
			vars: map[string]string{"groupName": "myGroupName"},
			want: "com.example.myGroupName",
		},
		{
			name: "upper",
			expr: "${upper(serviceName)}",
			vars: map[string]string{"serviceName": "myServiceName"},
			want: "MYSERVICENAME",
		},
		{
			name: "pascal",
			expr: "${pascal(artifactId)}",
			vars: map[string]string{"artifactId": "my-service-name"},
			want: "MyServiceName",
		},
		{
			name: "regex replace",
			expr: `${regex_replace(artifactId, "[^a-z]", "")}`,
			vars: map[string]string{"artifactId": "my-service-name"},
			want: "myservicename",
		},
		{
			name: "package path",
			expr: "src/${package_path(package)}",
			vars: map[string]string{"package": "com.example.app"},
			want: "src/com/example/app",
		},
		{
			name: "directive",
			expr: `%{ if flavor == "web" }web-%{ endif }app`,
			vars: map[string]string{"flavor": "web"},
			want: "web-app",
		},
		{
			name: "unused variables are ignored",
			expr: "plain",
			vars: map[string]string{"a": "1"},
			want: "plain",
		},
	}

	h := NewHCL()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := h.Substitute(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHCL_UnresolvedReference(t *testing.T) {
	t.Parallel()

	h := NewHCL()
	_, err := h.Substitute("${b}.${a}.${upper(c)}.${a}", map[string]string{"c": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))

	var uerr *UnresolvedError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, []string{"a", "b"}, uerr.Names)
	assert.Contains(t, err.Error(), "unresolved reference to a, b")
}

func TestHCL_UnresolvedAttributeRoot(t *testing.T) {
	t.Parallel()

	_, err := NewHCL().Substitute("${a.b}", nil)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
}

func TestHCL_EvaluationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		vars map[string]string
	}{
		{name: "syntax error", expr: "${"},
		{name: "unknown function", expr: "${nope(a)}", vars: map[string]string{"a": "x"}},
		{name: "attribute on string", expr: "${a.b}", vars: map[string]string{"a": "x"}},
		{name: "wrong arity", expr: "${upper(a, a)}", vars: map[string]string{"a": "x"}},
	}

	h := NewHCL()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := h.Substitute(tt.expr, tt.vars)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrUnresolvedReference), "must not be reported as unresolved: %v", err)

			var eerr *EvalError
			assert.True(t, errors.As(err, &eerr))
		})
	}
}

func TestHCL_WithFunction(t *testing.T) {
	t.Parallel()

	shout := function.New(&function.Spec{
		Params: []function.Parameter{{Name: "s", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(strings.ToUpper(args[0].AsString()) + "!"), nil
		},
	})

	h := NewHCL(WithFunction("shout", shout))
	got, err := h.Substitute("${shout(a)}", map[string]string{"a": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "HI!", got)
	assert.Contains(t, h.Functions(), "shout")
	assert.Contains(t, h.Functions(), "upper")
}

func TestEvaluatorFunc(t *testing.T) {
	t.Parallel()

	var e Evaluator = EvaluatorFunc(func(expression string, _ map[string]string) (string, error) {
		return expression + "!", nil
	})
	got, err := e.Substitute("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x!", got)
}

func TestCaseTransforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		words  []string
		pascal string
		camel  string
		snake  string
		kebab  string
	}{
		{
			in:     "my-service-name",
			words:  []string{"my", "service", "name"},
			pascal: "MyServiceName",
			camel:  "myServiceName",
			snake:  "my_service_name",
			kebab:  "my-service-name",
		},
		{
			in:     "HTTPServerV2",
			words:  []string{"HTTP", "Server", "V2"},
			pascal: "HttpServerV2",
			camel:  "httpServerV2",
			snake:  "http_server_v2",
			kebab:  "http-server-v2",
		},
		{
			in:     "2fast furious",
			words:  []string{"2fast", "furious"},
			pascal: "_2fastFurious",
			camel:  "_2fastFurious",
			snake:  "2fast_furious",
			kebab:  "2fast-furious",
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.words, Words(tt.in))
			assert.Equal(t, tt.pascal, Pascal(tt.in))
			assert.Equal(t, tt.camel, Camel(tt.in))
			assert.Equal(t, tt.snake, Snake(tt.in))
			assert.Equal(t, tt.kebab, Kebab(tt.in))
		})
	}

	assert.Empty(t, Words(""))
	assert.Equal(t, "com/example", PackagePath(".com.example."))
}
