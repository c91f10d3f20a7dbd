package expr

import (
	"strings"
	"unicode"
)

// Words splits s into words on any non-alphanumeric rune and on case
// boundaries, keeping acronyms together:
//
//	"my-service-name" -> [my service name]
//	"HTTPServerV2"    -> [HTTP Server V2]
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1

	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

// Pascal joins the words of s with each word capitalised:
// "my-service-name" -> "MyServiceName". A leading digit is prefixed with an
// underscore so the result is a valid identifier.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalise(strings.ToLower(w)))
	}
	return identifierSafe(b.String())
}

// Camel is Pascal with a lower-case first word: "my-service-name" ->
// "myServiceName".
func Camel(s string) string {
	words := Words(s)
	var b strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			w = capitalise(w)
		}
		b.WriteString(w)
	}
	return identifierSafe(b.String())
}

// Snake joins the lower-cased words of s with underscores.
func Snake(s string) string {
	return strings.ToLower(strings.Join(Words(s), "_"))
}

// Kebab joins the lower-cased words of s with hyphens.
func Kebab(s string) string {
	return strings.ToLower(strings.Join(Words(s), "-"))
}

// PackagePath turns a dotted package name into a slash separated path:
// "com.example.app" -> "com/example/app".
func PackagePath(s string) string {
	return strings.ReplaceAll(strings.Trim(s, "."), ".", "/")
}

func capitalise(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func identifierSafe(s string) string {
	if s != "" && unicode.IsDigit([]rune(s)[0]) {
		return "_" + s
	}
	return s
}
