// Package uritemplate compiles {name} path templates into anchored,
// full-path matchers.
package uritemplate

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Placeholders are delimited {identifier}. Hyphens are legal in the
// identifier and normalize to underscores in the captured variable name.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// Template is a compiled path pattern. Literal segments match verbatim and
// each placeholder becomes a non-greedy capture of a single path segment,
// so a placeholder can neither span a "/" nor contain the literal the
// template expects immediately after it.
type Template struct {
	source string
	re     *regexp.Regexp
	vars   []string
}

// Compile turns template into a matcher plus the set of variable names it
// captures. Duplicate variable names are an error.
func Compile(template string) (*Template, error) {
	var (
		b    strings.Builder
		vars []string
		seen = map[string]struct{}{}
		last int
	)
	b.WriteString("^")
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		name := strings.ReplaceAll(template[m[2]:m[3]], "-", "_")
		if _, dup := seen[name]; dup {
			return nil, errors.Errorf("every variable must not be duplicated: %s", name)
		}
		seen[name] = struct{}{}
		vars = append(vars, name)
		b.WriteString(regexp.QuoteMeta(template[last:m[0]]))
		b.WriteString("(?P<")
		b.WriteString(name)
		b.WriteString(">[^/]+?)")
		last = m[1]
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling path template %q", template)
	}

	return &Template{source: template, re: re, vars: vars}, nil
}

// Source returns the original template string.
func (t *Template) Source() string {
	return t.source
}

// Vars returns the variable names the template captures, in order of
// appearance.
func (t *Template) Vars() []string {
	return t.vars
}

// Match reports whether path matches the whole template and returns the
// captured variables. Values are the raw path substrings; no
// percent-decoding is applied.
func (t *Template) Match(path string) (map[string]string, bool) {
	m := t.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	captured := make(map[string]string, len(t.vars))
	for i, name := range t.re.SubexpNames() {
		if name != "" {
			captured[name] = m[i]
		}
	}

	return captured, true
}
