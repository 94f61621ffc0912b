package envresolve

import (
	"regexp"
	"strings"

	enverrors "github.com/systmms/envresolve/pkg/errors"
)

// referencePattern matches ${NAME} or $NAME tokens. The braced form
// captures any run of non-'}' characters, so nested ${...} inside the
// braces is not supported: the first '}' closes the capture. The bare form
// requires an identifier, which means a lone '$' or '$123' is left alone.
var referencePattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand substitutes ${NAME} and $NAME references in text using env,
// recursing into the referenced values so that indirect references are
// fully expanded. Text without reference tokens is returned unchanged.
//
// A reference to a name absent from env fails with VariableNotFoundError
// naming exactly the missing variable. A name that recurs on its own
// expansion path fails with CircularReferenceError carrying the chain.
func Expand(text string, env map[string]string) (string, error) {
	return expand(text, env, nil)
}

// visitedSet is the ordered set of variable names on the current expansion
// path. It is extended copy-on-write so sibling branches of one expansion
// do not see each other's state.
type visitedSet []string

func (v visitedSet) contains(name string) bool {
	for _, n := range v {
		if n == name {
			return true
		}
	}
	return false
}

func (v visitedSet) with(name string) visitedSet {
	next := make(visitedSet, len(v), len(v)+1)
	copy(next, v)
	return append(next, name)
}

func expand(text string, env map[string]string, visited visitedSet) (string, error) {
	matches := referencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])

		// Group 1 is the braced form, group 2 the bare form.
		var name string
		if m[2] >= 0 {
			name = text[m[2]:m[3]]
		} else {
			name = text[m[4]:m[5]]
		}

		if visited.contains(name) {
			return "", enverrors.CircularReferenceError{Reference: name, Chain: []string(visited)}
		}

		value, ok := env[name]
		if !ok {
			return "", enverrors.VariableNotFoundError{Name: name}
		}

		expanded, err := expand(value, env, visited.with(name))
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String(), nil
}
