package runtime

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

var placeholder = regexp2.MustCompile(`\$\{([^}]*)\}`, regexp2.None)

// substitute replaces every ${name} in s with params[name].
// The first undefined name is reported as an error; s is returned unchanged in that case.
func substitute(s string, params map[string]string) (string, error) {
	if s == "" {
		return s, nil
	}
	var (
		missing string
		found   bool
	)
	out, err := placeholder.ReplaceFunc(s, func(m regexp2.Match) string {
		name := m.GroupByNumber(1).String()
		v, ok := params[name]
		if !ok {
			if !found {
				missing, found = name, true
			}
			return m.String()
		}
		return v
	}, -1, -1)
	if err != nil {
		return s, err
	}
	if found {
		return s, fmt.Errorf("undefined parameter %q in %q", missing, s)
	}
	return out, nil
}

// substituter collects substitution failures for one definition so that every
// problem is reported, not only the first.
type substituter struct {
	params   map[string]string
	problems []error
}

func (s *substituter) apply(where, text string) string {
	out, err := substitute(text, s.params)
	if err != nil {
		s.problems = append(s.problems, fmt.Errorf("%s: %w", where, err))
	}
	return out
}
