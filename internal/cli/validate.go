package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/internal/validator"
	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/aretw0/vigil/pkg/domain"
)

// Validate loads the definition at path, builds it with params and reports load-time
// problems followed by lint warnings. It returns false when the automaton is
// defective; warnings alone do not fail validation.
func Validate(ctx context.Context, path string, params map[string]string, w io.Writer) (bool, error) {
	def, err := file.New(path).Load(ctx)
	if err != nil {
		return false, err
	}

	a := vigil.New(def, params)
	defer a.Close()

	if a.IsDefective() {
		fmt.Fprintf(w, "%s is invalid:\n", def.Name)
		for _, p := range problems(a.Defect()) {
			fmt.Fprintf(w, "  - %s\n", p)
		}
		return false, nil
	}

	for _, warn := range validator.Lint(def) {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintf(w, "%s is valid! ✅\n", def.Name)
	return true, nil
}

func problems(err error) []error {
	var de *domain.DefinitionError
	if errors.As(err, &de) {
		return de.Problems
	}
	return []error{err}
}
