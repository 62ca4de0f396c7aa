package schema

import (
	"maps"
	"slices"
)

// Schema is a map of parameter names to their expected types.
type Schema map[string]Type

// Validate checks that every declared parameter is present in data and parses as
// its type. Parameters in data that the schema does not declare are ignored.
// Failures are reported in parameter name order, all at once.
func Validate(schema Schema, data map[string]string) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, name := range sortedKeys(schema) {
		value, exists := data[name]
		if !exists {
			errs = append(errs, &ValidationError{Key: name, Reason: "required"})
			continue
		}
		if err := schema[name].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: name, Reason: err.Error(), Value: value})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
