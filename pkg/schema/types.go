package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Type defines the contract for parameter validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks that the raw value parses as this type.
	Validate(value string) error
}

// --- Built-in Type Implementations ---

// StringType accepts any value.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(string) error { return nil }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
		return fmt.Errorf("expected int, got %q", value)
	}
	return nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fmt.Errorf("expected float, got %q", value)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("expected bool, got %q", value)
	}
	return nil
}

// RegexType validates that the value compiles with the engine's regex dialect.
type RegexType struct{}

func (t *RegexType) Name() string { return "regex" }

func (t *RegexType) Validate(value string) error {
	if _, err := regexp2.Compile(value, regexp2.None); err != nil {
		return fmt.Errorf("expected regex: %w", err)
	}
	return nil
}

// SliceType validates comma-separated lists of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	for i, elem := range strings.Split(value, ",") {
		if err := t.elemType.Validate(strings.TrimSpace(elem)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(string) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value string) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Regex creates a regular expression type validator.
func Regex() Type { return &RegexType{} }

// Slice creates a list type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(string) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a type name to a Type. custom types are matched by name
// before the built-in ones.
// Supports "string", "int", "float", "bool", "regex" and lists such as "[int]".
func ParseType(typeStr string, custom ...Type) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1:len(typeStr)-1], custom...)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if i := slices.IndexFunc(custom, func(t Type) bool { return t.Name() == typeStr }); i >= 0 {
		return custom[i], nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "regex":
		return Regex(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of parameter names to type strings into a Schema.
// Example: {"deadline": "duration", "retries": "int"}
func ParseTypeMap(typeMap map[string]string, custom ...Type) (Schema, error) {
	result := make(Schema, len(typeMap))
	var errs []error
	for _, key := range sortedKeys(typeMap) {
		t, err := ParseType(typeMap[key], custom...)
		if err != nil {
			errs = append(errs, fmt.Errorf("parameter %q: %w", key, err))
			continue
		}
		result[key] = t
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return result, nil
}
