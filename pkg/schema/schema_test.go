package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/vigil/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var duration = schema.Custom("duration", func(v string) error {
	_, err := time.ParseDuration(v)
	return err
})

func TestTypes(t *testing.T) {
	tests := []struct {
		typ   string
		value string
		ok    bool
	}{
		{"string", "", true},
		{"string", "anything", true},
		{"int", "42", true},
		{"int", " -7 ", true},
		{"int", "4.2", false},
		{"int", "four", false},
		{"float", "4.2", true},
		{"float", "1e3", true},
		{"float", "x", false},
		{"bool", "true", true},
		{"bool", "0", true},
		{"bool", "yes", false},
		{"regex", `user (?<name>\w+)`, true},
		{"regex", "(unclosed", false},
		{"[int]", "1, 2,3", true},
		{"[int]", "", true},
		{"[int]", "1,two", false},
		{"duration", "5s", true},
		{"duration", "soon", false},
		{"[duration]", "1s,2m", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.value, func(t *testing.T) {
			typ, err := schema.ParseType(tt.typ, duration)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, typ.Name())

			err = typ.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSliceErrorNamesElement(t *testing.T) {
	err := schema.Slice(schema.Int()).Validate("1,2,x")
	assert.EqualError(t, err, `element 2: expected int, got "x"`)
}

func TestParseType_Unsupported(t *testing.T) {
	_, err := schema.ParseType("duration")
	assert.EqualError(t, err, "unsupported type: duration")

	_, err = schema.ParseType("[nope]")
	assert.Error(t, err)
}

func TestParseTypeMap(t *testing.T) {
	s, err := schema.ParseTypeMap(map[string]string{"limit": "duration", "user": "string"}, duration)
	require.NoError(t, err)
	assert.Len(t, s, 2)
	assert.Equal(t, "duration", s["limit"].Name())

	_, err = schema.ParseTypeMap(map[string]string{"b": "nope", "a": "what"})
	require.Error(t, err)
	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], `parameter "a": unsupported type: what`)
	assert.EqualError(t, errs[1], `parameter "b": unsupported type: nope`)
}

func TestValidate(t *testing.T) {
	s := schema.Schema{
		"limit":   duration,
		"retries": schema.Int(),
		"user":    schema.String(),
	}

	assert.NoError(t, schema.Validate(s, map[string]string{"limit": "2s", "retries": "3", "user": "bob", "extra": "x"}))
	assert.NoError(t, schema.Validate(nil, nil))

	err := schema.Validate(s, map[string]string{"limit": "later", "user": "bob"})
	require.Error(t, err)
	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)

	var ve *schema.ValidationError
	require.True(t, errors.As(errs[0], &ve))
	assert.Equal(t, "limit", ve.Key)
	assert.Equal(t, "later", ve.Value)
	assert.EqualError(t, errs[1], `parameter "retries": required`)
	assert.Contains(t, err.Error(), "2 validation errors:")
}

func TestValidationErrors(t *testing.T) {
	assert.Nil(t, schema.ValidationErrors(nil))
	plain := errors.New("plain")
	assert.Equal(t, []error{plain}, schema.ValidationErrors(plain))
}
