// Package schema declares and checks the types of automaton parameters.
//
// Parameters always arrive as strings (from the command line, a job file or an
// HTTP request). A definition may declare what each one must parse as:
//
//	parameters:
//	  deadline: duration
//	  retries: int
//	  hosts: "[string]"
//
// Built-in types are string, int, float, bool and regex; "[T]" is a
// comma-separated list of T. Callers add their own with Custom:
//
//	duration := schema.Custom("duration", func(v string) error {
//	    _, err := time.ParseDuration(v)
//	    return err
//	})
//	s, err := schema.ParseTypeMap(def.Parameters, duration)
//	if err == nil {
//	    err = schema.Validate(s, params)
//	}
package schema
