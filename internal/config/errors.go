package config

import "fmt"

// MissingParameterError is returned when a stage or a required key is absent
// or empty in the configuration source.
type MissingParameterError struct {
	Key   string
	Stage string
}

func (e *MissingParameterError) Error() string {
	switch {
	case e.Stage != "" && e.Key == e.Stage:
		return fmt.Sprintf("stage %q not found in configuration", e.Stage)
	case e.Stage != "":
		return fmt.Sprintf("missing required parameter %q for stage %q", e.Key, e.Stage)
	default:
		return fmt.Sprintf("missing required parameter %q", e.Key)
	}
}

// InvalidParameterError is returned when a key is present but its value
// cannot be used.
type InvalidParameterError struct {
	Key    string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q (%v): %s", e.Key, e.Value, e.Reason)
}
