package pipeline

import "fmt"

// ConfigurationError rejects a request before any file is touched.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AggregationError reports a file task that did not reach a terminal state.
type AggregationError struct {
	Path  string
	Index int
	Cause any // recovered panic value, nil when the task simply never finished
}

func (e *AggregationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("aggregate: task %d (%s) panicked: %v", e.Index, e.Path, e.Cause)
	}
	return fmt.Sprintf("aggregate: task %d (%s) did not finish", e.Index, e.Path)
}
