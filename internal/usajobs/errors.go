package usajobs

import "fmt"

// ParseError reports a single search result item that could not be decoded. The item is skipped;
// the rest of the page is unaffected.
type ParseError struct {
	Index   int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for item %d: %s: %v", e.Index, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error for item %d: %s", e.Index, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError reports missing or invalid client configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("usajobs config: %s: %s", e.Field, e.Message)
}
