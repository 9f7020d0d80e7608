package place

import "fmt"

// ValidationError reports a malformed code or identifier. It is raised before any query is built.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// UpstreamError is a non-success answer from the query endpoint.
type UpstreamError struct {
	Status      int
	StatusText  string
	BodyExcerpt string
}

func (e *UpstreamError) Error() string {
	if e.BodyExcerpt == "" {
		return fmt.Sprintf("upstream error: %d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("upstream error: %d %s %s", e.Status, e.StatusText, e.BodyExcerpt)
}

// TransportError wraps a network-level failure reaching the endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "upstream transport error: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
