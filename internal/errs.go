package internal

import "fmt"

// NotFoundError: the spreadsheet or worksheet does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Resource)
}

// SchemaError: a required column is missing from the header row.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %q in header row", e.Column)
}

// FormatError: a cell value does not match its documented format.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TransientAPIError: a backend call failed after retries.
type TransientAPIError struct {
	Op  string
	Err error
}

func (e *TransientAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientAPIError) Unwrap() error { return e.Err }

// DeliveryError: the chat notification could not be delivered. Never fatal.
type DeliveryError struct {
	Status int
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("webhook delivery failed: status %d", e.Status)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
