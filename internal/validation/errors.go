package validation

import "fmt"

// ValidationError describes one problem with a manifest resource.
type ValidationError struct {
	Resource string `json:"resource"` // resource key, e.g. "keystore/CellDefaultKeyStore@cell:CELL_01"
	Field    string `json:"field"`
	Value    string `json:"value"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Resource, e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

// Add appends a validation error to the collection.
func (e *ValidationErrors) Add(resource, field, value, message string) {
	*e = append(*e, &ValidationError{Resource: resource, Field: field, Value: value, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
