package domain

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrInvalidScope marks an unrecognized or incomplete scope
	// specification. Fatal for the resource, never retried.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrNotYetProvisioned marks a mutation whose parent object does not
	// exist on the deployment manager yet (cluster member or node not
	// realized). The resource converges on a later pass.
	ErrNotYetProvisioned = errors.New("parent topology not yet provisioned")

	// ErrImmutableProperty marks an attempt to change a creation-only
	// attribute. Raised before any wsadmin invocation.
	ErrImmutableProperty = errors.New("immutable property")

	// ErrMalformedSecret marks a stored secret that does not carry the
	// expected {xor} obfuscation format.
	ErrMalformedSecret = errors.New("malformed secret")

	// ErrExternalTool marks a wsadmin failure that is not the recognized
	// not-yet-provisioned pattern. Fatal for the cycle.
	ErrExternalTool = errors.New("external tool failure")
)

// ScopeError reports an unusable scope specification.
type ScopeError struct {
	Kind   string // the offending scope kind, possibly unrecognized
	Detail string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q: %s", e.Kind, e.Detail)
}

func (e *ScopeError) Is(target error) bool { return target == ErrInvalidScope }

// NotYetProvisionedError reports an absent parent object on the remote side.
type NotYetProvisionedError struct {
	Resource string
	Scope    string
}

func (e *NotYetProvisionedError) Error() string {
	return fmt.Sprintf("%s: parent at scope %s is not provisioned yet; re-run reconciliation once it exists", e.Resource, e.Scope)
}

func (e *NotYetProvisionedError) Is(target error) bool { return target == ErrNotYetProvisioned }

// ImmutablePropertyError identifies the attribute that cannot change after
// creation.
type ImmutablePropertyError struct {
	Kind      string
	Attribute string
}

func (e *ImmutablePropertyError) Error() string {
	return fmt.Sprintf("%s attribute %q is immutable; destroy and recreate the resource to change it", e.Kind, e.Attribute)
}

func (e *ImmutablePropertyError) Is(target error) bool { return target == ErrImmutableProperty }

// MalformedSecretError reports a stored secret in an unexpected format.
// The stored value itself is deliberately kept out of the message.
type MalformedSecretError struct {
	Reason string
}

func (e *MalformedSecretError) Error() string {
	return fmt.Sprintf("malformed stored secret: %s", e.Reason)
}

func (e *MalformedSecretError) Is(target error) bool { return target == ErrMalformedSecret }

// ExternalToolError carries the tail of the wsadmin output for diagnosis.
type ExternalToolError struct {
	ExitCode int
	Output   string
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("wsadmin failed (exit %d): %s", e.ExitCode, e.Output)
}

func (e *ExternalToolError) Is(target error) bool { return target == ErrExternalTool }

// APIError represents an error response from the HTTP API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}
