package shared

import "errors"

var (
	// ErrInvalidInput indicates malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAuthenticationFailed indicates login failure.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAuthorizationDenied indicates insufficient role.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrProvisioningFailed indicates a transactional store failure during account provisioning.
	ErrProvisioningFailed = errors.New("provisioning failed")
)
