package services

import "errors"

// Error taxonomy shared by the service layer. Handlers translate these
// into HTTP statuses; nothing here is ever fatal to the process.
var (
	// ErrValidation marks rejected input, caught before any store or
	// gateway call. Wrapped errors carry the field-level detail.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned when sign-in is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when no valid session accompanies a
	// request. An expired token is simply "signed out", not a fault.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when the viewer's role does not
	// permit the requested action. Permission checks never panic or
	// abort; they report this and the caller moves on.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyExists is returned when a unique field collides.
	ErrAlreadyExists = errors.New("already exists")

	// ErrProtectedUser is returned for any attempt to delete or
	// reassign the primordial super account.
	ErrProtectedUser = errors.New("account is protected")
)
