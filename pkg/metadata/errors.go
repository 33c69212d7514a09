package metadata

// Error represents a domain error from metadata operations.
//
// These are business logic errors (folder not found, duplicate sibling
// name, cycle-creating move) as opposed to infrastructure errors. The HTTP
// layer translates Error kinds to status codes; the mapping stays
// mechanical because the kind carries all the information it needs.
type Error struct {
	// Kind is the error category
	Kind Kind

	// Message is a human-readable error description
	Message string

	// Subject identifies the folder or file the error relates to
	Subject string

	// Err is the underlying cause for Internal errors
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subject != "" {
		return e.Message + ": " + e.Subject
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind represents the category of a metadata error.
type Kind int

const (
	// KindNotFound indicates the referenced folder or file doesn't exist
	KindNotFound Kind = iota

	// KindConflict indicates a duplicate sibling name or an attempt to
	// delete a non-empty folder
	KindConflict

	// KindInvalidOperation indicates a structurally invalid request,
	// such as a cycle-creating move or an empty folder name
	KindInvalidOperation

	// KindInternal indicates a persistence or serialization failure
	KindInternal
)

// NewNotFoundError creates an Error for a missing folder or file.
func NewNotFoundError(entity, subject string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: entity + " not found",
		Subject: subject,
	}
}

// NewConflictError creates an Error for uniqueness and emptiness violations.
func NewConflictError(message, subject string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: message,
		Subject: subject,
	}
}

// NewInvalidOperationError creates an Error for structurally invalid requests.
func NewInvalidOperationError(message, subject string) *Error {
	return &Error{
		Kind:    KindInvalidOperation,
		Message: message,
		Subject: subject,
	}
}

// NewInternalError creates an Error wrapping a persistence failure.
func NewInternalError(message string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the Kind from an error. Errors that are not a metadata
// *Error report KindInternal.
func KindOf(err error) Kind {
	if me, ok := err.(*Error); ok {
		return me.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a metadata NotFound error.
func IsNotFound(err error) bool {
	me, ok := err.(*Error)
	return ok && me.Kind == KindNotFound
}

// IsConflict reports whether err is a metadata Conflict error.
func IsConflict(err error) bool {
	me, ok := err.(*Error)
	return ok && me.Kind == KindConflict
}

// IsInvalidOperation reports whether err is a metadata InvalidOperation error.
func IsInvalidOperation(err error) bool {
	me, ok := err.(*Error)
	return ok && me.Kind == KindInvalidOperation
}
