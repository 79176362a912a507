package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND error with a custom message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// NewAlreadyExistsError creates an ALREADY_EXISTS error with a custom message
func NewAlreadyExistsError(message string) *DomainError {
	return NewDomainError("ALREADY_EXISTS", message)
}

// NewInvalidInputError creates an INVALID_INPUT error with a custom message
func NewInvalidInputError(message string) *DomainError {
	return NewDomainError("INVALID_INPUT", message)
}

// NewBusinessRuleError creates a BUSINESS_RULE error with a custom message
func NewBusinessRuleError(message string) *DomainError {
	return NewDomainError("BUSINESS_RULE", message)
}

// NewInvalidStateError creates an INVALID_STATE error with a custom message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError("INVALID_STATE", message)
}

// NewConflictError creates a CONFLICT error with a custom message
func NewConflictError(message string) *DomainError {
	return NewDomainError("CONFLICT", message)
}

// NewUnauthorizedError creates an UNAUTHORIZED error with a custom message
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError("UNAUTHORIZED", message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
