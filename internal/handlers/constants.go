package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrInternalServerError = "Internal server error"
	ErrNotFound            = "Not found"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRF         = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests. Please wait a moment and try again."

	// shown for backend failures
	MsgNetworkError = "Unable to reach the server. Please check your connection and try again."
	MsgGenericError = "Something went wrong. Please try again."
)
