package handlers

const (
	maxJSONBodyBytes = 1 << 20
	// multipart overhead allowed on top of the media size limit
	uploadOverheadBytes = 1 << 20

	ErrInvalidRequestBody  = "invalid request body"
	ErrMissingToken        = "not authenticated"
	ErrInternalServerError = "internal server error"
	ErrFileRequired        = "file is required"
)
