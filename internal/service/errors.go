package service

import "errors"

// Error kinds. The HTTP layer maps each kind to a status code.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal failure")
)

// Error is a service error of a given kind with a message fit for clients
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

var (
	ErrUserIDTaken        = newError(ErrValidation, "user id already registered")
	ErrFatherNotFound     = newError(ErrValidation, "father not found")
	ErrFatherHasFather    = newError(ErrValidation, "a father cannot have a father_id")
	ErrInvalidCredentials = newError(ErrUnauthorized, "incorrect user id or password")
	ErrInvalidToken       = newError(ErrUnauthorized, "could not validate credentials")

	ErrAdviceNotFound   = newError(ErrNotFound, "advice not found")
	ErrFathersOnly      = newError(ErrForbidden, "only fathers can write advice")
	ErrChildrenOnly     = newError(ErrForbidden, "only children can favorite advice")
	ErrFatherStatsOnly  = newError(ErrForbidden, "only fathers have author stats")
	ErrChildStatsOnly   = newError(ErrForbidden, "only children have reader stats")
	ErrNotAdviceOwner   = newError(ErrForbidden, "not allowed to access this advice")
	ErrWrongUnlockCode  = newError(ErrForbidden, "incorrect advice password")
	ErrPasswordRequired = newError(ErrValidation, "password is required for password unlock")

	ErrUnsupportedMedia = newError(ErrValidation, "only image or video files are allowed")
	ErrFileTooLarge     = newError(ErrValidation, "file is too large")
	ErrEmptyFile        = newError(ErrValidation, "file is empty")

	ErrStoreNoRow = newError(ErrInternal, "store returned no row")
)
