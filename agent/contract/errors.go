package contract

import "errors"

var (
	ErrGateway           = errors.New("gateway call failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSearchSoftFailure = errors.New("marketplace search failed")
	ErrValidation        = errors.New("validation failed")
	ErrPromptMissing     = errors.New("required prompt is missing")
)
