package service

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")

	// ErrValidation wraps client-correctable input problems; handlers map
	// it to a 400.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedMedia is returned for uploads whose content is not of
	// the type the endpoint accepts.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
