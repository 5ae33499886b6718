package encoding

import "errors"

var (
	ErrValueInvalid    = errors.New("decode target must be a non-nil pointer")
	ErrTypeUnsupported = errors.New("type unsupported")
)
