package engine

import "errors"

var (
	ErrArchUnsupported     = errors.New("architecture unsupported")
	ErrRegisterUnavailable = errors.New("register unavailable")
	ErrMemoryUnavailable   = errors.New("memory unavailable")
	ErrReadOnly            = errors.New("engine is read-only")
	ErrTopologyUnsupported = errors.New("cpu topology unsupported")
	ErrTaskNotFound        = errors.New("task not found")
	ErrContextInvalid      = errors.New("context invalid")
)
