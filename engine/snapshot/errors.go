package snapshot

import "errors"

var (
	ErrSnapshotInvalid = errors.New("snapshot invalid")
	ErrVersionMismatch = errors.New("snapshot version unsupported")
)
