package buffer

import "errors"

// Errors returned by registry operations.
var (
	ErrBufferExists = errors.New("buffer already exists")
)
