package script

import "errors"

// ErrEngineClosed is returned when loading into a closed engine.
var ErrEngineClosed = errors.New("script: engine is closed")
