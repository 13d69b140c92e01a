package schedule

import "errors"

// ErrNotFound is returned for unknown team or member IDs.
var ErrNotFound = errors.New("not found")
