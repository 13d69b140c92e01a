package stats

import "errors"

// ErrInsufficientData is returned when a model has fewer observations than its
// minimum sample size. A forecast built on too little data is actively
// misleading, so callers must handle the no-forecast case explicitly.
var ErrInsufficientData = errors.New("insufficient data")
