package server

import "errors"

var (
	ErrInvalidSelection = errors.New("invalid selection, coin or range is required")
	ErrPageNotReady     = errors.New("page not rendered yet")
	ErrNoChart          = errors.New("no chart data for the current selection")
	ErrInvalidateCache  = errors.New("could not invalidate cache")
)
