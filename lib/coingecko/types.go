package coingecko

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrMalformedResponse is returned when the body does not have the expected shape,
	// e.g. an error envelope instead of a list.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError carries the upstream status code of a non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnexpectedStatus, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// marketChartResponse is the body of /coins/{id}/market_chart:
//
//	{"prices": [[1704067200000, 3456.78], ...], "market_caps": [...], "total_volumes": [...]}
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}
