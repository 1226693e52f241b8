// internal/nutrition/errors.go
package nutrition

import "errors"

// Input errors are surfaced to the submitting client immediately and are
// never retried.
var (
	ErrInvalidAge           = errors.New("age out of supported range")
	ErrMissingMeasurement   = errors.New("measurement has no value in either unit system")
	ErrAmbiguousMeasurement = errors.New("measurement has values in both unit systems")
	ErrUnsupportedSex       = errors.New("sex value is missing")
	ErrCalculation          = errors.New("nutrition targets are not computable from the given inputs")
)
