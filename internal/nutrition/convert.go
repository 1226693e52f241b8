// internal/nutrition/convert.go
package nutrition

import (
	"fmt"
	"math"
	"strconv"

	"fitforge/internal/models"
)

const (
	lbsPerKg  = 2.2046226218
	cmPerFoot = 30.48
	cmPerInch = 2.54
)

// parseLength resolves a metric-or-imperial length to centimeters plus a
// display string in the unit system the user answered with. Exactly one
// representation must carry a value.
func parseLength(l models.Length) (float64, string, error) {
	hasCm := l.Cm != nil
	hasImperial := l.Ft != nil || l.Inch != nil

	switch {
	case hasCm && hasImperial:
		return 0, "", ErrAmbiguousMeasurement
	case hasCm:
		return *l.Cm, formatFloat(*l.Cm) + " cm", nil
	case hasImperial:
		var ft, inch float64
		if l.Ft != nil {
			ft = *l.Ft
		}
		if l.Inch != nil {
			inch = *l.Inch
		}
		cm := ft*cmPerFoot + inch*cmPerInch
		return cm, fmt.Sprintf("%d'%d\"", int(ft), int(inch)), nil
	default:
		return 0, "", ErrMissingMeasurement
	}
}

// parseWeight resolves a metric-or-imperial weight to kilograms plus a
// display string.
func parseWeight(w models.Weight) (float64, string, error) {
	switch {
	case w.Kg != nil && w.Lbs != nil:
		return 0, "", ErrAmbiguousMeasurement
	case w.Kg != nil:
		return *w.Kg, formatFloat(*w.Kg) + " kg", nil
	case w.Lbs != nil:
		return *w.Lbs / lbsPerKg, formatFloat(*w.Lbs) + " lbs", nil
	default:
		return 0, "", ErrMissingMeasurement
	}
}

// optionalLengthCm resolves an optional circumference. A nil or empty
// measurement is simply absent, not an error.
func optionalLengthCm(l *models.Length) (float64, bool) {
	if l == nil {
		return 0, false
	}
	cm, _, err := parseLength(*l)
	if err != nil {
		return 0, false
	}
	return cm, true
}

// formatFloat renders a measurement value without trailing zeros.
func formatFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
