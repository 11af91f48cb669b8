// Package scale holds the fixed grade-point table: the ten canonical values,
// their descriptive labels and the approximate percentages used for display.
package scale

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// GradePoint is a low-is-better score on the fixed ten-value scale.
type GradePoint float64

// Well-known grade points.
const (
	Best    GradePoint = 1.00
	Passing GradePoint = 3.00
	Failing GradePoint = 5.00
)

// InvalidLabel is returned for values outside the table.
const InvalidLabel = "Invalid Grade"

// decimalPlaces is the precision grade points are compared at.
const decimalPlaces = 2

// Input bounds for ParseDecimal. Rounding cost grows with the exponent, so
// anything outside this window is rejected before it is rescaled.
const (
	maxInputLen = 16
	minExponent = -10
	maxExponent = 2
)

// Grade is one row of the table.
type Grade struct {
	Point         GradePoint `json:"gradePoint"`
	Label         string     `json:"label"`
	ApproxPercent float64    `json:"approxPercent"`
}

type entry struct {
	Grade
	key decimal.Decimal
}

// table is ordered best to worst. Read-only after package init.
var table = []entry{ //nolint:gochecknoglobals // immutable lookup table
	newEntry("1.00", "Excellent (99–100%)", 99.5),
	newEntry("1.25", "Very Good (95–98%)", 96.5),
	newEntry("1.50", "Very Good (90–94%)", 92.0),
	newEntry("1.75", "Good (85–89%)", 87.0),
	newEntry("2.00", "Good (80–84%)", 82.0),
	newEntry("2.25", "Satisfactory (75–79%)", 77.0),
	newEntry("2.50", "Satisfactory (70–74%)", 72.0),
	newEntry("2.75", "Passing (65–69%)", 67.0),
	newEntry("3.00", "Passing (60–64%)", 62.0),
	newEntry("5.00", "Failing (<60%)", 40.0),
}

func newEntry(point, label string, percent float64) entry {
	key := decimal.RequireFromString(point)
	return entry{
		Grade: Grade{Point: GradePoint(key.InexactFloat64()), Label: label, ApproxPercent: percent},
		key:   key,
	}
}

// Round2 rounds x half away from zero to two decimal places.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(decimalPlaces).InexactFloat64()
}

// Lookup returns the table row matching x after rounding to two decimals.
func Lookup(x float64) (Grade, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Grade{}, false
	}
	d := decimal.NewFromFloat(x).Round(decimalPlaces)
	for _, e := range table {
		if d.Equal(e.key) {
			return e.Grade, true
		}
	}
	return Grade{}, false
}

// Label returns the descriptive label for x, or InvalidLabel.
func Label(x float64) string {
	if g, ok := Lookup(x); ok {
		return g.Label
	}
	return InvalidLabel
}

// ApproxPercent returns the approximate percentage for x, or 0.
func ApproxPercent(x float64) float64 {
	if g, ok := Lookup(x); ok {
		return g.ApproxPercent
	}
	return 0
}

// IsFailing reports whether x is the failing sentinel.
func IsFailing(x float64) bool {
	g, ok := Lookup(x)
	return ok && g.Point == Failing
}

// Points returns the canonical grade points, best first.
func Points() []GradePoint {
	out := make([]GradePoint, len(table))
	for i, e := range table {
		out[i] = e.Point
	}
	return out
}

// Grades returns a copy of the full table, best first.
func Grades() []Grade {
	out := make([]Grade, len(table))
	for i, e := range table {
		out[i] = e.Grade
	}
	return out
}

// ParseDecimal reads a plain decimal number from form input. Strings longer
// than maxInputLen or with an exponent outside [minExponent, maxExponent]
// yield ErrNotNumeric.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrEmpty
	}
	if len(s) > maxInputLen {
		return decimal.Decimal{}, fmt.Errorf("%w: input longer than %d bytes", ErrNotNumeric, maxInputLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return decimal.Decimal{}, fmt.Errorf("%w: %q out of range", ErrNotNumeric, s)
	}
	return d, nil
}

// Parse reads a decimal string such as "1.75" and returns its canonical grade
// point. Values outside the table yield ErrInvalidGradePoint.
func Parse(s string) (GradePoint, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	d = d.Round(decimalPlaces)
	for _, e := range table {
		if d.Equal(e.key) {
			return e.Point, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGradePoint, strings.TrimSpace(s))
}
