// Package validation gates raw evaluation input before it reaches the engine.
//
// The predicates are pure. ParseSubmission applies them to the six required
// fields and reports one FieldError per failing field.
package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
)

// Attendance bounds, in percent.
const (
	minAttendance = 0
	maxAttendance = 100
)

// Field names used in FieldError for the non-subject inputs.
const (
	FieldAttendanceGradePoint = "attendanceGradePoint"
	FieldAttendancePercent    = "attendancePercent"
)

// GradePoint reports whether x, rounded to two decimals, is on the scale.
func GradePoint(x float64) bool {
	_, ok := scale.Lookup(x)
	return ok
}

// Attendance reports whether x is a finite percentage in [0, 100].
func Attendance(x float64) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}
	return x >= minAttendance && x <= maxAttendance
}

// Submission is raw form input. Values are decimal strings as typed.
type Submission struct {
	Subjects             map[string]string
	AttendanceGradePoint string
	// AttendancePercent is optional; when blank it is derived from the
	// attendance grade point's approximate percent.
	AttendancePercent string
}

// Input is a submission that passed validation.
type Input struct {
	Subjects             map[subject.Key]scale.GradePoint
	AttendanceGradePoint scale.GradePoint
	AttendancePercent    float64
}

// FieldError describes one failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// FieldErrors is the aggregated validation failure of a submission.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return ErrInvalidSubmission.Error() + ": " + strings.Join(msgs, "; ")
}

// Is lets callers match FieldErrors with errors.Is(err, ErrInvalidSubmission).
func (e FieldErrors) Is(target error) bool { return target == ErrInvalidSubmission }

// Fields returns the names of the failing fields in report order.
func (e FieldErrors) Fields() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Field
	}
	return out
}

// ParseSubmission validates all six required fields. On failure the returned
// error is a FieldErrors value and Input is zero.
func ParseSubmission(s Submission) (Input, error) {
	var errs FieldErrors
	in := Input{Subjects: make(map[subject.Key]scale.GradePoint, subject.Count)}

	for _, subj := range subject.All() {
		raw := s.Subjects[string(subj.Key)]
		p, err := scale.Parse(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: string(subj.Key), Message: gradeMessage(subj.Label, raw, err)})
			continue
		}
		in.Subjects[subj.Key] = p
	}

	for _, key := range unknownSubjects(s.Subjects) {
		errs = append(errs, FieldError{Field: key, Message: fmt.Sprintf("%s is not a graded subject", key)})
	}

	att, err := scale.Parse(s.AttendanceGradePoint)
	if err != nil {
		errs = append(errs, FieldError{
			Field:   FieldAttendanceGradePoint,
			Message: gradeMessage("Attendance", s.AttendanceGradePoint, err),
		})
	} else {
		in.AttendanceGradePoint = att
	}

	if raw := strings.TrimSpace(s.AttendancePercent); raw != "" {
		d, perr := scale.ParseDecimal(raw)
		pct := d.InexactFloat64()
		if perr != nil || !Attendance(pct) {
			errs = append(errs, FieldError{
				Field:   FieldAttendancePercent,
				Message: "Attendance must be a number between 0 and 100",
			})
		} else {
			in.AttendancePercent = pct
		}
	} else if err == nil {
		in.AttendancePercent = scale.ApproxPercent(float64(att))
	}

	if len(errs) > 0 {
		return Input{}, errs
	}
	return in, nil
}

func gradeMessage(label, raw string, err error) string {
	switch {
	case errors.Is(err, scale.ErrEmpty):
		return label + " grade is required"
	case errors.Is(err, scale.ErrNotNumeric):
		return label + " grade must be a number"
	default:
		return fmt.Sprintf("%s grade %s is not a valid grade point", label, strings.TrimSpace(raw))
	}
}

func unknownSubjects(m map[string]string) []string {
	var out []string
	for k := range m {
		if !subject.Key(k).Valid() {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
