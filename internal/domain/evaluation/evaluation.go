// Package evaluation computes the composite grade, status, graduation
// probability and retake flag for one set of validated grade points.
package evaluation

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
)

// Status thresholds on the final grade.
const (
	excellentFloor = 1.00
	passedFloor    = 2.00
	passedCeiling  = 2.75
	failedAbove    = 3.00
)

// Graduation probability adjustments.
const (
	baseProbability       = 100.0
	failedPenalty         = 50.0
	nearFailPenalty       = 20.0
	passedPenalty         = 5.0
	excellentBonus        = 15.0
	maxProbability        = 100.0
	minProbability        = 0.0
	semesterBonusCap      = 10.0
	programSemesters      = 8.0
	defaultSemestersTaken = 5
)

// finalGradeTerms is the number of grade points averaged: the subjects plus attendance.
const finalGradeTerms = subject.Count + 1

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source used to stamp evaluations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the generator for evaluation IDs.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithSemestersCompleted overrides the semester count feeding the progress bonus.
func WithSemestersCompleted(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.semesters = n
		}
	}
}

// Engine turns validated grade points into an Evaluation. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	now       func() time.Time
	newID     func() string
	semesters int
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:       time.Now,
		newID:     uuid.NewString,
		semesters: defaultSemestersTaken,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes an Evaluation. Inputs must already be validated: every
// subject key must be present, otherwise Evaluate panics.
func (e *Engine) Evaluate(subjects map[subject.Key]scale.GradePoint, attendance scale.GradePoint, attendanceRawPercent float64) model.Evaluation {
	grades := make(model.SubjectGrades, 0, subject.Count)
	sum := float64(attendance)
	retake := false
	for _, key := range subject.Keys() {
		p, ok := subjects[key]
		if !ok {
			panic("evaluation: missing grade for subject " + string(key))
		}
		grades = append(grades, model.NewGradeRecord(key, p))
		sum += float64(p)
		if scale.IsFailing(float64(p)) {
			retake = true
		}
	}

	final := sum / finalGradeTerms

	return model.Evaluation{
		ID:                    e.newID(),
		SubjectGrades:         grades,
		AttendanceGradePoint:  attendance,
		AttendanceDescription: scale.Label(float64(attendance)),
		AttendanceRawPercent:  attendanceRawPercent,
		FinalGrade:            final,
		Status:                Classify(final),
		GraduationProbability: GraduationProbability(final, e.semesters),
		NeedsRetake:           retake,
		Timestamp:             e.now().UTC(),
	}
}

// Classify maps a final grade to a status. Grades in (2.75, 3.00] match no
// band and are reported as INVALID.
func Classify(final float64) model.Status {
	switch {
	case final > failedAbove:
		return model.StatusFailed
	case final >= passedFloor && final <= passedCeiling:
		return model.StatusPassed
	case final >= excellentFloor && final < passedFloor:
		return model.StatusExcellent
	default:
		return model.StatusInvalid
	}
}

// GraduationProbability is a fixed heuristic, not a fitted model: it starts
// at 100, adjusts by grade band, adds a semester-progress bonus and clamps to
// [0, 100].
func GraduationProbability(final float64, semestersCompleted int) float64 {
	p := baseProbability
	switch {
	case final > failedAbove:
		p -= failedPenalty
	case final > passedCeiling:
		p -= nearFailPenalty
	case final > passedFloor:
		p -= passedPenalty
	}
	if final < passedFloor {
		p += excellentBonus
	}
	p += math.Min(float64(semestersCompleted)/programSemesters*semesterBonusCap, semesterBonusCap)
	return math.Max(minProbability, math.Min(maxProbability, p))
}
