// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/gradebook/internal/domain/scale"
	"github.com/okian/gradebook/internal/domain/subject"
)

// Status is the coarse classification of a final grade.
type Status string

// Status values.
const (
	StatusExcellent Status = "EXCELLENT"
	StatusPassed    Status = "PASSED"
	StatusFailed    Status = "FAILED"
	StatusInvalid   Status = "INVALID"
)

// GradeRecord is one subject's grade point and its derived description.
type GradeRecord struct {
	SubjectKey  subject.Key      `json:"subjectKey"`
	GradePoint  scale.GradePoint `json:"gradePoint"`
	Description string           `json:"description"`
}

// NewGradeRecord builds a record whose description comes from the scale.
func NewGradeRecord(key subject.Key, p scale.GradePoint) GradeRecord {
	return GradeRecord{SubjectKey: key, GradePoint: p, Description: scale.Label(float64(p))}
}

// SubjectGrades is an ordered mapping from subject key to grade record. It
// encodes as a JSON object whose keys follow subject order.
type SubjectGrades []GradeRecord

// Get returns the record for key.
func (g SubjectGrades) Get(key subject.Key) (GradeRecord, bool) {
	for _, r := range g {
		if r.SubjectKey == key {
			return r, true
		}
	}
	return GradeRecord{}, false
}

// MarshalJSON writes the records as an object keyed by subject.
func (g SubjectGrades) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(r.SubjectKey))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by subject and restores subject order.
// Keys that are not graded subjects are rejected.
func (g *SubjectGrades) UnmarshalJSON(data []byte) error {
	var m map[string]GradeRecord
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(SubjectGrades, 0, len(m))
	for _, key := range subject.Keys() {
		if r, ok := m[string(key)]; ok {
			r.SubjectKey = key
			out = append(out, r)
			delete(m, string(key))
		}
	}
	if len(m) > 0 {
		return fmt.Errorf("unknown subjects in record: %d", len(m))
	}
	*g = out
	return nil
}

// Evaluation is the immutable result of one evaluation run.
type Evaluation struct {
	ID                    string           `json:"id"`
	SubjectGrades         SubjectGrades    `json:"subjectGrades"`
	AttendanceGradePoint  scale.GradePoint `json:"attendanceGradePoint"`
	AttendanceDescription string           `json:"attendanceDescription"`
	AttendanceRawPercent  float64          `json:"attendanceRawPercent"`
	FinalGrade            float64          `json:"finalGrade"`
	Status                Status           `json:"status"`
	GraduationProbability float64          `json:"graduationProbability"`
	NeedsRetake           bool             `json:"needsRetake"`
	Timestamp             time.Time        `json:"timestamp"`
}

// FinalGradeDisplay formats the final grade to two decimals.
func (e Evaluation) FinalGradeDisplay() string {
	return fmt.Sprintf("%.2f", scale.Round2(e.FinalGrade))
}
