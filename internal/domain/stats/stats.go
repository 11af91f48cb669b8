// Package stats folds an evaluation history into summary counts and averages.
package stats

import "github.com/okian/gradebook/internal/domain/model"

// Summary aggregates a sequence of evaluations.
type Summary struct {
	Total          int     `json:"total"`
	ExcellentCount int     `json:"excellentCount"`
	PassedCount    int     `json:"passedCount"`
	FailedCount    int     `json:"failedCount"`
	InvalidCount   int     `json:"invalidCount"`
	RetakeCount    int     `json:"retakeCount"`
	AvgFinalGrade  float64 `json:"avgFinalGrade"`
	AvgAttendance  float64 `json:"avgAttendance"`
}

// Aggregate computes the summary of records. Averages are 0 for an empty
// history. AvgAttendance averages the raw attendance percent.
func Aggregate(records []model.Evaluation) Summary {
	var s Summary
	var gradeSum, attendanceSum float64
	for _, r := range records {
		s.Total++
		switch r.Status {
		case model.StatusExcellent:
			s.ExcellentCount++
		case model.StatusPassed:
			s.PassedCount++
		case model.StatusFailed:
			s.FailedCount++
		default:
			s.InvalidCount++
		}
		if r.NeedsRetake {
			s.RetakeCount++
		}
		gradeSum += r.FinalGrade
		attendanceSum += r.AttendanceRawPercent
	}
	if s.Total > 0 {
		s.AvgFinalGrade = gradeSum / float64(s.Total)
		s.AvgAttendance = attendanceSum / float64(s.Total)
	}
	return s
}
