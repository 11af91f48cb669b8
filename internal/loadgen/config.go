package loadgen

import (
	"time"

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/stats"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Count       int           // Number of submissions to generate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Optional file receiving the generated submissions
	ClearBefore bool          // Clear the history before submitting
	Verbose     bool          // Log every failed submission
}

// Submission is the request body of POST /api/evaluations.
type Submission struct {
	Subjects             map[string]string `json:"subjects"`
	AttendanceGradePoint string            `json:"attendanceGradePoint"`
	AttendancePercent    string            `json:"attendancePercent,omitempty"`
}

type evaluationResponse struct {
	Evaluation model.Evaluation `json:"evaluation"`
	Persisted  bool             `json:"persisted"`
}

type historyResponse struct {
	Evaluations []model.Evaluation `json:"evaluations"`
	Count       int                `json:"count"`
	Capacity    int                `json:"capacity"`
}

// Report holds run statistics.
type Report struct {
	RunID        string
	Generated    int
	Submitted    int
	Accepted     int
	NotPersisted int
	Failed       int
	PriorCount   int
	HistoryCount int
	Capacity     int
	Stats        stats.Summary
	StartTime    time.Time
	Duration     time.Duration
}
