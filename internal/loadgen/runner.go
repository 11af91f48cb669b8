// Package loadgen seeds a running gradebook service with random submissions
// and verifies the resulting history.
package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradebook/internal/domain/stats"
	"github.com/okian/gradebook/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	percentMultiplier   = 100
)

// Run executes a complete seeding run: health check, optional clear,
// concurrent submission, then history and stats verification.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if config.Count < 0 || config.Workers < 1 {
		return nil, fmt.Errorf("%w: count %d workers %d", ErrInvalidRun, config.Count, config.Workers)
	}

	log := logger.Named("loadgen")
	report := &Report{RunID: uuid.NewString(), StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting seeding run",
		logger.String("run_id", report.RunID),
		logger.String("base_url", config.BaseURL),
		logger.Int("count", config.Count),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, err
	}

	if config.ClearBefore {
		status, err := client.do(ctx, http.MethodDelete, "/api/evaluations", nil, nil)
		if err = checkStatus("clear history", status, http.StatusOK, err); err != nil {
			return nil, err
		}
		log.Info(ctx, "history cleared before run")
	}

	prior, err := fetchHistory(ctx, client)
	if err != nil {
		return nil, err
	}
	report.PriorCount = prior.Count

	submissions := generateSubmissions(config.Count)
	report.Generated = len(submissions)
	if config.OutputFile != "" {
		if err := saveSubmissions(config.OutputFile, submissions); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	submitAll(ctx, client, config, submissions, report)

	history, err := fetchHistory(ctx, client)
	if err != nil {
		return nil, err
	}
	report.HistoryCount = history.Count
	report.Capacity = history.Capacity

	var summary stats.Summary
	status, err := client.do(ctx, http.MethodGet, "/api/stats", nil, &summary)
	if err = checkStatus("fetch stats", status, http.StatusOK, err); err != nil {
		return nil, err
	}
	report.Stats = summary
	report.Duration = time.Since(report.StartTime)

	displayFinalStats(ctx, log, report)

	if err := verify(report, history); err != nil {
		log.Error(ctx, "verification failed", logger.Error(err))
		return report, err
	}
	log.Info(ctx, "verification passed", logger.String("run_id", report.RunID))
	return report, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var body struct {
		Status string `json:"status"`
	}
	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, &body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if status != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

func fetchHistory(ctx context.Context, client *HTTPClient) (historyResponse, error) {
	var h historyResponse
	status, err := client.do(ctx, http.MethodGet, "/api/evaluations", nil, &h)
	return h, checkStatus("fetch history", status, http.StatusOK, err)
}

// submitAll posts submissions with a fixed pool of workers.
func submitAll(ctx context.Context, client *HTTPClient, config *Config, submissions []Submission, report *Report) {
	log := logger.Named("loadgen")
	var submitted, accepted, notPersisted, failed int64

	ch := make(chan Submission, config.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range ch {
				atomic.AddInt64(&submitted, 1)
				var resp evaluationResponse
				status, err := client.do(ctx, http.MethodPost, "/api/evaluations", sub, &resp)
				switch {
				case err != nil || status != http.StatusCreated:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "submission failed", logger.Int("status", status), logger.Error(err))
					}
				case !resp.Persisted:
					atomic.AddInt64(&notPersisted, 1)
				default:
					atomic.AddInt64(&accepted, 1)
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, sub := range submissions {
			select {
			case <-ctx.Done():
				return
			case ch <- sub:
			}
		}
	}()
	wg.Wait()

	report.Submitted = int(submitted)
	report.Accepted = int(accepted)
	report.NotPersisted = int(notPersisted)
	report.Failed = int(failed)
}

func saveSubmissions(filename string, submissions []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(submissions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, log logger.Logger, r *Report) {
	var successRate, perSecond float64
	if r.Submitted > 0 {
		successRate = float64(r.Accepted) / float64(r.Submitted) * percentMultiplier
	}
	if r.Duration > 0 {
		perSecond = float64(r.Submitted) / r.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", r.Generated),
		logger.Int("submitted", r.Submitted),
		logger.Int("accepted", r.Accepted),
		logger.Int("not_persisted", r.NotPersisted),
		logger.Int("failed", r.Failed),
		logger.Int("prior_history", r.PriorCount),
		logger.Int("history", r.HistoryCount),
		logger.Int("excellent", r.Stats.ExcellentCount),
		logger.Int("passed", r.Stats.PassedCount),
		logger.Int("failed_status", r.Stats.FailedCount),
		logger.Int("retakes", r.Stats.RetakeCount),
		logger.Float64("avg_final_grade", r.Stats.AvgFinalGrade),
		logger.Duration("duration", r.Duration),
		logger.Float64("success_rate", successRate),
		logger.Float64("submissions_per_second", perSecond))
}
