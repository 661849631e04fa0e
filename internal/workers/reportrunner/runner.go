package reportrunner

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"avalia/internal/metrics"
	"avalia/internal/ports"
)

// ReportProcessor builds the report payload for one claimed job.
type ReportProcessor interface {
	Process(ctx context.Context, job ports.ReportJob) (summary []byte, err error)
}

// DashboardProcessor renders the organization dashboard aggregation as the
// report summary. The heavier laudo rendering (PDF) consumes this payload
// downstream and is out of scope here.
type DashboardProcessor struct {
	Orgs ports.Organizations
	Jobs ports.JobRepository
}

func (p DashboardProcessor) Process(ctx context.Context, job ports.ReportJob) ([]byte, error) {
	if err := p.Jobs.UpdateProgress(ctx, job.ID, 0.25); err != nil {
		return nil, err
	}
	aggregates, err := p.Orgs.Dashboard(ctx, job.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := p.Jobs.UpdateProgress(ctx, job.ID, 0.75); err != nil {
		return nil, err
	}
	return json.Marshal(aggregates)
}

// Run starts worker goroutines that claim queued report jobs and process
// them until ctx is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor ReportProcessor, m *metrics.Metrics, logger *slog.Logger, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.ReportJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						logger.ErrorContext(ctx, "job claim error", "error", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := runOne(ctx, repo, processor, m, job); err != nil {
					logger.ErrorContext(ctx, "report job failed", "worker", idx, "job_id", job.ID, "error", err)
				}
			}
		}(i)
	}
}

func runOne(ctx context.Context, repo ports.JobRepository, processor ReportProcessor, m *metrics.Metrics, job ports.ReportJob) error {
	summary, err := processor.Process(ctx, job)
	if err != nil {
		_ = repo.MarkFailed(ctx, job.ID, err.Error())
		m.IncrementReportJob("failed")
		return err
	}
	if err := repo.MarkCompleted(ctx, job.ID, summary); err != nil {
		return err
	}
	m.IncrementReportJob("completed")
	return nil
}

// ProcessInline claims and processes a specific job synchronously with the
// same processor logic as the background workers. Used by the API's wait
// path.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor ReportProcessor, m *metrics.Metrics, jobID string) error {
	job, err := repo.StartJob(ctx, jobID)
	if err != nil {
		return err
	}
	return runOne(ctx, repo, processor, m, job)
}
