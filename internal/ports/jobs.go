package ports

import "context"

type ReportJob struct {
	ID             string
	OrganizationID string
}

// JobRepository supports queueing, claiming, and updating organization
// report jobs.
type JobRepository interface {
	EnqueueReport(ctx context.Context, orgID string) (jobID string, err error)
	ClaimNext(ctx context.Context) (job ReportJob, found bool, err error)
	UpdateProgress(ctx context.Context, jobID string, progress float64) error
	MarkCompleted(ctx context.Context, jobID string, summary []byte) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJob(ctx context.Context, jobID string) (ReportJob, error)
	JobStatus(ctx context.Context, jobID string) (status string, progress float64, summary []byte, err error)
}
