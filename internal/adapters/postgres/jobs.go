package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"avalia/internal/ports"
)

// EnqueueReport queues an organization report job.
func (db *DB) EnqueueReport(ctx context.Context, orgID string) (string, error) {
	var jobID string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO report_jobs (organization_id) VALUES ($1) RETURNING id
    `, orgID).Scan(&jobID)
	return jobID, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.ReportJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id, organization_id FROM report_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE report_jobs SET status = 'running', started_at = now(), attempts = attempts + 1 WHERE id = $1
    `, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) UpdateProgress(ctx context.Context, jobID string, progress float64) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	_, err := db.Pool.Exec(ctx, `UPDATE report_jobs SET progress = $2 WHERE id = $1`, jobID, progress)
	return err
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string, summary []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE report_jobs
        SET status = 'completed', progress = 1, summary = $2, finished_at = now()
        WHERE id = $1
    `, jobID, summary)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE report_jobs
        SET status = 'failed', failure_reason = $2, finished_at = now()
        WHERE id = $1
    `, jobID, reason)
	return err
}

// StartJob marks a specific queued job as running and returns it. Used by
// the inline-wait path so the API processes the exact job it just enqueued.
func (db *DB) StartJob(ctx context.Context, jobID string) (job ports.ReportJob, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
        SELECT id, organization_id FROM report_jobs
        WHERE id = $1 AND status = 'queued'
        FOR UPDATE SKIP LOCKED
    `, jobID).Scan(&job.ID, &job.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ports.ErrNotFound
		return job, err
	}
	if err != nil {
		return job, err
	}
	if _, err = tx.Exec(ctx, `
        UPDATE report_jobs SET status = 'running', started_at = now(), attempts = attempts + 1 WHERE id = $1
    `, job.ID); err != nil {
		return job, err
	}
	return job, nil
}

func (db *DB) JobStatus(ctx context.Context, jobID string) (string, float64, []byte, error) {
	var status string
	var progress float64
	var summary []byte
	err := db.Pool.QueryRow(ctx, `
        SELECT status, progress, summary FROM report_jobs WHERE id = $1
    `, jobID).Scan(&status, &progress, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, nil, ports.ErrNotFound
	}
	return status, progress, summary, err
}
