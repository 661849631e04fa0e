package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"avalia/internal/domain"
	"avalia/internal/ports"
)

// OrganizationRepository

func (db *DB) CreateOrganization(ctx context.Context, name, registrable string) (domain.Organization, error) {
	org := domain.Organization{Name: name, RegistrableDomain: registrable}
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO organizations (name, registrable_domain)
        VALUES ($1, $2)
        ON CONFLICT (registrable_domain) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, created_at
    `, name, registrable).Scan(&org.ID, &org.CreatedAt)
	return org, err
}

func (db *DB) GetOrganization(ctx context.Context, orgID string) (domain.Organization, error) {
	var org domain.Organization
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, registrable_domain, created_at
        FROM organizations WHERE id = $1
    `, orgID).Scan(&org.ID, &org.Name, &org.RegistrableDomain, &org.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return org, ports.ErrNotFound
	}
	return org, err
}

// AssessmentRepository

func (db *DB) CreateAssessment(ctx context.Context, a domain.Assessment) (domain.Assessment, error) {
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO assessments (organization_id, employee_label, respondent_category, invite_token, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `, a.OrganizationID, a.EmployeeLabel, a.RespondentCategory, a.InviteToken, a.Status).Scan(&a.ID, &a.CreatedAt)
	return a, err
}

func (db *DB) GetByToken(ctx context.Context, token string) (domain.Assessment, error) {
	var a domain.Assessment
	err := db.Pool.QueryRow(ctx, `
        SELECT a.id, a.organization_id, a.employee_label, a.respondent_category,
               a.invite_token, a.status, a.created_at, a.finalized_at,
               (SELECT count(*) FROM answers WHERE assessment_id = a.id)
        FROM assessments a
        WHERE a.invite_token = $1
    `, token).Scan(&a.ID, &a.OrganizationID, &a.EmployeeLabel, &a.RespondentCategory,
		&a.InviteToken, &a.Status, &a.CreatedAt, &a.FinalizedAt, &a.AnswerCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ports.ErrNotFound
	}
	return a, err
}

func (db *DB) UpdateStatus(ctx context.Context, assessmentID string, from, to domain.AssessmentStatus) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE assessments SET status = $3 WHERE id = $1 AND status = $2
    `, assessmentID, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FinalizeAssessment recounts answers and flips the status inside one
// transaction with the row locked, so two concurrent finalize calls cannot
// both pass the completeness check against a stale count.
func (db *DB) FinalizeAssessment(ctx context.Context, assessmentID string, required int) (done bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var status domain.AssessmentStatus
	err = tx.QueryRow(ctx, `
        SELECT status FROM assessments WHERE id = $1 FOR UPDATE
    `, assessmentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ports.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if status.AnswerLocked() {
		return false, nil
	}

	var count int
	if err = tx.QueryRow(ctx, `
        SELECT count(*) FROM answers WHERE assessment_id = $1
    `, assessmentID).Scan(&count); err != nil {
		return false, err
	}
	if count < required {
		return false, nil
	}
	if _, err = tx.Exec(ctx, `
        UPDATE assessments SET status = 'completed', finalized_at = now() WHERE id = $1
    `, assessmentID); err != nil {
		return false, err
	}
	return true, nil
}

// AnswerRepository

func (db *DB) UpsertAnswer(ctx context.Context, a domain.Answer) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO answers (assessment_id, group_id, item_id, value)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (assessment_id, group_id, item_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `, a.AssessmentID, a.GroupID, a.ItemID, a.Value)
	return err
}

func (db *DB) AnswersByAssessment(ctx context.Context, assessmentID string) ([]domain.Answer, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT assessment_id, group_id, item_id, value
        FROM answers
        WHERE assessment_id = $1
        ORDER BY recorded_at, id
    `, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.AssessmentID, &a.GroupID, &a.ItemID, &a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (db *DB) CountAnswers(ctx context.Context, assessmentID string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
        SELECT count(*) FROM answers WHERE assessment_id = $1
    `, assessmentID).Scan(&count)
	return count, err
}

// ResultRepository

func (db *DB) UpsertResults(ctx context.Context, assessmentID string, results []domain.DomainResult) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for _, r := range results {
		if _, err = tx.Exec(ctx, `
            INSERT INTO domain_results (assessment_id, group_id, group_name, group_type, score, category, anomalous, anomaly_reason, computed_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
            ON CONFLICT (assessment_id, group_id)
            DO UPDATE SET group_name = EXCLUDED.group_name,
                          group_type = EXCLUDED.group_type,
                          score = EXCLUDED.score,
                          category = EXCLUDED.category,
                          anomalous = EXCLUDED.anomalous,
                          anomaly_reason = EXCLUDED.anomaly_reason,
                          computed_at = now()
        `, assessmentID, r.GroupID, r.GroupName, r.Type, r.Score, r.Category, r.Anomalous, r.AnomalyReason); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) CompletedScoresByOrganization(ctx context.Context, orgID string) ([]domain.DomainResult, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT r.group_id, r.group_name, r.group_type, r.score, r.category
        FROM domain_results r
        JOIN assessments a ON a.id = r.assessment_id
        WHERE a.organization_id = $1 AND a.status = 'completed'
    `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DomainResult
	for rows.Next() {
		var r domain.DomainResult
		if err := rows.Scan(&r.GroupID, &r.GroupName, &r.Type, &r.Score, &r.Category); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
