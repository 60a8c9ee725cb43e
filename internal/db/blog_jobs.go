package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/chaos-engine/internal/types"
)

const blogJobColumns = `id, user_id, keyword, status, title, content, risk_score, used_fallback, post_id, post_url, error, created_at, updated_at`

func scanBlogJob(row pgx.Row) (*types.BlogJob, error) {
	var j types.BlogJob
	var title, content, postURL, errMsg *string
	err := row.Scan(&j.ID, &j.UserID, &j.Keyword, &j.Status, &title, &content, &j.RiskScore,
		&j.UsedFallback, &j.PostID, &postURL, &errMsg, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Title = derefString(title)
	j.Content = derefString(content)
	j.PostURL = derefString(postURL)
	j.Error = derefString(errMsg)
	return &j, nil
}

// CreateBlogJob inserts a job, filling in its ID and timestamps
func (db *DB) CreateBlogJob(ctx context.Context, job *types.BlogJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO blog_jobs (id, user_id, keyword, status) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		job.ID, job.UserID, job.Keyword, job.Status,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create blog job: %w", err)
	}
	return nil
}

// UpdateBlogJob writes the job's mutable fields
func (db *DB) UpdateBlogJob(ctx context.Context, job *types.BlogJob) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE blog_jobs SET status = $2, title = $3, content = $4, risk_score = $5, used_fallback = $6,
		     post_id = $7, post_url = $8, error = $9, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		job.ID, job.Status, nullIfEmpty(job.Title), nullIfEmpty(job.Content), job.RiskScore, job.UsedFallback,
		job.PostID, nullIfEmpty(job.PostURL), nullIfEmpty(job.Error),
	).Scan(&job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("blog job %s: %w", job.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update blog job: %w", err)
	}
	return nil
}

// GetBlogJob retrieves a job by ID. Returns nil, nil if not found.
func (db *DB) GetBlogJob(ctx context.Context, id uuid.UUID) (*types.BlogJob, error) {
	j, err := scanBlogJob(db.pool.QueryRow(ctx, `SELECT `+blogJobColumns+` FROM blog_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get blog job: %w", err)
	}
	return j, nil
}

// ListBlogJobs returns the user's jobs, oldest first
func (db *DB) ListBlogJobs(ctx context.Context, userID uuid.UUID) ([]types.BlogJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+blogJobColumns+` FROM blog_jobs WHERE user_id = $1 ORDER BY created_at, keyword`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.BlogJob{}
	for rows.Next() {
		j, err := scanBlogJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}
