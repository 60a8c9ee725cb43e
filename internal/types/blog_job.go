package types

import (
	"time"

	"github.com/google/uuid"
)

// BlogJobStatus is the lifecycle state of a bulk blog job.
type BlogJobStatus string

// Job states. A job moves pending → generating → publishing → published, or
// to failed from any state. Dry runs stop at ready instead of publishing.
const (
	BlogJobPending    BlogJobStatus = "pending"
	BlogJobGenerating BlogJobStatus = "generating"
	BlogJobPublishing BlogJobStatus = "publishing"
	BlogJobPublished  BlogJobStatus = "published"
	BlogJobReady      BlogJobStatus = "ready"
	BlogJobFailed     BlogJobStatus = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s BlogJobStatus) Terminal() bool {
	return s == BlogJobPublished || s == BlogJobReady || s == BlogJobFailed
}

// BlogJob is one keyword's trip through generation, humanization and publishing.
type BlogJob struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Keyword      string        `json:"keyword"`
	Status       BlogJobStatus `json:"status"`
	Title        string        `json:"title,omitempty"`
	Content      string        `json:"content,omitempty"`
	RiskScore    *int          `json:"risk_score,omitempty"`
	UsedFallback bool          `json:"used_fallback"`
	PostID       *int          `json:"post_id,omitempty"`
	PostURL      string        `json:"post_url,omitempty"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateBlogJobsRequest queues one job per keyword.
type CreateBlogJobsRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1,max=50,dive,required,max=200"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// Validate checks the CreateBlogJobsRequest fields.
func (r *CreateBlogJobsRequest) Validate() error {
	return Validate(r)
}
