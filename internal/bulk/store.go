package bulk

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/types"
)

// ErrJobNotFound is returned when updating a job the store does not hold.
var ErrJobNotFound = errors.New("blog job not found")

// JobStore persists job status transitions. GetBlogJob returns nil, nil for
// unknown IDs.
type JobStore interface {
	CreateBlogJob(ctx context.Context, job *types.BlogJob) error
	UpdateBlogJob(ctx context.Context, job *types.BlogJob) error
	GetBlogJob(ctx context.Context, id uuid.UUID) (*types.BlogJob, error)
	ListBlogJobs(ctx context.Context, userID uuid.UUID) ([]types.BlogJob, error)
}

// MemoryStore is an in-process JobStore used by the CLI and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]types.BlogJob
	// History records every status written per job, in order.
	history map[uuid.UUID][]types.BlogJobStatus
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[uuid.UUID]types.BlogJob),
		history: make(map[uuid.UUID][]types.BlogJobStatus),
	}
}

// CreateBlogJob stores a new job, assigning an ID if it has none.
func (s *MemoryStore) CreateBlogJob(_ context.Context, job *types.BlogJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = *job
	s.history[job.ID] = append(s.history[job.ID], job.Status)
	return nil
}

// UpdateBlogJob replaces a stored job.
func (s *MemoryStore) UpdateBlogJob(_ context.Context, job *types.BlogJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	s.jobs[job.ID] = *job
	s.history[job.ID] = append(s.history[job.ID], job.Status)
	return nil
}

// GetBlogJob returns a copy of the job.
func (s *MemoryStore) GetBlogJob(_ context.Context, id uuid.UUID) (*types.BlogJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

// ListBlogJobs returns the user's jobs, oldest first.
func (s *MemoryStore) ListBlogJobs(_ context.Context, userID uuid.UUID) ([]types.BlogJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []types.BlogJob{}
	for _, job := range s.jobs {
		if job.UserID == userID {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].Keyword < jobs[j].Keyword
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// History returns the statuses written for a job.
func (s *MemoryStore) History(id uuid.UUID) []types.BlogJobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.BlogJobStatus(nil), s.history[id]...)
}
