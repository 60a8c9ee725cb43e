package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/bulk"
	"github.com/jonathan/chaos-engine/internal/server/middleware"
	"github.com/jonathan/chaos-engine/internal/types"
)

// handleCreateBlogJobs queues one job per keyword and runs them in the
// background. The response lists the pending jobs.
func (s *Server) handleCreateBlogJobs(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := s.blogJobsRequest(w, r)
	if !ok {
		return
	}

	runner, err := s.blog(BlogRunOptions{DryRun: req.DryRun})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jobs, err := runner.Enqueue(r.Context(), userID, req.Keywords)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		summary, err := runner.Run(s.baseCtx, jobs)
		if err != nil {
			s.logger.Error("blog run failed", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
			return
		}
		s.logger.Info("blog run finished",
			slog.String("user_id", userID.String()),
			slog.Int("total", summary.Total),
			slog.Int("failed", summary.Failed))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": jobs})
}

// handleStreamBlogJobs runs the jobs inside the request and streams every
// status change as an SSE event. Disconnecting cancels the run; jobs not yet
// started stay pending.
func (s *Server) handleStreamBlogJobs(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := s.blogJobsRequest(w, r)
	if !ok {
		return
	}

	// Events are dropped until the stream is open.
	var sse *SSEWriter
	runner, err := s.blog(BlogRunOptions{
		DryRun: req.DryRun,
		OnProgress: func(event bulk.ProgressEvent) {
			if sse != nil {
				sse.WriteProgress(event)
			}
		},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jobs, err := runner.Enqueue(r.Context(), userID, req.Keywords)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sse, err = NewSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sse.WriteEvent(eventQueued, map[string]any{"jobs": jobs}) //nolint:errcheck

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-s.baseCtx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := runner.Run(ctx, jobs)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(summary)
}

// handleListBlogJobs lists the caller's jobs.
func (s *Server) handleListBlogJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	jobs, err := s.store.ListBlogJobs(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleGetBlogJob returns one job. Jobs owned by other users look missing
// unless the caller is an admin.
func (s *Server) handleGetBlogJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	job, err := s.store.GetBlogJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if job == nil || !canView(r, userID, job.UserID) {
		writeError(w, http.StatusNotFound, "Blog job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) blogJobsRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, *types.CreateBlogJobsRequest, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	if s.blog == nil {
		writeServiceError(w, &ErrUnavailable{Feature: "blog generation"})
		return uuid.Nil, nil, false
	}
	var req types.CreateBlogJobsRequest
	if !decodeJSON(w, r, &req) {
		return uuid.Nil, nil, false
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return uuid.Nil, nil, false
	}
	return userID, &req, true
}

func canView(r *http.Request, userID, owner uuid.UUID) bool {
	return owner == userID || middleware.GetRole(r) == types.RoleAdmin
}
