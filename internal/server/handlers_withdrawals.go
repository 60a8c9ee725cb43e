package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/types"
)

// handleRequestWithdrawal debits the caller's balance into a pending withdrawal.
func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.CreateWithdrawalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	affiliate, err := s.store.GetAffiliateByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if affiliate == nil {
		writeServiceError(w, &ErrNotAffiliate{UserID: userID})
		return
	}

	withdrawal, err := s.store.RequestWithdrawal(r.Context(), userID, req.AmountCents, req.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.logger.Info("withdrawal requested",
		slog.String("withdrawal_id", withdrawal.ID.String()),
		slog.Int64("amount_cents", withdrawal.AmountCents))
	writeJSON(w, http.StatusCreated, withdrawal)
}

// handleListWithdrawals lists the caller's withdrawals.
func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	withdrawals, err := s.store.ListWithdrawalsByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawals)
}

// handleAdminListWithdrawals lists withdrawals filtered by ?status=.
func (s *Server) handleAdminListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := types.WithdrawalStatus(r.URL.Query().Get("status"))
	switch status {
	case "", types.WithdrawalPending, types.WithdrawalApproved, types.WithdrawalRejected:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	withdrawals, err := s.store.ListWithdrawalsByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawals)
}

func (s *Server) handleApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	s.reviewWithdrawal(w, r, s.store.ApproveWithdrawal)
}

func (s *Server) handleRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	s.reviewWithdrawal(w, r, s.store.RejectWithdrawal)
}

type reviewFunc func(ctx context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error)

func (s *Server) reviewWithdrawal(w http.ResponseWriter, r *http.Request, review reviewFunc) {
	adminID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.ReviewWithdrawalRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	withdrawal, err := review(r.Context(), id, adminID, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.logger.Info("withdrawal reviewed",
		slog.String("withdrawal_id", id.String()),
		slog.String("status", string(withdrawal.Status)),
		slog.String("admin_id", adminID.String()))
	writeJSON(w, http.StatusOK, withdrawal)
}
