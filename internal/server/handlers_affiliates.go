package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/server/ratelimit"
	"github.com/jonathan/chaos-engine/internal/types"
)

// handleCreateAffiliate registers the caller as an affiliate.
func (s *Server) handleCreateAffiliate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.CreateAffiliateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	code := strings.ToUpper(req.Code)
	if code == "" {
		code = generateAffiliateCode()
	}

	affiliate, err := s.store.CreateAffiliate(r.Context(), userID, code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.logger.Info("affiliate created", slog.String("user_id", userID.String()), slog.String("code", code))
	writeJSON(w, http.StatusCreated, affiliate)
}

// handleGetAffiliate returns the caller's affiliate account.
func (s *Server) handleGetAffiliate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
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
	writeJSON(w, http.StatusOK, affiliate)
}

// handleCreditCommission credits an affiliate with commission on a sale.
func (s *Server) handleCreditCommission(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.CreditCommissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}

	affiliate, err := s.store.CreditCommission(r.Context(), id, req.SaleCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.logger.Info("commission credited",
		slog.String("affiliate_id", id.String()),
		slog.String("admin_id", adminID.String()),
		slog.Int64("sale_cents", req.SaleCents),
		slog.Int64("balance_cents", affiliate.BalanceCents),
	)
	writeJSON(w, http.StatusOK, affiliate)
}

// handleReferral counts a click and redirects to the landing page. Repeat
// clicks from the same visitor within the click window redirect without
// being counted.
func (s *Server) handleReferral(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "Invalid code")
		return
	}

	if s.clickLimiter.CheckAndIncrement(ratelimit.ClickKey(clientIP(r), code)) {
		if _, err := s.store.RecordClick(r.Context(), code); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Unknown referral code")
				return
			}
			s.logger.Error("failed to record click", slog.String("code", code), slog.String("error", err.Error()))
		}
	}

	http.Redirect(w, r, s.referralTarget(code), http.StatusFound)
}

func (s *Server) referralTarget(code string) string {
	u, err := url.Parse(s.landingURL)
	if err != nil {
		return s.landingURL
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}

func generateAffiliateCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
