package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/chaos-engine/internal/types"
)

// DefaultCommissionRateBps is 10%.
const DefaultCommissionRateBps = 1000

const affiliateColumns = `id, user_id, code, balance_cents, clicks, commission_rate_bps, created_at, updated_at`

func scanAffiliate(row pgx.Row) (*types.Affiliate, error) {
	var a types.Affiliate
	err := row.Scan(&a.ID, &a.UserID, &a.Code, &a.BalanceCents, &a.Clicks, &a.CommissionRateBps, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAffiliate registers a user as an affiliate. Returns ErrDuplicate if the
// user is already an affiliate or the code is taken.
func (db *DB) CreateAffiliate(ctx context.Context, userID uuid.UUID, code string) (*types.Affiliate, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAffiliate(tx.QueryRow(ctx,
		`INSERT INTO affiliates (user_id, code, commission_rate_bps) VALUES ($1, $2, $3)
		 RETURNING `+affiliateColumns,
		userID, code, DefaultCommissionRateBps,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("affiliate %s: %w", code, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create affiliate: %w", err)
	}

	if err := insertAudit(ctx, tx, &userID, types.AuditAffiliateCreated, "affiliate", a.ID, code); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return a, nil
}

// GetAffiliateByUser returns the user's affiliate account, or nil, nil.
func (db *DB) GetAffiliateByUser(ctx context.Context, userID uuid.UUID) (*types.Affiliate, error) {
	a, err := scanAffiliate(db.pool.QueryRow(ctx, `SELECT `+affiliateColumns+` FROM affiliates WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get affiliate: %w", err)
	}
	return a, nil
}

// RecordClick increments the click counter for code. Returns ErrNotFound for
// unknown codes.
func (db *DB) RecordClick(ctx context.Context, code string) (*types.Affiliate, error) {
	a, err := scanAffiliate(db.pool.QueryRow(ctx,
		`UPDATE affiliates SET clicks = clicks + 1, updated_at = NOW() WHERE code = $1
		 RETURNING `+affiliateColumns,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("affiliate code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record click: %w", err)
	}
	return a, nil
}

// CreditCommission adds commission for a sale of saleCents at the affiliate's rate.
func (db *DB) CreditCommission(ctx context.Context, affiliateID uuid.UUID, saleCents int64) (*types.Affiliate, error) {
	if saleCents <= 0 {
		return nil, fmt.Errorf("sale amount must be positive")
	}
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAffiliate(tx.QueryRow(ctx,
		`UPDATE affiliates SET balance_cents = balance_cents + ($2 * commission_rate_bps / 10000), updated_at = NOW()
		 WHERE id = $1 RETURNING `+affiliateColumns,
		affiliateID, saleCents,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("affiliate %s: %w", affiliateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to credit commission: %w", err)
	}

	detail := fmt.Sprintf("sale=%d", saleCents)
	if err := insertAudit(ctx, tx, nil, types.AuditCommissionCredited, "affiliate", affiliateID, detail); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return a, nil
}
