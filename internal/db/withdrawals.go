package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/chaos-engine/internal/types"
)

const (
	withdrawalColumns         = `id, affiliate_id, amount_cents, status, method, note, reviewed_by, created_at, reviewed_at`
	withdrawalColumnsPrefixed = `w.id, w.affiliate_id, w.amount_cents, w.status, w.method, w.note, w.reviewed_by, w.created_at, w.reviewed_at`
)

func scanWithdrawal(row pgx.Row) (*types.Withdrawal, error) {
	var w types.Withdrawal
	var note *string
	err := row.Scan(&w.ID, &w.AffiliateID, &w.AmountCents, &w.Status, &w.Method, &note, &w.ReviewedBy, &w.CreatedAt, &w.ReviewedAt)
	if err != nil {
		return nil, err
	}
	w.Note = derefString(note)
	return &w, nil
}

// RequestWithdrawal debits the user's affiliate balance and records a pending
// withdrawal with its audit entry, all in one transaction.
func (db *DB) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amountCents int64, method string) (*types.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var affiliateID uuid.UUID
	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT id, balance_cents FROM affiliates WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&affiliateID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("affiliate for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock affiliate: %w", err)
	}
	if amountCents > balance {
		return nil, fmt.Errorf("requested %d, available %d: %w", amountCents, balance, ErrInsufficientBalance)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE affiliates SET balance_cents = balance_cents - $1, updated_at = NOW() WHERE id = $2`,
		amountCents, affiliateID,
	); err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	w, err := scanWithdrawal(tx.QueryRow(ctx,
		`INSERT INTO withdrawals (affiliate_id, amount_cents, method) VALUES ($1, $2, $3)
		 RETURNING `+withdrawalColumns,
		affiliateID, amountCents, method,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	detail := fmt.Sprintf("amount=%d method=%s", amountCents, method)
	if err := insertAudit(ctx, tx, &userID, types.AuditWithdrawalRequested, "withdrawal", w.ID, detail); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return w, nil
}

// ApproveWithdrawal marks a pending withdrawal approved.
func (db *DB) ApproveWithdrawal(ctx context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error) {
	return db.reviewWithdrawal(ctx, id, adminID, note, types.WithdrawalApproved)
}

// RejectWithdrawal marks a pending withdrawal rejected and refunds the balance.
func (db *DB) RejectWithdrawal(ctx context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error) {
	return db.reviewWithdrawal(ctx, id, adminID, note, types.WithdrawalRejected)
}

func (db *DB) reviewWithdrawal(ctx context.Context, id, adminID uuid.UUID, note string, to types.WithdrawalStatus) (*types.Withdrawal, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status types.WithdrawalStatus
	var affiliateID uuid.UUID
	var amount int64
	err = tx.QueryRow(ctx,
		`SELECT status, affiliate_id, amount_cents FROM withdrawals WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&status, &affiliateID, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("withdrawal %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	if status != types.WithdrawalPending {
		return nil, fmt.Errorf("withdrawal %s is %s: %w", id, status, ErrInvalidTransition)
	}

	action := types.AuditWithdrawalApproved
	if to == types.WithdrawalRejected {
		action = types.AuditWithdrawalRejected
		if _, err := tx.Exec(ctx,
			`UPDATE affiliates SET balance_cents = balance_cents + $1, updated_at = NOW() WHERE id = $2`,
			amount, affiliateID,
		); err != nil {
			return nil, fmt.Errorf("failed to refund balance: %w", err)
		}
	}

	w, err := scanWithdrawal(tx.QueryRow(ctx,
		`UPDATE withdrawals SET status = $1, note = $2, reviewed_by = $3, reviewed_at = NOW()
		 WHERE id = $4 RETURNING `+withdrawalColumns,
		to, nullIfEmpty(note), adminID, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	if err := insertAudit(ctx, tx, &adminID, action, "withdrawal", id, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return w, nil
}

// ListWithdrawalsByUser returns the user's withdrawals, newest first
func (db *DB) ListWithdrawalsByUser(ctx context.Context, userID uuid.UUID) ([]types.Withdrawal, error) {
	return db.listWithdrawals(ctx,
		`SELECT `+withdrawalColumnsPrefixed+` FROM withdrawals w
		 JOIN affiliates a ON a.id = w.affiliate_id
		 WHERE a.user_id = $1 ORDER BY w.created_at DESC`,
		userID)
}

// ListWithdrawalsByStatus returns withdrawals in a status, oldest first.
// An empty status lists all.
func (db *DB) ListWithdrawalsByStatus(ctx context.Context, status types.WithdrawalStatus) ([]types.Withdrawal, error) {
	if status == "" {
		return db.listWithdrawals(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals ORDER BY created_at`)
	}
	return db.listWithdrawals(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at`,
		status)
}

func (db *DB) listWithdrawals(ctx context.Context, query string, args ...any) ([]types.Withdrawal, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	withdrawals := []types.Withdrawal{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}
