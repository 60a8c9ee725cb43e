package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/types"
)

// DBClient is the user persistence the auth flow needs.
type DBClient interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, name, email, phone string) (uuid.UUID, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]db.User, error)
}

// LedgerStore persists affiliates and withdrawals.
type LedgerStore interface {
	CreateAffiliate(ctx context.Context, userID uuid.UUID, code string) (*types.Affiliate, error)
	GetAffiliateByUser(ctx context.Context, userID uuid.UUID) (*types.Affiliate, error)
	RecordClick(ctx context.Context, code string) (*types.Affiliate, error)
	CreditCommission(ctx context.Context, affiliateID uuid.UUID, saleCents int64) (*types.Affiliate, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amountCents int64, method string) (*types.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error)
	ListWithdrawalsByUser(ctx context.Context, userID uuid.UUID) ([]types.Withdrawal, error)
	ListWithdrawalsByStatus(ctx context.Context, status types.WithdrawalStatus) ([]types.Withdrawal, error)
}

// BlogJobReader reads bulk job state.
type BlogJobReader interface {
	GetBlogJob(ctx context.Context, id uuid.UUID) (*types.BlogJob, error)
	ListBlogJobs(ctx context.Context, userID uuid.UUID) ([]types.BlogJob, error)
}

// Store is everything the HTTP API reads and writes.
type Store interface {
	DBClient
	LedgerStore
	BlogJobReader
	Ping(ctx context.Context) error
}

var _ Store = (*db.DB)(nil)
