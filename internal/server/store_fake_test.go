package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/types"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*db.User
	affiliates  map[uuid.UUID]*types.Affiliate
	withdrawals map[uuid.UUID]*types.Withdrawal
	jobs        map[uuid.UUID]*types.BlogJob
	pingErr     error
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[uuid.UUID]*db.User{},
		affiliates:  map[uuid.UUID]*types.Affiliate{},
		withdrawals: map[uuid.UUID]*types.Withdrawal{},
		jobs:        map[uuid.UUID]*types.BlogJob{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userByEmail(email) != nil, nil
}

func (f *fakeStore) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userByEmail(email) != nil {
		return uuid.Nil, db.ErrDuplicate
	}
	now := time.Now()
	u := &db.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(email),
		Phone:     phone,
		Role:      types.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.userByEmail(email)
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) ListUsers(_ context.Context, limit, offset int) ([]db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]db.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return []db.User{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeStore) userByEmail(email string) *db.User {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (f *fakeStore) setRole(id uuid.UUID, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Role = role
}

func (f *fakeStore) CreateAffiliate(_ context.Context, userID uuid.UUID, code string) (*types.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.affiliates[userID]; ok {
		return nil, fmt.Errorf("affiliate for %s: %w", userID, db.ErrDuplicate)
	}
	for _, a := range f.affiliates {
		if a.Code == code {
			return nil, fmt.Errorf("affiliate code %s: %w", code, db.ErrDuplicate)
		}
	}
	a := &types.Affiliate{ID: uuid.New(), UserID: userID, Code: code, CommissionRateBps: 1000}
	f.affiliates[userID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetAffiliateByUser(_ context.Context, userID uuid.UUID) (*types.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) RecordClick(_ context.Context, code string) (*types.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.affiliates {
		if a.Code == code {
			a.Clicks++
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("affiliate code %s: %w", code, db.ErrNotFound)
}

func (f *fakeStore) CreditCommission(_ context.Context, affiliateID uuid.UUID, saleCents int64) (*types.Affiliate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.affiliates {
		if a.ID == affiliateID {
			a.BalanceCents += saleCents * int64(a.CommissionRateBps) / 10000
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("affiliate %s: %w", affiliateID, db.ErrNotFound)
}

func (f *fakeStore) fund(userID uuid.UUID, cents int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.affiliates[userID].BalanceCents += cents
}

func (f *fakeStore) RequestWithdrawal(_ context.Context, userID uuid.UUID, amountCents int64, method string) (*types.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.affiliates[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if a.BalanceCents < amountCents {
		return nil, db.ErrInsufficientBalance
	}
	a.BalanceCents -= amountCents
	w := &types.Withdrawal{
		ID:          uuid.New(),
		AffiliateID: a.ID,
		AmountCents: amountCents,
		Status:      types.WithdrawalPending,
		Method:      method,
		CreatedAt:   time.Now(),
	}
	f.withdrawals[w.ID] = w
	cp := *w
	return &cp, nil
}

func (f *fakeStore) ApproveWithdrawal(_ context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error) {
	return f.review(id, adminID, note, types.WithdrawalApproved)
}

func (f *fakeStore) RejectWithdrawal(_ context.Context, id, adminID uuid.UUID, note string) (*types.Withdrawal, error) {
	return f.review(id, adminID, note, types.WithdrawalRejected)
}

func (f *fakeStore) review(id, adminID uuid.UUID, note string, to types.WithdrawalStatus) (*types.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.withdrawals[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if w.Status != types.WithdrawalPending {
		return nil, db.ErrInvalidTransition
	}
	if to == types.WithdrawalRejected {
		for _, a := range f.affiliates {
			if a.ID == w.AffiliateID {
				a.BalanceCents += w.AmountCents
			}
		}
	}
	now := time.Now()
	w.Status = to
	w.Note = note
	w.ReviewedBy = &adminID
	w.ReviewedAt = &now
	cp := *w
	return &cp, nil
}

func (f *fakeStore) ListWithdrawalsByUser(_ context.Context, userID uuid.UUID) ([]types.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Withdrawal{}
	a, ok := f.affiliates[userID]
	if !ok {
		return out, nil
	}
	for _, w := range f.withdrawals {
		if w.AffiliateID == a.ID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) ListWithdrawalsByStatus(_ context.Context, status types.WithdrawalStatus) ([]types.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Withdrawal{}
	for _, w := range f.withdrawals {
		if status == "" || w.Status == status {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBlogJob(_ context.Context, job *types.BlogJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateBlogJob(_ context.Context, job *types.BlogJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeStore) GetBlogJob(_ context.Context, id uuid.UUID) (*types.BlogJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) ListBlogJobs(_ context.Context, userID uuid.UUID) ([]types.BlogJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.BlogJob{}
	for _, j := range f.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	return out, nil
}
