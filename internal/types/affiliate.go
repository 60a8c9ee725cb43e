package types

import (
	"time"

	"github.com/google/uuid"
)

// Affiliate is a referral account. Money is held in cents.
type Affiliate struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Code              string    `json:"code"`
	BalanceCents      int64     `json:"balance_cents"`
	Clicks            int64     `json:"clicks"`
	CommissionRateBps int       `json:"commission_rate_bps"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WithdrawalStatus is the state of a payout request.
type WithdrawalStatus string

// Only pending withdrawals may be approved or rejected.
const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a payout request against an affiliate balance.
type Withdrawal struct {
	ID          uuid.UUID        `json:"id"`
	AffiliateID uuid.UUID        `json:"affiliate_id"`
	AmountCents int64            `json:"amount_cents"`
	Status      WithdrawalStatus `json:"status"`
	Method      string           `json:"method"`
	Note        string           `json:"note,omitempty"`
	ReviewedBy  *uuid.UUID       `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
}

// AuditLog records a balance-affecting action.
type AuditLog struct {
	ID        uuid.UUID  `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Action    string     `json:"action"`
	Entity    string     `json:"entity"`
	EntityID  uuid.UUID  `json:"entity_id"`
	Detail    string     `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Audit actions.
const (
	AuditWithdrawalRequested = "withdrawal.requested"
	AuditWithdrawalApproved  = "withdrawal.approved"
	AuditWithdrawalRejected  = "withdrawal.rejected"
	AuditAffiliateCreated    = "affiliate.created"
	AuditCommissionCredited  = "affiliate.credited"
)

// CreateAffiliateRequest registers the caller as an affiliate. An empty code
// is generated server-side.
type CreateAffiliateRequest struct {
	Code string `json:"code,omitempty" validate:"omitempty,min=4,max=32,alphanum"`
}

// CreateWithdrawalRequest asks for a payout from the caller's balance.
type CreateWithdrawalRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=paypal bank_transfer"`
}

// CreditCommissionRequest records a referred sale for an affiliate.
type CreditCommissionRequest struct {
	SaleCents int64 `json:"sale_cents" validate:"required,gt=0"`
}

// ReviewWithdrawalRequest carries an optional admin note.
type ReviewWithdrawalRequest struct {
	Note string `json:"note,omitempty" validate:"max=500"`
}

// Validate checks the CreateAffiliateRequest fields.
func (r *CreateAffiliateRequest) Validate() error {
	return Validate(r)
}

// Validate checks the CreateWithdrawalRequest fields.
func (r *CreateWithdrawalRequest) Validate() error {
	return Validate(r)
}

// Validate checks the CreditCommissionRequest fields.
func (r *CreditCommissionRequest) Validate() error {
	return Validate(r)
}

// Validate checks the ReviewWithdrawalRequest fields.
func (r *ReviewWithdrawalRequest) Validate() error {
	return Validate(r)
}
