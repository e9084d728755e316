package feesvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusportal/model"
	gatewayrepo "campusportal/repository/gateway"

	"github.com/google/uuid"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrNotOwner      ErrCode = "NOT_OWNER"
	ErrAlreadyPaid   ErrCode = "ALREADY_PAID"
	ErrAmountInvalid ErrCode = "AMOUNT_INVALID"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const invoiceExpiry = 24 * time.Hour

type Repo interface {
	InsertFee(ctx context.Context, f *model.Fee) error
	ListByUser(ctx context.Context, userID int64) ([]model.Fee, error)
	Summary(ctx context.Context, userID int64) (*model.FeeSummary, error)
	GetFeeForUpdate(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error)
	SettleFee(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error
	InsertPayment(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	FindPaymentByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	MarkPaymentPaid(ctx context.Context, tx *sql.Tx, paymentID int64, paidAt time.Time) error
	MarkPaymentExpired(ctx context.Context, invoiceID string) error
	SweepOverdueFees(ctx context.Context, now time.Time) (int64, error)
}

// Rewarder feeds the points ledger; failures never fail a payment.
type Rewarder interface {
	Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error
}

// PaymentCreated is what a gateway payment hands back to the caller.
type PaymentCreated struct {
	PaymentID     int64  `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	PaymentLink   string `json:"payment_link,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

type Service interface {
	Create(ctx context.Context, userID int64, typ model.FeeType, description string, amount float64, dueAt time.Time) (*model.Fee, error)
	MyFees(ctx context.Context, userID int64) ([]model.Fee, error)
	Summary(ctx context.Context, userID int64) (*model.FeeSummary, error)

	// Pay validates the amount against the outstanding balance. Gateway
	// payments come back pending with an invoice link; cash / bank transfer
	// settles immediately.
	Pay(ctx context.Context, userID, feeID int64, amount float64, method, payerEmail string) (*PaymentCreated, error)

	// HandleGatewayWebhook settles the fee once the gateway reports PAID.
	// Replays of an already-settled invoice are no-ops.
	HandleGatewayWebhook(ctx context.Context, callbackToken string, raw []byte) error

	// SweepOverdueFees persists the overdue status that reads derive on the
	// fly. Meant to run on a schedule.
	SweepOverdueFees(ctx context.Context) (int64, error)
}

// ----- Service implementation -----

type service struct {
	db      *sql.DB
	r       Repo
	gw      gatewayrepo.Repo
	rewards Rewarder
	now     func() time.Time
}

func New(db *sql.DB, r Repo, gw gatewayrepo.Repo, rewards Rewarder) Service {
	return &service{db: db, r: r, gw: gw, rewards: rewards, now: time.Now}
}

func (s *service) Create(ctx context.Context, userID int64, typ model.FeeType, description string, amount float64, dueAt time.Time) (*model.Fee, error) {
	if amount <= 0 {
		return nil, makeErr(ErrAmountInvalid)
	}
	f := &model.Fee{
		UserID:      userID,
		Type:        typ,
		Description: description,
		Amount:      amount,
		DueAt:       dueAt,
		Status:      model.FeePending,
	}
	if err := s.r.InsertFee(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) MyFees(ctx context.Context, userID int64) ([]model.Fee, error) {
	fees, err := s.r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Read paths never show a stale 'pending' for a fee that is past due.
	now := s.now().UTC()
	for i := range fees {
		if fees[i].Status == model.FeePending && fees[i].DueAt.Before(now) {
			fees[i].Status = model.FeeOverdue
		}
	}
	return fees, nil
}

func (s *service) Summary(ctx context.Context, userID int64) (*model.FeeSummary, error) {
	return s.r.Summary(ctx, userID)
}

func (s *service) Pay(ctx context.Context, userID, feeID int64, amount float64, method, payerEmail string) (out *PaymentCreated, err error) {
	if amount <= 0 {
		return nil, makeErr(ErrAmountInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fee, err := s.r.GetFeeForUpdate(ctx, tx, feeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if fee.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	outstanding := fee.Amount - fee.PaidAmount
	if outstanding <= 0 {
		return nil, makeErr(ErrAlreadyPaid)
	}
	if amount > outstanding {
		return nil, makeErr(ErrAmountInvalid)
	}

	now := s.now().UTC()
	txnID := uuid.NewString()

	if method == "gateway" {
		inv, gerr := s.gw.CreateInvoice(gatewayrepo.CreateInvoiceReq{
			ExternalID:  fmt.Sprintf("fee:%d:%d", feeID, now.UnixNano()),
			Amount:      amount,
			PayerEmail:  payerEmail,
			Description: fee.Description,
			ExpirySec:   int(invoiceExpiry.Seconds()),
		})
		if gerr != nil {
			err = gerr
			return nil, err
		}
		expires := now.Add(invoiceExpiry)
		p := &model.Payment{
			FeeID:            feeID,
			UserID:           userID,
			Amount:           amount,
			Method:           method,
			Status:           model.PaymentPending,
			TransactionID:    txnID,
			GatewayInvoiceID: &inv.InvoiceID,
			PaymentLink:      &inv.InvoiceURL,
			ExpiresAt:        &expires,
		}
		if err = s.r.InsertPayment(ctx, tx, p); err != nil {
			return nil, err
		}
		if err = tx.Commit(); err != nil {
			return nil, err
		}
		return &PaymentCreated{
			PaymentID:     p.ID,
			TransactionID: txnID,
			PaymentLink:   inv.InvoiceURL,
			ExpiresAt:     inv.ExpiresAt,
		}, nil
	}

	// Direct settlement (cash / bank transfer recorded at the counter).
	p := &model.Payment{
		FeeID:         feeID,
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		Status:        model.PaymentPaid,
		TransactionID: txnID,
		PaidAt:        &now,
	}
	if err = s.r.InsertPayment(ctx, tx, p); err != nil {
		return nil, err
	}
	if err = s.r.SettleFee(ctx, tx, feeID, amount, now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if amount >= outstanding && !now.After(fee.DueAt) {
		_ = s.rewards.Award(ctx, userID, 10, model.PointsFeePaidOnTime, "fees", &feeID)
	}

	return &PaymentCreated{PaymentID: p.ID, TransactionID: txnID}, nil
}

func (s *service) SweepOverdueFees(ctx context.Context) (int64, error) {
	return s.r.SweepOverdueFees(ctx, s.now().UTC())
}
