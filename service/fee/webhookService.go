package feesvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"campusportal/model"
)

type invoiceEvent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ExternalID string `json:"external_id"`
}

func (s *service) HandleGatewayWebhook(ctx context.Context, callbackToken string, raw []byte) error {
	if err := s.gw.VerifyCallbackToken(callbackToken); err != nil {
		return err
	}

	var ev invoiceEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.ID == "" || ev.Status == "" {
		return errors.New("missing invoice fields")
	}
	switch ev.Status {
	case "PAID":
		return s.onPaid(ctx, ev)
	case "EXPIRED":
		return s.r.MarkPaymentExpired(ctx, ev.ID)
	default:
		return nil
	}
}

func (s *service) onPaid(ctx context.Context, ev invoiceEvent) (err error) {
	p, err := s.r.FindPaymentByInvoiceID(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("invoice not mapped to a payment: %w", err)
	}
	if p.Status == model.PaymentPaid {
		// Gateways retry callbacks; a settled invoice is a no-op.
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fee, err := s.r.GetFeeForUpdate(ctx, tx, p.FeeID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if err = s.r.MarkPaymentPaid(ctx, tx, p.ID, now); err != nil {
		return err
	}
	if err = s.r.SettleFee(ctx, tx, p.FeeID, p.Amount, now); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	if p.Amount >= fee.Amount-fee.PaidAmount && !now.After(fee.DueAt) {
		_ = s.rewards.Award(ctx, p.UserID, 10, model.PointsFeePaidOnTime, "fees", &p.FeeID)
	}
	return nil
}
