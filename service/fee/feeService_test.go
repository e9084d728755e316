package feesvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusportal/model"
	gatewayrepo "campusportal/repository/gateway"
	"campusportal/util/sqltest"
)

type repoMock struct {
	listFn        func(ctx context.Context, userID int64) ([]model.Fee, error)
	getFeeFn      func(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error)
	settleFn      func(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error
	insertPayFn   func(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	findPayFn     func(ctx context.Context, invoiceID string) (*model.Payment, error)
	markPaidFn    func(ctx context.Context, tx *sql.Tx, paymentID int64, paidAt time.Time) error
	markExpiredFn func(ctx context.Context, invoiceID string) error
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) InsertFee(ctx context.Context, f *model.Fee) error {
	f.ID = 1
	return nil
}
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.Fee, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, userID)
}
func (m *repoMock) Summary(ctx context.Context, userID int64) (*model.FeeSummary, error) {
	return &model.FeeSummary{}, nil
}
func (m *repoMock) GetFeeForUpdate(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error) {
	return m.getFeeFn(ctx, tx, feeID)
}
func (m *repoMock) SettleFee(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
	if m.settleFn == nil {
		return nil
	}
	return m.settleFn(ctx, tx, feeID, amount, paidAt)
}
func (m *repoMock) InsertPayment(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	p.ID = 100
	if m.insertPayFn == nil {
		return nil
	}
	return m.insertPayFn(ctx, tx, p)
}
func (m *repoMock) FindPaymentByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error) {
	return m.findPayFn(ctx, invoiceID)
}
func (m *repoMock) MarkPaymentPaid(ctx context.Context, tx *sql.Tx, paymentID int64, paidAt time.Time) error {
	if m.markPaidFn == nil {
		return nil
	}
	return m.markPaidFn(ctx, tx, paymentID, paidAt)
}
func (m *repoMock) MarkPaymentExpired(ctx context.Context, invoiceID string) error {
	if m.markExpiredFn == nil {
		return nil
	}
	return m.markExpiredFn(ctx, invoiceID)
}
func (m *repoMock) SweepOverdueFees(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type gatewayMock struct {
	createFn func(req gatewayrepo.CreateInvoiceReq) (*gatewayrepo.CreateInvoiceResp, error)
	token    string
}

func (m *gatewayMock) CreateInvoice(req gatewayrepo.CreateInvoiceReq) (*gatewayrepo.CreateInvoiceResp, error) {
	if m.createFn == nil {
		return &gatewayrepo.CreateInvoiceResp{InvoiceID: "inv-1", InvoiceURL: "https://pay.example/inv-1"}, nil
	}
	return m.createFn(req)
}
func (m *gatewayMock) VerifyCallbackToken(token string) error {
	if m.token != "" && token != m.token {
		return gatewayrepo.ErrBadCallbackToken
	}
	return nil
}

type rewardsMock struct {
	awards []model.PointReason
}

func (m *rewardsMock) Award(ctx context.Context, userID, points int64, reason model.PointReason, refTable string, refID *int64) error {
	m.awards = append(m.awards, reason)
	return nil
}

func newTestService(r Repo, gw gatewayrepo.Repo, rewards Rewarder, now time.Time) *service {
	s := New(sqltest.Open(), r, gw, rewards).(*service)
	s.now = func() time.Time { return now }
	return s
}

var due = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

func pendingFee(userID int64, amount, paid float64) func(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error) {
	return func(ctx context.Context, tx *sql.Tx, feeID int64) (*model.Fee, error) {
		return &model.Fee{ID: feeID, UserID: userID, Amount: amount, PaidAmount: paid, DueAt: due, Status: model.FeePending}, nil
	}
}

// --- tests ---

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	s := newTestService(&repoMock{}, &gatewayMock{}, &rewardsMock{}, due)
	_, err := s.Create(context.Background(), 1, model.FeeTuition, "semester", 0, due)
	require.Equal(t, ErrAmountInvalid, Code(err))
}

func TestPay_AmountChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		s := newTestService(&repoMock{}, &gatewayMock{}, &rewardsMock{}, due)
		_, err := s.Pay(ctx, 1, 1, 0, "cash", "")
		require.Equal(t, ErrAmountInvalid, Code(err))
	})

	t.Run("over outstanding", func(t *testing.T) {
		s := newTestService(&repoMock{getFeeFn: pendingFee(1, 100, 40)}, &gatewayMock{}, &rewardsMock{}, due)
		_, err := s.Pay(ctx, 1, 1, 61, "cash", "")
		require.Equal(t, ErrAmountInvalid, Code(err))
	})

	t.Run("already settled", func(t *testing.T) {
		s := newTestService(&repoMock{getFeeFn: pendingFee(1, 100, 100)}, &gatewayMock{}, &rewardsMock{}, due)
		_, err := s.Pay(ctx, 1, 1, 10, "cash", "")
		require.Equal(t, ErrAlreadyPaid, Code(err))
	})

	t.Run("not owner", func(t *testing.T) {
		s := newTestService(&repoMock{getFeeFn: pendingFee(99, 100, 0)}, &gatewayMock{}, &rewardsMock{}, due)
		_, err := s.Pay(ctx, 1, 1, 10, "cash", "")
		require.Equal(t, ErrNotOwner, Code(err))
	})
}

func TestPay_DirectSettlesAndAwards(t *testing.T) {
	settled := 0.0
	rewards := &rewardsMock{}
	r := &repoMock{
		getFeeFn: pendingFee(1, 100, 0),
		settleFn: func(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
			settled = amount
			return nil
		},
	}
	s := newTestService(r, &gatewayMock{}, rewards, due.Add(-time.Hour)) // before the due date

	out, err := s.Pay(context.Background(), 1, 1, 100, "cash", "")
	require.NoError(t, err)
	require.NotEmpty(t, out.TransactionID)
	require.Empty(t, out.PaymentLink)
	require.Equal(t, 100.0, settled)
	require.Equal(t, []model.PointReason{model.PointsFeePaidOnTime}, rewards.awards)
}

func TestPay_PartialDirectNoAward(t *testing.T) {
	rewards := &rewardsMock{}
	s := newTestService(&repoMock{getFeeFn: pendingFee(1, 100, 0)}, &gatewayMock{}, rewards, due.Add(-time.Hour))

	_, err := s.Pay(context.Background(), 1, 1, 40, "cash", "")
	require.NoError(t, err)
	require.Empty(t, rewards.awards)
}

func TestPay_GatewayStaysPending(t *testing.T) {
	var inserted *model.Payment
	r := &repoMock{
		getFeeFn: pendingFee(1, 100, 0),
		insertPayFn: func(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
			inserted = p
			return nil
		},
		settleFn: func(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
			t.Fatal("gateway payment must not settle the fee up front")
			return nil
		},
	}
	s := newTestService(r, &gatewayMock{}, &rewardsMock{}, due.Add(-time.Hour))

	out, err := s.Pay(context.Background(), 1, 1, 100, "gateway", "student@example.com")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/inv-1", out.PaymentLink)
	require.Equal(t, model.PaymentPending, inserted.Status)
	require.NotNil(t, inserted.GatewayInvoiceID)
}

func TestWebhook_BadToken(t *testing.T) {
	s := newTestService(&repoMock{}, &gatewayMock{token: "secret"}, &rewardsMock{}, due)
	err := s.HandleGatewayWebhook(context.Background(), "wrong", []byte(`{"id":"inv-1","status":"PAID"}`))
	require.ErrorIs(t, err, gatewayrepo.ErrBadCallbackToken)
}

func TestWebhook_PaidSettlesOnce(t *testing.T) {
	settles := 0
	r := &repoMock{
		getFeeFn: pendingFee(1, 100, 0),
		findPayFn: func(ctx context.Context, invoiceID string) (*model.Payment, error) {
			return &model.Payment{ID: 100, FeeID: 1, UserID: 1, Amount: 100, Status: model.PaymentPending}, nil
		},
		settleFn: func(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
			settles++
			return nil
		},
	}
	rewards := &rewardsMock{}
	s := newTestService(r, &gatewayMock{}, rewards, due.Add(-time.Hour))

	require.NoError(t, s.HandleGatewayWebhook(context.Background(), "", []byte(`{"id":"inv-1","status":"PAID"}`)))
	require.Equal(t, 1, settles)
	require.Equal(t, []model.PointReason{model.PointsFeePaidOnTime}, rewards.awards)
}

func TestWebhook_ReplayIsNoOp(t *testing.T) {
	r := &repoMock{
		findPayFn: func(ctx context.Context, invoiceID string) (*model.Payment, error) {
			return &model.Payment{ID: 100, FeeID: 1, Status: model.PaymentPaid}, nil
		},
		settleFn: func(ctx context.Context, tx *sql.Tx, feeID int64, amount float64, paidAt time.Time) error {
			t.Fatal("replay must not settle again")
			return nil
		},
	}
	s := newTestService(r, &gatewayMock{}, &rewardsMock{}, due)

	require.NoError(t, s.HandleGatewayWebhook(context.Background(), "", []byte(`{"id":"inv-1","status":"PAID"}`)))
}

func TestWebhook_Expired(t *testing.T) {
	expired := ""
	r := &repoMock{
		markExpiredFn: func(ctx context.Context, invoiceID string) error {
			expired = invoiceID
			return nil
		},
	}
	s := newTestService(r, &gatewayMock{}, &rewardsMock{}, due)

	require.NoError(t, s.HandleGatewayWebhook(context.Background(), "", []byte(`{"id":"inv-1","status":"EXPIRED"}`)))
	require.Equal(t, "inv-1", expired)
}

func TestMyFees_DerivesOverdue(t *testing.T) {
	now := due.Add(48 * time.Hour)
	r := &repoMock{
		listFn: func(ctx context.Context, userID int64) ([]model.Fee, error) {
			return []model.Fee{
				{ID: 1, Status: model.FeePending, DueAt: due},
				{ID: 2, Status: model.FeePending, DueAt: now.Add(time.Hour)},
				{ID: 3, Status: model.FeePaid, DueAt: due},
			}, nil
		},
	}
	s := newTestService(r, &gatewayMock{}, &rewardsMock{}, now)

	fees, err := s.MyFees(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.FeeOverdue, fees[0].Status)
	require.Equal(t, model.FeePending, fees[1].Status)
	require.Equal(t, model.FeePaid, fees[2].Status)
}
