package gatewayrepo

import "errors"

// ErrBadCallbackToken rejects webhook deliveries whose token does not match.
var ErrBadCallbackToken = errors.New("gateway: callback token mismatch")

type CreateInvoiceReq struct {
	ExternalID  string
	Amount      float64
	PayerEmail  string
	Description string
	ExpirySec   int
}

type CreateInvoiceResp struct {
	InvoiceID  string
	InvoiceURL string
	ExpiresAt  string
}

type Repo interface {
	CreateInvoice(req CreateInvoiceReq) (*CreateInvoiceResp, error)
	VerifyCallbackToken(token string) error
}
