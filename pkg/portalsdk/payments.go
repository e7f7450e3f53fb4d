package portalsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

const paymentsPath = "/api/v1/payment/"

var (
	// ErrTicketRequired reports a transferencia payment submitted without
	// its comprobante attachment.
	ErrTicketRequired = errors.New("portalsdk: transferencia payments require a ticket PDF")

	// ErrInvalidAmount reports a non-positive payment amount.
	ErrInvalidAmount = errors.New("portalsdk: payment amount must be positive")
)

// PaymentFilter narrows a payment listing. Zero values are omitted from the
// query.
type PaymentFilter struct {
	UserID      int64
	RazonSocial string
	Date        Date
	Method      PaymentMethod
	ListOptions
}

func (f PaymentFilter) query() url.Values {
	query := url.Values{}
	if f.UserID > 0 {
		query.Set("user", strconv.FormatInt(f.UserID, 10))
	}
	if f.RazonSocial != "" {
		query.Set("user__razon_social", f.RazonSocial)
	}
	if !f.Date.IsZero() {
		query.Set("payment_date", f.Date.String())
	}
	if f.Method != "" {
		query.Set("payment_method", string(f.Method))
	}
	f.apply(query)
	return query
}

// CreatePaymentInput carries a payment to record against an invoice.
type CreatePaymentInput struct {
	HonorarioID int64
	UserID      int64
	Method      PaymentMethod
	Amount      decimal.Decimal

	// Ticket is the payment proof; required for transferencia.
	Ticket *Attachment
}

// Validate applies the client-side rules before any network call: a
// positive amount, a known method, and a comprobante for transferencias.
// The ceiling against the invoice's outstanding amount is enforced
// server-side.
func (in *CreatePaymentInput) Validate() error {
	if in.HonorarioID <= 0 {
		return errors.New("portalsdk: payment requires an honorario")
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !in.Method.Valid() {
		return errors.New("portalsdk: unknown payment method")
	}
	if in.Method == MethodTransferencia && in.Ticket == nil {
		return ErrTicketRequired
	}
	if in.Ticket != nil {
		return in.Ticket.Validate()
	}
	return nil
}

// ListPayments returns one page of payments matching the filter.
func (c *SDKClient) ListPayments(ctx context.Context, filter PaymentFilter) (*Page[Payment], error) {
	return listPage[Payment](ctx, c, paymentsPath, filter.query())
}

// GetPayment returns a single payment by id.
func (c *SDKClient) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	if err := c.getJSON(ctx, c.url(paymentsPath)+itemPath(id), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CreatePayment records a payment against an invoice. The server
// accumulates paid_amount and derives the invoice status; the client never
// computes either.
func (c *SDKClient) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"honorario":      strconv.FormatInt(in.HonorarioID, 10),
		"user":           strconv.FormatInt(in.UserID, 10),
		"payment_method": string(in.Method),
		"payment_amount": in.Amount.String(),
	}
	body, contentType, err := buildMultipart(fields, map[string]*Attachment{"ticket_pdf": in.Ticket})
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuth(ctx, http.MethodPost, c.url(paymentsPath), body, contentType)
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := decodeJSON(resp, &payment, http.StatusCreated); err != nil {
		return nil, err
	}
	return &payment, nil
}
