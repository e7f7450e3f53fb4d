package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Payments dispatches the payment verbs: list (default), get, create.
func (v *Views) Payments(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "list":
		return v.listPayments(ctx, rest)
	case "get":
		return v.getPayment(ctx, rest)
	case "create":
		return v.createPayment(ctx, rest)
	default:
		return fmt.Errorf("unknown payments verb %q", verb)
	}
}

var paymentHeader = []string{"ID", "HONORARIO", "DATE", "AMOUNT", "METHOD", "TICKET"}

func paymentRows(payments []portalsdk.Payment) [][]string {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			strconv.FormatInt(p.HonorarioID, 10),
			p.PaymentDate.String(),
			p.PaymentAmount.StringFixed(2),
			string(p.PaymentMethod),
			p.TicketPDF,
		})
	}
	return rows
}

func (v *Views) listPayments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payments list", flag.ContinueOnError)
	fs.SetOutput(v.out)
	user := fs.Int64("user", 0, "filter by client id")
	razonSocial := fs.String("razon-social", "", "filter by client legal name")
	date := fs.String("date", "", "filter by payment date (YYYY-MM-DD)")
	method := fs.String("method", "", "filter by payment method")
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := portalsdk.PaymentFilter{
		UserID:      *user,
		RazonSocial: *razonSocial,
		Method:      portalsdk.PaymentMethod(*method),
		ListOptions: portalsdk.ListOptions{Page: *page, PageSize: *pageSize},
	}
	if *date != "" {
		day, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		filter.Date = portalsdk.Date{Time: day}
	}

	ctx, done := v.fetchCtx(ctx, "payments")
	defer done()
	finish := v.loading("payments")
	defer finish()

	current, err := v.sdk.ListPayments(ctx, filter)
	if err != nil {
		return err
	}

	v.table(paymentHeader, paymentRows(current.Results))
	v.pageFooter(current.Count, len(current.Results), current.HasNext())
	return nil
}

func (v *Views) getPayment(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	p, err := v.sdk.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	v.table(paymentHeader, paymentRows([]portalsdk.Payment{*p}))
	return nil
}

func (v *Views) createPayment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payments create", flag.ContinueOnError)
	fs.SetOutput(v.out)
	honorarioID := fs.Int64("honorario", 0, "invoice id the payment settles")
	user := fs.Int64("user", 0, "paying client id")
	amount := fs.String("amount", "", "payment amount")
	method := fs.String("method", "", "payment method (transferencia, efectivo, cheque)")
	ticket := fs.String("ticket", "", "path to the comprobante PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amountDec, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}

	// The invoice's pending balance caps the payment; checking here spares
	// the round trip the API would reject anyway.
	h, err := v.sdk.GetHonorario(ctx, *honorarioID)
	if err != nil {
		return fmt.Errorf("failed to load honorario %d: %w", *honorarioID, err)
	}
	if amountDec.GreaterThan(h.Outstanding()) {
		return fmt.Errorf("amount %s exceeds the pending balance %s",
			amountDec.StringFixed(2), h.Outstanding().StringFixed(2))
	}

	in := portalsdk.CreatePaymentInput{
		HonorarioID: *honorarioID,
		UserID:      *user,
		Method:      portalsdk.PaymentMethod(*method),
		Amount:      amountDec,
	}
	if *ticket != "" {
		if in.Ticket, err = portalsdk.AttachmentFromFile(*ticket); err != nil {
			return err
		}
	}

	p, err := v.sdk.CreatePayment(ctx, in)
	if err != nil {
		return err
	}
	v.printf("recorded payment %d of %s against honorario %d\n",
		p.ID, p.PaymentAmount.StringFixed(2), p.HonorarioID)
	return nil
}
