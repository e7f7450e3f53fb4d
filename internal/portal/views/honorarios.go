package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Honorarios dispatches the invoice verbs: list (default), get, create,
// delete. A client sees only their own invoices; the API scopes the listing
// by the caller's token.
func (v *Views) Honorarios(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "list":
		return v.listHonorarios(ctx, rest)
	case "get":
		return v.getHonorario(ctx, rest)
	case "create":
		return v.createHonorario(ctx, rest)
	case "update":
		return v.updateHonorario(ctx, rest)
	case "delete":
		return v.deleteHonorario(ctx, rest)
	default:
		return fmt.Errorf("unknown honorarios verb %q", verb)
	}
}

var honorarioHeader = []string{"ID", "DATE", "TITLE", "AMOUNT", "PAID", "PENDING", "STATUS"}

func honorarioRows(honorarios []portalsdk.Honorario) [][]string {
	rows := make([][]string, 0, len(honorarios))
	for _, h := range honorarios {
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10),
			h.Date.String(),
			h.Title,
			h.Amount.StringFixed(2),
			h.PaidAmount.StringFixed(2),
			h.Outstanding().StringFixed(2),
			string(h.Status),
		})
	}
	return rows
}

func (v *Views) listHonorarios(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("honorarios list", flag.ContinueOnError)
	fs.SetOutput(v.out)
	status := fs.String("status", "", "filter by status (pendiente, pagado, vencido)")
	user := fs.Int64("user", 0, "filter by client id")
	razonSocial := fs.String("razon-social", "", "filter by client legal name")
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, done := v.fetchCtx(ctx, "honorarios")
	defer done()
	finish := v.loading("honorarios")
	defer finish()

	current, err := v.sdk.ListHonorarios(ctx, portalsdk.HonorarioFilter{
		Status:      portalsdk.HonorarioStatus(*status),
		UserID:      *user,
		RazonSocial: *razonSocial,
		ListOptions: portalsdk.ListOptions{Page: *page, PageSize: *pageSize},
	})
	if err != nil {
		return err
	}

	v.table(honorarioHeader, honorarioRows(current.Results))
	v.pageFooter(current.Count, len(current.Results), current.HasNext())
	return nil
}

func (v *Views) getHonorario(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	h, err := v.sdk.GetHonorario(ctx, id)
	if err != nil {
		return err
	}
	v.table(honorarioHeader, honorarioRows([]portalsdk.Honorario{*h}))
	if h.File != "" {
		v.printf("pdf: %s\n", h.File)
	}
	return nil
}

func (v *Views) createHonorario(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("honorarios create", flag.ContinueOnError)
	fs.SetOutput(v.out)
	user := fs.Int64("user", 0, "client id")
	title := fs.String("title", "", "invoice title")
	amount := fs.String("amount", "", "invoice amount")
	file := fs.String("file", "", "path to the invoice PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amountDec, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}

	in := portalsdk.CreateHonorarioInput{
		UserID: *user,
		Title:  *title,
		Amount: amountDec,
	}
	if *file != "" {
		if in.File, err = portalsdk.AttachmentFromFile(*file); err != nil {
			return err
		}
	}

	h, err := v.sdk.CreateHonorario(ctx, in)
	if err != nil {
		return err
	}
	v.printf("created honorario %d (%s, %s)\n", h.ID, h.Title, h.Amount.StringFixed(2))
	return nil
}

func (v *Views) updateHonorario(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("honorarios update", flag.ContinueOnError)
	fs.SetOutput(v.out)
	id := fs.Int64("id", 0, "honorario id")
	title := fs.String("title", "", "invoice title")
	amount := fs.String("amount", "", "invoice amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}

	// Only the flags actually given travel in the PATCH.
	fields := map[string]any{}
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			fields["title"] = *title
		case "amount":
			if _, err := decimal.NewFromString(*amount); err != nil {
				parseErr = fmt.Errorf("invalid -amount: %w", err)
				return
			}
			fields["amount"] = *amount
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update")
	}

	h, err := v.sdk.PatchHonorario(ctx, *id, fields)
	if err != nil {
		return err
	}
	v.printf("updated honorario %d (%s)\n", h.ID, h.Title)
	return nil
}

func (v *Views) deleteHonorario(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	h, err := v.sdk.GetHonorario(ctx, id)
	if err != nil {
		return err
	}
	if !v.confirm(fmt.Sprintf("delete honorario %d (%s)?", h.ID, h.Title)) {
		v.printf("aborted\n")
		return nil
	}

	if err := v.sdk.DeleteHonorario(ctx, id); err != nil {
		return err
	}
	v.printf("deleted honorario %d\n", id)
	return nil
}
