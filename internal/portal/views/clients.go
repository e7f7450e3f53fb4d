package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Clients dispatches the client-account verbs: list (default), get, create,
// update, delete.
func (v *Views) Clients(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "list":
		return v.listClients(ctx, rest)
	case "get":
		return v.getClient(ctx, rest)
	case "create":
		return v.createClient(ctx, rest)
	case "update":
		return v.updateClient(ctx, rest)
	case "delete":
		return v.deleteClient(ctx, rest)
	default:
		return fmt.Errorf("unknown clients verb %q", verb)
	}
}

func (v *Views) listClients(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clients list", flag.ContinueOnError)
	fs.SetOutput(v.out)
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "results per page")
	all := fs.Bool("all", false, "follow pagination to the end")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, done := v.fetchCtx(ctx, "clients")
	defer done()
	finish := v.loading("clients")
	defer finish()

	current, err := v.sdk.ListClients(ctx, portalsdk.ListOptions{Page: *page, PageSize: *pageSize})
	if err != nil {
		return err
	}

	rows := clientRows(current.Results)
	shown := len(current.Results)
	for *all && current.HasNext() {
		if current, err = portalsdk.NextPage(ctx, v.sdk, current); err != nil {
			return err
		}
		rows = append(rows, clientRows(current.Results)...)
		shown += len(current.Results)
	}

	v.table([]string{"ID", "RAZON SOCIAL", "CUIT", "EMAIL", "DEUDA", "IMPORTE", "PAGO", "MEDIO"}, rows)
	v.pageFooter(current.Count, shown, current.HasNext())
	return nil
}

func clientRows(clients []portalsdk.ClientAccount) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.RazonSocial,
			c.CUIT,
			c.Email,
			c.Deuda.StringFixed(2),
			c.Importe.StringFixed(2),
			string(c.Pago),
			c.MedioPago,
		})
	}
	return rows
}

func (v *Views) getClient(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	client, err := v.sdk.GetClient(ctx, id)
	if err != nil {
		return err
	}
	v.table(
		[]string{"ID", "RAZON SOCIAL", "CUIT", "EMAIL", "DEUDA", "IMPORTE", "PAGO", "MEDIO"},
		clientRows([]portalsdk.ClientAccount{*client}),
	)
	return nil
}

func clientInputFlags(fs *flag.FlagSet) func() (portalsdk.ClientInput, error) {
	razonSocial := fs.String("razon-social", "", "legal name")
	cuit := fs.String("cuit", "", "tax id")
	email := fs.String("email", "", "email address")
	celular := fs.Int64("celular", 0, "phone number")
	deuda := fs.String("deuda", "0", "outstanding debt")
	importe := fs.String("importe", "0", "monthly amount")
	medioPago := fs.String("medio-pago", "", "payment medium")

	return func() (portalsdk.ClientInput, error) {
		var in portalsdk.ClientInput
		if *razonSocial == "" {
			return in, fmt.Errorf("-razon-social is required")
		}
		if *cuit == "" {
			return in, fmt.Errorf("-cuit is required")
		}

		deudaDec, err := decimal.NewFromString(*deuda)
		if err != nil {
			return in, fmt.Errorf("invalid -deuda: %w", err)
		}
		importeDec, err := decimal.NewFromString(*importe)
		if err != nil {
			return in, fmt.Errorf("invalid -importe: %w", err)
		}

		return portalsdk.ClientInput{
			RazonSocial: *razonSocial,
			CUIT:        *cuit,
			Email:       *email,
			Celular:     *celular,
			Deuda:       deudaDec,
			Importe:     importeDec,
			MedioPago:   *medioPago,
		}, nil
	}
}

func (v *Views) createClient(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clients create", flag.ContinueOnError)
	fs.SetOutput(v.out)
	input := clientInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	in, err := input()
	if err != nil {
		return err
	}

	client, err := v.sdk.CreateClient(ctx, in)
	if err != nil {
		return err
	}
	v.printf("created client %d (%s)\n", client.ID, client.RazonSocial)
	return nil
}

func (v *Views) updateClient(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clients update", flag.ContinueOnError)
	fs.SetOutput(v.out)
	id := fs.Int64("id", 0, "client id")
	input := clientInputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("-id is required")
	}
	in, err := input()
	if err != nil {
		return err
	}

	client, err := v.sdk.UpdateClient(ctx, *id, in)
	if err != nil {
		return err
	}
	v.printf("updated client %d (%s)\n", client.ID, client.RazonSocial)
	return nil
}

func (v *Views) deleteClient(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	client, err := v.sdk.GetClient(ctx, id)
	if err != nil {
		return err
	}
	if !v.confirm(fmt.Sprintf("delete client %d (%s)?", client.ID, client.RazonSocial)) {
		v.printf("aborted\n")
		return nil
	}

	if err := v.sdk.DeleteClient(ctx, id); err != nil {
		return err
	}
	v.printf("deleted client %d\n", id)
	return nil
}

// splitVerb separates the leading verb from its arguments.
func splitVerb(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}

// idArg parses the single positional id argument.
func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
