package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Profile shows or updates the caller's own account.
func (v *Views) Profile(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "show":
		return v.showProfile(ctx, rest)
	case "update":
		return v.updateProfile(ctx, rest)
	default:
		return fmt.Errorf("unknown profile verb %q", verb)
	}
}

func (v *Views) showProfile(ctx context.Context, args []string) error {
	p, err := v.sdk.GetProfile(ctx)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"id", strconv.FormatInt(p.ID, 10)},
		{"username", p.Username},
		{"role", string(p.Role)},
		{"name", p.FirstName + " " + p.LastName},
		{"email", p.Email},
		{"cuit", p.CUIT},
	}
	if p.RazonSocial != "" {
		rows = append(rows, []string{"razon social", p.RazonSocial})
	}
	if p.Celular != 0 {
		rows = append(rows, []string{"celular", strconv.FormatInt(p.Celular, 10)})
	}
	v.table([]string{"FIELD", "VALUE"}, rows)
	return nil
}

func (v *Views) updateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile update", flag.ContinueOnError)
	fs.SetOutput(v.out)
	email := fs.String("email", "", "email address")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	celular := fs.Int64("celular", 0, "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only the flags actually given travel in the PATCH.
	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "email":
			fields["email"] = *email
		case "first-name":
			fields["first_name"] = *firstName
		case "last-name":
			fields["last_name"] = *lastName
		case "celular":
			fields["celular"] = *celular
		}
	})
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update")
	}

	p, err := v.sdk.PatchProfile(ctx, fields)
	if err != nil {
		return err
	}
	v.printf("profile updated (%s)\n", p.Username)
	return nil
}

// Dashboard is the landing page for the logged-in user's role.
func (v *Views) Dashboard(ctx context.Context, args []string) error {
	user, ok := v.session.CurrentUser()
	if !ok {
		v.printf("not logged in\n")
		return nil
	}

	v.printf("%s portal: %s\n\n", user.Role, user.Username)

	switch user.Role {
	case portalsdk.RoleClient:
		return v.clientDashboard(ctx, user)
	default:
		return v.staffDashboard(ctx)
	}
}

// clientDashboard lists the client's own pending invoices; the API scopes
// the listing to the caller.
func (v *Views) clientDashboard(ctx context.Context, user portalsdk.User) error {
	page, err := v.sdk.ListHonorarios(ctx, portalsdk.HonorarioFilter{
		Status: portalsdk.HonorarioPendiente,
	})
	if err != nil {
		return err
	}
	if len(page.Results) == 0 {
		v.printf("no pending honorarios\n")
		return nil
	}

	v.printf("pending honorarios:\n")
	v.table(honorarioHeader, honorarioRows(page.Results))
	return nil
}

// staffDashboard summarizes the collections a staff member works with.
func (v *Views) staffDashboard(ctx context.Context) error {
	clients, err := v.sdk.ListClients(ctx, portalsdk.ListOptions{PageSize: 1})
	if err != nil {
		return err
	}
	pending, err := v.sdk.ListHonorarios(ctx, portalsdk.HonorarioFilter{
		Status:      portalsdk.HonorarioPendiente,
		ListOptions: portalsdk.ListOptions{PageSize: 1},
	})
	if err != nil {
		return err
	}

	v.table([]string{"COLLECTION", "COUNT"}, [][]string{
		{"clients", strconv.Itoa(clients.Count)},
		{"pending honorarios", strconv.Itoa(pending.Count)},
	})
	return nil
}
