package views

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Employees dispatches the employee verbs: list (default), get, create,
// update, deactivate. Employees are soft deleted, so there is no delete
// verb.
func (v *Views) Employees(ctx context.Context, args []string) error {
	verb, rest := splitVerb(args)
	switch verb {
	case "", "list":
		return v.listEmployees(ctx, rest)
	case "get":
		return v.getEmployee(ctx, rest)
	case "create":
		return v.createEmployee(ctx, rest)
	case "update":
		return v.updateEmployee(ctx, rest)
	case "deactivate":
		return v.deactivateEmployee(ctx, rest)
	default:
		return fmt.Errorf("unknown employees verb %q", verb)
	}
}

var employeeHeader = []string{"ID", "USERNAME", "NAME", "EMAIL", "CUIT", "ACTIVE"}

func employeeRows(employees []portalsdk.Employee) [][]string {
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Username,
			e.FirstName + " " + e.LastName,
			e.Email,
			e.CUIT,
			strconv.FormatBool(e.IsActive),
		})
	}
	return rows
}

func (v *Views) listEmployees(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("employees list", flag.ContinueOnError)
	fs.SetOutput(v.out)
	page := fs.Int("page", 0, "page number")
	pageSize := fs.Int("page-size", 0, "results per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, done := v.fetchCtx(ctx, "employees")
	defer done()
	finish := v.loading("employees")
	defer finish()

	current, err := v.sdk.ListEmployees(ctx, portalsdk.ListOptions{Page: *page, PageSize: *pageSize})
	if err != nil {
		return err
	}

	v.table(employeeHeader, employeeRows(current.Results))
	v.pageFooter(current.Count, len(current.Results), current.HasNext())
	return nil
}

func (v *Views) getEmployee(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	employee, err := v.sdk.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	v.table(employeeHeader, employeeRows([]portalsdk.Employee{*employee}))
	return nil
}

func employeeInputFlags(fs *flag.FlagSet, passwordRequired bool) func() (portalsdk.EmployeeInput, error) {
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "initial password")
	email := fs.String("email", "", "email address")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	cuit := fs.String("cuit", "", "tax id")
	celular := fs.Int64("celular", 0, "phone number")

	return func() (portalsdk.EmployeeInput, error) {
		var in portalsdk.EmployeeInput
		if *username == "" {
			return in, fmt.Errorf("-username is required")
		}
		if passwordRequired && *password == "" {
			return in, fmt.Errorf("-password is required")
		}
		return portalsdk.EmployeeInput{
			Username:  *username,
			Password:  *password,
			Email:     *email,
			FirstName: *firstName,
			LastName:  *lastName,
			CUIT:      *cuit,
			Celular:   *celular,
		}, nil
	}
}

func (v *Views) createEmployee(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("employees create", flag.ContinueOnError)
	fs.SetOutput(v.out)
	input := employeeInputFlags(fs, true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	in, err := input()
	if err != nil {
		return err
	}

	employee, err := v.sdk.CreateEmployee(ctx, in)
	if err != nil {
		return err
	}
	v.printf("created employee %d (%s)\n", employee.ID, employee.Username)
	return nil
}

func (v *Views) updateEmployee(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("employees update", flag.ContinueOnError)
	fs.SetOutput(v.out)
	id := fs.Int64("id", 0, "employee id")
	input := employeeInputFlags(fs, false)
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

	employee, err := v.sdk.UpdateEmployee(ctx, *id, in)
	if err != nil {
		return err
	}
	v.printf("updated employee %d (%s)\n", employee.ID, employee.Username)
	return nil
}

func (v *Views) deactivateEmployee(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	employee, err := v.sdk.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !v.confirm(fmt.Sprintf("deactivate employee %d (%s)?", employee.ID, employee.Username)) {
		v.printf("aborted\n")
		return nil
	}

	if _, err := v.sdk.DeactivateEmployee(ctx, id); err != nil {
		return err
	}
	v.printf("deactivated employee %d\n", id)
	return nil
}
