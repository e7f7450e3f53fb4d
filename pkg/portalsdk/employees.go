package portalsdk

import (
	"context"
	"net/http"
	"net/url"
)

const employeesPath = "/api/employees/"

// EmployeeInput carries the writable fields of an employee account.
// Password is only sent on create; the API never echoes it back.
type EmployeeInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CUIT      string `json:"cuit"`
	Celular   int64  `json:"celular,omitempty"`
}

// ListEmployees returns one page of employee accounts.
func (c *SDKClient) ListEmployees(ctx context.Context, opts ListOptions) (*Page[Employee], error) {
	query := url.Values{}
	opts.apply(query)
	return listPage[Employee](ctx, c, employeesPath, query)
}

// GetEmployee returns a single employee by id.
func (c *SDKClient) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	var employee Employee
	if err := c.getJSON(ctx, c.url(employeesPath)+itemPath(id), nil, &employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// CreateEmployee registers a new employee account.
func (c *SDKClient) CreateEmployee(ctx context.Context, in EmployeeInput) (*Employee, error) {
	var employee Employee
	err := c.sendJSON(ctx, http.MethodPost, c.url(employeesPath), in, &employee, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// UpdateEmployee replaces an employee account.
func (c *SDKClient) UpdateEmployee(ctx context.Context, id int64, in EmployeeInput) (*Employee, error) {
	var employee Employee
	err := c.sendJSON(ctx, http.MethodPut, c.url(employeesPath)+itemPath(id), in, &employee, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// PatchEmployee updates only the given fields of an employee account.
func (c *SDKClient) PatchEmployee(ctx context.Context, id int64, fields map[string]any) (*Employee, error) {
	var employee Employee
	err := c.sendJSON(ctx, http.MethodPatch, c.url(employeesPath)+itemPath(id), fields, &employee, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// DeactivateEmployee soft-deletes an employee by flipping is_active to
// false. Employees are never hard-deleted.
func (c *SDKClient) DeactivateEmployee(ctx context.Context, id int64) (*Employee, error) {
	return c.PatchEmployee(ctx, id, map[string]any{"is_active": false})
}
