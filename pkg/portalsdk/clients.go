package portalsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

const clientsPath = "/api/clients/"

// ClientInput carries the writable fields of a client account.
type ClientInput struct {
	RazonSocial string          `json:"razon_social"`
	CUIT        string          `json:"cuit"`
	Celular     int64           `json:"celular,omitempty"`
	Email       string          `json:"email"`
	Deuda       decimal.Decimal `json:"deuda"`
	Importe     decimal.Decimal `json:"importe"`
	Pago        PagoStatus      `json:"pago,omitempty"`
	MedioPago   string          `json:"medio_pago,omitempty"`
}

// ListClients returns one page of client accounts.
func (c *SDKClient) ListClients(ctx context.Context, opts ListOptions) (*Page[ClientAccount], error) {
	query := url.Values{}
	opts.apply(query)
	return listPage[ClientAccount](ctx, c, clientsPath, query)
}

// GetClient returns a single client account by id.
func (c *SDKClient) GetClient(ctx context.Context, id int64) (*ClientAccount, error) {
	var client ClientAccount
	if err := c.getJSON(ctx, c.url(clientsPath)+itemPath(id), nil, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// CreateClient registers a new client account.
func (c *SDKClient) CreateClient(ctx context.Context, in ClientInput) (*ClientAccount, error) {
	var client ClientAccount
	err := c.sendJSON(ctx, http.MethodPost, c.url(clientsPath), in, &client, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient replaces a client account.
func (c *SDKClient) UpdateClient(ctx context.Context, id int64, in ClientInput) (*ClientAccount, error) {
	var client ClientAccount
	err := c.sendJSON(ctx, http.MethodPut, c.url(clientsPath)+itemPath(id), in, &client, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// PatchClient updates only the given fields of a client account.
func (c *SDKClient) PatchClient(ctx context.Context, id int64, fields map[string]any) (*ClientAccount, error) {
	var client ClientAccount
	err := c.sendJSON(ctx, http.MethodPatch, c.url(clientsPath)+itemPath(id), fields, &client, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes a client account.
func (c *SDKClient) DeleteClient(ctx context.Context, id int64) error {
	return c.delete(ctx, c.url(clientsPath)+itemPath(id))
}

// itemPath renders the detail-route suffix for an id, trailing slash
// included as the API requires.
func itemPath(id int64) string {
	return fmt.Sprintf("%d/", id)
}
