package portalsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

const honorariosPath = "/api/v1/honorario/"

// HonorarioFilter narrows a honorario listing. Zero values are omitted from
// the query.
type HonorarioFilter struct {
	Status      HonorarioStatus
	UserID      int64
	RazonSocial string // matches the owning client's razon_social
	ListOptions
}

func (f HonorarioFilter) query() url.Values {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.UserID > 0 {
		query.Set("user", strconv.FormatInt(f.UserID, 10))
	}
	if f.RazonSocial != "" {
		query.Set("user__razon_social", f.RazonSocial)
	}
	f.apply(query)
	return query
}

// CreateHonorarioInput carries a new invoice and its PDF. File is optional;
// when present it is uploaded as multipart form data.
type CreateHonorarioInput struct {
	UserID int64
	Title  string
	Amount decimal.Decimal
	File   *Attachment
}

// Validate applies the client-side field rules before any network call.
func (in *CreateHonorarioInput) Validate() error {
	if in.UserID <= 0 {
		return errors.New("portalsdk: honorario requires a client")
	}
	if in.Title == "" {
		return errors.New("portalsdk: honorario requires a title")
	}
	if !in.Amount.IsPositive() {
		return errors.New("portalsdk: honorario amount must be positive")
	}
	if in.File != nil {
		return in.File.Validate()
	}
	return nil
}

// ListHonorarios returns one page of invoices matching the filter.
func (c *SDKClient) ListHonorarios(ctx context.Context, filter HonorarioFilter) (*Page[Honorario], error) {
	return listPage[Honorario](ctx, c, honorariosPath, filter.query())
}

// GetHonorario returns a single invoice by id.
func (c *SDKClient) GetHonorario(ctx context.Context, id int64) (*Honorario, error) {
	var honorario Honorario
	if err := c.getJSON(ctx, c.url(honorariosPath)+itemPath(id), nil, &honorario); err != nil {
		return nil, err
	}
	return &honorario, nil
}

// CreateHonorario issues a new invoice, uploading the PDF when supplied.
func (c *SDKClient) CreateHonorario(ctx context.Context, in CreateHonorarioInput) (*Honorario, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"user":   strconv.FormatInt(in.UserID, 10),
		"title":  in.Title,
		"amount": in.Amount.String(),
	}
	body, contentType, err := buildMultipart(fields, map[string]*Attachment{"honorario": in.File})
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuth(ctx, http.MethodPost, c.url(honorariosPath), body, contentType)
	if err != nil {
		return nil, err
	}

	var honorario Honorario
	if err := decodeJSON(resp, &honorario, http.StatusCreated); err != nil {
		return nil, err
	}
	return &honorario, nil
}

// UpdateHonorario replaces an invoice, re-uploading the PDF when supplied.
func (c *SDKClient) UpdateHonorario(ctx context.Context, id int64, in CreateHonorarioInput) (*Honorario, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"user":   strconv.FormatInt(in.UserID, 10),
		"title":  in.Title,
		"amount": in.Amount.String(),
	}
	body, contentType, err := buildMultipart(fields, map[string]*Attachment{"honorario": in.File})
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuth(ctx, http.MethodPut, c.url(honorariosPath)+itemPath(id), body, contentType)
	if err != nil {
		return nil, err
	}

	var honorario Honorario
	if err := decodeJSON(resp, &honorario, http.StatusOK); err != nil {
		return nil, err
	}
	return &honorario, nil
}

// PatchHonorario updates only the given fields of an invoice.
func (c *SDKClient) PatchHonorario(ctx context.Context, id int64, fields map[string]any) (*Honorario, error) {
	var honorario Honorario
	err := c.sendJSON(ctx, http.MethodPatch, c.url(honorariosPath)+itemPath(id), fields, &honorario, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &honorario, nil
}

// DeleteHonorario removes an invoice.
func (c *SDKClient) DeleteHonorario(ctx context.Context, id int64) error {
	return c.delete(ctx, c.url(honorariosPath)+itemPath(id))
}
