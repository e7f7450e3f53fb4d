package portalsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

const documentsPath = "/api/v1/documentos/"

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	UserID int64
	ListOptions
}

func (f DocumentFilter) query() url.Values {
	query := url.Values{}
	if f.UserID > 0 {
		query.Set("user", strconv.FormatInt(f.UserID, 10))
	}
	f.apply(query)
	return query
}

// CreateDocumentInput carries a document to file for a user.
type CreateDocumentInput struct {
	UserID int64
	Type   string
	File   *Attachment
}

// Validate applies the client-side field rules before any network call.
func (in *CreateDocumentInput) Validate() error {
	if in.UserID <= 0 {
		return errors.New("portalsdk: document requires a user")
	}
	if in.File == nil {
		return errors.New("portalsdk: document requires a file")
	}
	return in.File.Validate()
}

// ListDocuments returns one page of documents matching the filter.
func (c *SDKClient) ListDocuments(ctx context.Context, filter DocumentFilter) (*Page[Document], error) {
	return listPage[Document](ctx, c, documentsPath, filter.query())
}

// GetDocument returns a single document by id.
func (c *SDKClient) GetDocument(ctx context.Context, id int64) (*Document, error) {
	var document Document
	if err := c.getJSON(ctx, c.url(documentsPath)+itemPath(id), nil, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// CreateDocument files a new document, uploading its PDF.
func (c *SDKClient) CreateDocument(ctx context.Context, in CreateDocumentInput) (*Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"user": strconv.FormatInt(in.UserID, 10),
		"type": in.Type,
	}
	body, contentType, err := buildMultipart(fields, map[string]*Attachment{"file": in.File})
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuth(ctx, http.MethodPost, c.url(documentsPath), body, contentType)
	if err != nil {
		return nil, err
	}

	var document Document
	if err := decodeJSON(resp, &document, http.StatusCreated); err != nil {
		return nil, err
	}
	return &document, nil
}

// UpdateDocument replaces a document, re-uploading its PDF.
func (c *SDKClient) UpdateDocument(ctx context.Context, id int64, in CreateDocumentInput) (*Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"user": strconv.FormatInt(in.UserID, 10),
		"type": in.Type,
	}
	body, contentType, err := buildMultipart(fields, map[string]*Attachment{"file": in.File})
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuth(ctx, http.MethodPut, c.url(documentsPath)+itemPath(id), body, contentType)
	if err != nil {
		return nil, err
	}

	var document Document
	if err := decodeJSON(resp, &document, http.StatusOK); err != nil {
		return nil, err
	}
	return &document, nil
}

// PatchDocument updates only the given fields of a document.
func (c *SDKClient) PatchDocument(ctx context.Context, id int64, fields map[string]any) (*Document, error) {
	var document Document
	err := c.sendJSON(ctx, http.MethodPatch, c.url(documentsPath)+itemPath(id), fields, &document, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// DeleteDocument removes a document.
func (c *SDKClient) DeleteDocument(ctx context.Context, id int64) error {
	return c.delete(ctx, c.url(documentsPath)+itemPath(id))
}
