package portalsdk

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxAttachmentSize is the largest attachment accepted client-side. The API
// re-validates authoritatively.
const MaxAttachmentSize = 5 << 20 // 5 MiB

var (
	// ErrNotPDF reports an attachment whose content is not a PDF.
	ErrNotPDF = errors.New("portalsdk: attachment must be a PDF")

	// ErrAttachmentTooLarge reports an attachment over MaxAttachmentSize.
	ErrAttachmentTooLarge = fmt.Errorf("portalsdk: attachment exceeds %d bytes", MaxAttachmentSize)
)

// Attachment is a file to be uploaded with a multipart request. Attachments
// are held in memory; MaxAttachmentSize keeps that bounded and lets the
// transport replay the body on its one 401 retry.
type Attachment struct {
	Filename string
	Content  []byte
}

// AttachmentFromFile loads path and validates it as an uploadable PDF.
func AttachmentFromFile(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a := &Attachment{Filename: filepath.Base(path), Content: content}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the attachment's size, extension, and sniffed content
// type before any network call is made.
func (a *Attachment) Validate() error {
	if len(a.Content) > MaxAttachmentSize {
		return ErrAttachmentTooLarge
	}
	if !strings.HasSuffix(strings.ToLower(a.Filename), ".pdf") {
		return ErrNotPDF
	}
	if http.DetectContentType(a.Content) != "application/pdf" {
		return ErrNotPDF
	}
	return nil
}

// buildMultipart assembles a multipart/form-data body from plain fields and
// attachments. It returns the body and the content type carrying the
// boundary.
func buildMultipart(fields map[string]string, files map[string]*Attachment) (*bytes.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}

	for name, a := range files {
		if a == nil {
			continue
		}
		if err := a.Validate(); err != nil {
			return nil, "", err
		}
		part, err := w.CreateFormFile(name, a.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", name, err)
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %q: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return bytes.NewReader(buf.Bytes()), w.FormDataContentType(), nil
}
