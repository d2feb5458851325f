// Package ocr uploads billing documents to the extraction service and
// returns the structured result for each one.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/MarcoMadridG27/Thesaurus/internal/apiclient"
	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

const serviceName = "extraction"

// Document is one file to extract.
type Document struct {
	Name    string
	Content []byte
}

// ReadDocument loads a document from disk.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Content: data}, nil
}

// Client calls the extraction service.
type Client struct {
	api *apiclient.Client
}

// NewClient creates an extraction client rooted at base.
func NewClient(base string, httpClient *http.Client) *Client {
	return &Client{api: apiclient.New(serviceName, base, httpClient)}
}

type uploadResponse struct {
	ID model.FlexString `json:"id"`
}

// Process uploads one document and runs extraction on it.
func (c *Client) Process(ctx context.Context, doc Document, tenantID string, kind model.DocKind) (*model.ExtractionResult, error) {
	id, err := c.upload(ctx, doc, tenantID, kind)
	if err != nil {
		return nil, err
	}

	var result model.ExtractionResult
	err = c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "ocr/process/" + url.PathEscape(id),
		Op:     "process",
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.DocKind == "" {
		result.DocKind = model.FlexString(kind)
	}
	slog.Debug("Document extracted", "file", doc.Name, "document_id", id, "invoice_id", string(result.InvoiceID))
	return &result, nil
}

func (c *Client) upload(ctx context.Context, doc Document, tenantID string, kind model.DocKind) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", doc.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.WriteField("tenant_id", tenantID); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.WriteField("doc_kind", string(kind)); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	var resp uploadResponse
	err = c.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "documents/upload",
		Op:          "upload",
		Raw:         &buf,
		ContentType: mw.FormDataContentType(),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &common.ServiceError{Service: serviceName, Op: "upload", StatusCode: http.StatusOK, Message: "upload response has no document id"}
	}
	return string(resp.ID), nil
}
