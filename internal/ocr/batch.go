package ocr

import (
	"context"
	"log/slog"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// BatchSuccess is one extracted document of a batch.
type BatchSuccess struct {
	Result *model.ExtractionResult `json:"data"`
	File   string                  `json:"file"`
}

// BatchError is one failed document of a batch.
type BatchError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchResult summarises a batch run.
type BatchResult struct {
	Processed    []BatchSuccess `json:"processed"`
	Errors       []BatchError   `json:"errors"`
	Total        int            `json:"total"`
	SuccessCount int            `json:"success_count"`
	ErrorCount   int            `json:"error_count"`
}

// OK reports whether every document succeeded.
func (r BatchResult) OK() bool {
	return r.ErrorCount == 0
}

// BatchItem reports the outcome of one document as the batch progresses.
type BatchItem struct {
	Err    error
	Result *model.ExtractionResult
	File   string
	Index  int
}

// ProcessBatch extracts every document in order. A failing document is
// recorded and the batch moves on; a cancelled context marks the remaining
// documents as failed.
func (c *Client) ProcessBatch(ctx context.Context, docs []Document, tenantID string, kind model.DocKind, progress func(BatchItem)) BatchResult {
	result := BatchResult{
		Total:     len(docs),
		Processed: []BatchSuccess{},
		Errors:    []BatchError{},
	}

	for i, doc := range docs {
		var (
			r   *model.ExtractionResult
			err = ctx.Err()
		)
		if err == nil {
			r, err = c.Process(ctx, doc, tenantID, kind)
		}

		if err != nil {
			slog.Warn("Document extraction failed", "file", doc.Name, "error", err)
			result.Errors = append(result.Errors, BatchError{File: doc.Name, Error: err.Error()})
		} else {
			result.Processed = append(result.Processed, BatchSuccess{File: doc.Name, Result: r})
		}

		if progress != nil {
			progress(BatchItem{Index: i, File: doc.Name, Result: r, Err: err})
		}
	}

	result.SuccessCount = len(result.Processed)
	result.ErrorCount = len(result.Errors)
	return result
}
