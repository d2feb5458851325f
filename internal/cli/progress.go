package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// UploadProgress reports documents moving through extraction.
type UploadProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewUploadProgress creates a progress bar for total documents.
func NewUploadProgress(w io.Writer, total int) *UploadProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Procesando documentos...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &UploadProgress{bar: bar, writer: w}
}

// Step advances the bar by one document and names it.
func (p *UploadProgress) Step(file string, failed bool) {
	desc := "[cyan]" + file + "[reset]"
	if failed {
		desc = "[red]" + file + "[reset]"
	}
	p.bar.Describe(desc)
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar.
func (p *UploadProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
