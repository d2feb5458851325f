package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/ocr"
)

func uploadCmd() *cobra.Command {
	var kind, tenant string

	cmd := &cobra.Command{
		Use:   "upload <files...>",
		Short: "Extract invoices from scanned documents",
		Long: `Upload PDF or image files to the extraction service. Every document that
is read successfully is added to your invoices; failures are listed at the end.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			docKind := model.DocKind(kind)
			if !docKind.Valid() {
				return fmt.Errorf("invalid --kind %q: use factura or boleta", kind)
			}
			if tenant == "" {
				tenant = a.cfg.Tenant.ID
			}

			base, err := a.cfg.Services.OCR()
			if err != nil {
				return err
			}
			st, err := a.openStore(ctx, false)
			if err != nil {
				return err
			}

			var (
				docs     []ocr.Document
				failures []ocr.BatchError
			)
			for _, path := range args {
				doc, err := ocr.ReadDocument(path)
				if err != nil {
					failures = append(failures, ocr.BatchError{File: filepath.Base(path), Error: err.Error()})
					continue
				}
				docs = append(docs, doc)
			}

			added := 0
			if len(docs) > 0 {
				bar := cli.NewUploadProgress(cmd.ErrOrStderr(), len(docs))
				result := ocr.NewClient(base, a.http).ProcessBatch(ctx, docs, tenant, docKind, func(item ocr.BatchItem) {
					bar.Step(item.File, item.Err != nil)
					if item.Err == nil && item.Result != nil {
						st.AddInvoice(*item.Result)
						added++
					}
				})
				bar.Finish()
				failures = append(failures, result.Errors...)
			}

			if added > 0 {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d documento(s) procesado(s)", added)))
			}
			for _, f := range failures {
				fmt.Fprintln(out, cli.FormatError(f.File+": "+f.Error))
			}
			if added == 0 {
				return fmt.Errorf("no document could be processed")
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&kind, "kind", string(model.DocKindFactura), "document kind (factura, boleta)")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id (default: tenant.id from config)")

	return cmd
}
