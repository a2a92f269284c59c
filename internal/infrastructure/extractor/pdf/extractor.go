package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
)

// Extractor pulls plain text out of PDF uploads. A page that fails to
// decode is skipped; the remaining pages still contribute. When the
// result looks garbled an optional oracle pass tries to clean it up.
type Extractor struct {
	enhancer ports.Oracle
}

// NewExtractor builds a PDF text extractor. enhancer may be nil, in
// which case low-quality text is returned as-is.
func NewExtractor(enhancer ports.Oracle) *Extractor {
	return &Extractor{enhancer: enhancer}
}

func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "read pdf", fmt.Errorf("empty file: %s", filename))
	}

	reader, err := pdflib.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "read pdf", fmt.Errorf("%s: %w", filename, err))
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, pageErr := extractPage(reader, i)
		if pageErr != nil {
			slog.Warn("pdf_page_skipped", "filename", filename, "page", i, "error", pageErr)
			continue
		}
		if pageText != "" {
			pages = append(pages, pageText)
		}
	}

	text := strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return "", nil
	}

	if e.enhancer != nil && looksGarbled(text) {
		return e.enhance(ctx, filename, text), nil
	}
	return text, nil
}

// extractPage isolates the library call so a panic inside the PDF parser
// costs one page, not the document.
func extractPage(reader *pdflib.Reader, number int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page parser panic: %v", r)
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

const enhancementSystemPrompt = `You clean up garbled text extracted from scanned medical documents.
Return only the corrected plain text, preserving all names, dates, amounts and codes exactly.
If the text is too damaged to reconstruct, return exactly: UNREADABLE_DOCUMENT`

// enhance asks the oracle to reconstruct garbled text. Any failure, and
// the UNREADABLE_DOCUMENT sentinel, fall back to the raw text.
func (e *Extractor) enhance(ctx context.Context, filename, text string) string {
	cleaned, err := e.enhancer.Generate(ctx, domain.OracleRequest{
		SystemPrompt: enhancementSystemPrompt,
		UserPrompt:   text,
	})
	if err != nil {
		slog.Warn("text_enhancement_failed", "filename", filename, "error", err)
		return text
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || strings.Contains(cleaned, "UNREADABLE_DOCUMENT") {
		slog.Warn("text_enhancement_unreadable", "filename", filename)
		return text
	}
	slog.Info("text_enhanced", "filename", filename, "before_bytes", len(text), "after_bytes", len(cleaned))
	return cleaned
}
