package docfix

import (
	"context"
	"strings"

	"docfixer-backend/internal/docx"
	"docfixer-backend/internal/llm"
	"docfixer-backend/internal/shared/telemetry"
)

// Rewriter sends each paragraph through the improver, falling back to the
// original text when a call fails.
type Rewriter struct {
	improver llm.Improver
}

func NewRewriter(improver llm.Improver) *Rewriter {
	return &Rewriter{improver: improver}
}

// Rewrite replaces the text of every non-empty paragraph with the improved
// version. Returns how many paragraphs fell back to their original text.
// Paragraphs are processed in order; empty paragraphs are left untouched.
func (rw *Rewriter) Rewrite(ctx context.Context, doc *docx.Document, requestID string) (int, error) {
	failed := 0
	for i, para := range doc.Paragraphs() {
		text := strings.TrimSpace(para.Text())
		if text == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		improved, err := rw.improver.Improve(ctx, text)
		if err != nil {
			telemetry.Warn("docfix.paragraph_fallback", map[string]any{
				"request_id": requestID,
				"paragraph":  i,
				"error":      err.Error(),
			})
			failed++
			improved = text
		}
		para.SetText(improved)
	}
	return failed, nil
}
