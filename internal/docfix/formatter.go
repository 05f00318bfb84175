package docfix

import (
	"strings"
	"unicode/utf8"

	"docfixer-backend/internal/docx"
)

const (
	defaultFontName = "Calibri"
	defaultFontPt   = 11
	headingFontPt   = 14
	marginTwips     = 1440 // 1 inch
	headingMaxRunes = 60
)

// HeadingDetector decides whether a paragraph's text reads like a heading.
type HeadingDetector interface {
	IsHeading(text string) bool
}

// LengthHeuristic flags short lines that do not end in sentence punctuation.
type LengthHeuristic struct {
	MaxRunes int
}

func (h LengthHeuristic) IsHeading(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	max := h.MaxRunes
	if max <= 0 {
		max = headingMaxRunes
	}
	if utf8.RuneCountInString(trimmed) >= max {
		return false
	}
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, ",") {
		return false
	}
	return true
}

// Formatter normalizes fonts and margins and styles headings. Applying it
// twice yields the same document.
type Formatter struct {
	Headings HeadingDetector
}

func NewFormatter() *Formatter {
	return &Formatter{Headings: LengthHeuristic{MaxRunes: headingMaxRunes}}
}

func (f *Formatter) Apply(doc *docx.Document) {
	for _, para := range doc.Paragraphs() {
		heading := f.Headings != nil && f.Headings.IsHeading(para.Text())
		for _, run := range para.Runs() {
			if heading {
				run.SetFont(defaultFontName, headingFontPt)
				run.SetBold()
				continue
			}
			run.SetFont(defaultFontName, defaultFontPt)
		}
		if heading {
			para.SetAlignment("left")
		}
	}
	for _, section := range doc.Sections() {
		section.SetMargins(marginTwips)
	}
}
