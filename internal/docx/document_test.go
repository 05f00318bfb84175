package docx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:i/></w:rPr><w:t>Quarterly Report</w:t></w:r></w:p><w:p><w:r><w:t xml:space="preserve">This is the first </w:t></w:r><w:r><w:t>sentence of the body.</w:t></w:r></w:p><w:p/><w:sectPr><w:pgMar w:top="720" w:right="720" w:bottom="720" w:left="720"/></w:sectPr></w:body></w:document>`

func buildTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml":   documentXML,
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func parseTestDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(buildTestDocx(t, testDocumentXML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a zip at all")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestParseRejectsZipWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("hello.txt")
	w.Write([]byte("hi"))
	zw.Close()

	if _, err := Parse(buf.Bytes()); err == nil {
		t.Fatal("expected error for zip without word/document.xml")
	}
}

func TestParagraphText(t *testing.T) {
	doc := parseTestDoc(t)
	paras := doc.Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}
	if got := paras[0].Text(); got != "Quarterly Report" {
		t.Errorf("paragraph 0 text = %q", got)
	}
	if got := paras[1].Text(); got != "This is the first sentence of the body." {
		t.Errorf("paragraph 1 text = %q", got)
	}
	if got := paras[2].Text(); got != "" {
		t.Errorf("paragraph 2 text = %q, want empty", got)
	}
}

func TestSetTextKeepsParagraphProperties(t *testing.T) {
	doc := parseTestDoc(t)
	paras := doc.Paragraphs()
	paras[0].SetText("Annual Report")

	if got := paras[0].Text(); got != "Annual Report" {
		t.Fatalf("text after SetText = %q", got)
	}
	if got := paras[0].Alignment(); got != "center" {
		t.Errorf("alignment lost after SetText: %q", got)
	}
	if runs := paras[0].Runs(); len(runs) != 1 {
		t.Errorf("expected a single run after SetText, got %d", len(runs))
	}
}

func TestRoundTripSurvivesReparse(t *testing.T) {
	doc := parseTestDoc(t)
	doc.Paragraphs()[1].SetText("Rewritten body text.")

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	paras := again.Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("paragraph count changed: %d", len(paras))
	}
	if got := paras[1].Text(); got != "Rewritten body text." {
		t.Errorf("paragraph 1 text after round trip = %q", got)
	}
	if got := paras[0].Text(); got != "Quarterly Report" {
		t.Errorf("untouched paragraph changed: %q", got)
	}
}

func TestRoundTripPreservesOtherParts(t *testing.T) {
	doc := parseTestDoc(t)
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("reopen zip: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "[Content_Types].xml") {
		t.Errorf("content types part dropped: %v", names)
	}
	if !strings.Contains(joined, "word/document.xml") {
		t.Errorf("document part dropped: %v", names)
	}
}

func TestRunFontAndBold(t *testing.T) {
	doc := parseTestDoc(t)
	run := doc.Paragraphs()[1].Runs()[0]
	run.SetFont("Calibri", 11)
	run.SetBold()

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	reRun := again.Paragraphs()[1].Runs()[0]
	name, size := reRun.Font()
	if name != "Calibri" || size != 11 {
		t.Errorf("font = %q/%d, want Calibri/11", name, size)
	}
	if !reRun.IsBold() {
		t.Error("bold flag lost after round trip")
	}
}

func TestSectionMargins(t *testing.T) {
	doc := parseTestDoc(t)
	sections := doc.Sections()
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	sections[0].SetMargins(1440)

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	sec := again.Sections()[0]
	for _, side := range []string{"top", "right", "bottom", "left"} {
		if got := sec.Margin(side); got != "1440" {
			t.Errorf("margin %s = %q, want 1440", side, got)
		}
	}
}

func TestSetAlignment(t *testing.T) {
	doc := parseTestDoc(t)
	para := doc.Paragraphs()[1]
	para.SetAlignment("left")

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if got := again.Paragraphs()[1].Alignment(); got != "left" {
		t.Errorf("alignment after round trip = %q, want left", got)
	}
}
