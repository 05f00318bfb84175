package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MimeType is the content type of a .docx document.
const MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPart = "word/document.xml"

// ErrNotDocx is returned when the input is not a readable .docx package.
var ErrNotDocx = errors.New("not a valid docx package")

type zipEntry struct {
	name       string
	data       []byte
	isDocument bool
}

// Document is a parsed .docx package. The main document part is held as an
// editable XML tree; every other part is carried through untouched.
type Document struct {
	entries   []zipEntry
	header    string
	rootStart string
	rootEnd   string
	root      *node
	body      *node
}

// Parse reads a .docx package from memory.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	doc := &Document{}
	found := false
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", zf.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", zf.Name, err)
		}

		normalized := strings.ReplaceAll(zf.Name, "\\", "/")
		entry := zipEntry{name: zf.Name, data: content}
		if normalized == documentPart && !found {
			entry.isDocument = true
			found = true

			xmlText := string(content)
			root, header, err := parseXMLDocument(xmlText)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", documentPart, err)
			}
			rootStart, rootEnd, err := extractRootTags(xmlText)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", documentPart, err)
			}
			doc.header = header
			doc.root = root
			doc.rootStart = rootStart
			doc.rootEnd = rootEnd
		}
		doc.entries = append(doc.entries, entry)
	}

	if !found {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDocx, documentPart)
	}

	doc.body = findBodyNode(doc.root)
	if doc.body == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrNotDocx)
	}

	return doc, nil
}

// Paragraphs returns the top-level paragraphs of the document body, in order.
// Paragraphs nested inside tables or other containers are not included.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, child := range d.body.Children {
		if isElement(child, "p") {
			out = append(out, &Paragraph{n: child})
		}
	}
	return out
}

// Sections returns every section properties block in the document body.
func (d *Document) Sections() []*Section {
	var out []*Section
	walkXML(d.body, func(n *node) bool {
		if isElement(n, "sectPr") {
			out = append(out, &Section{n: n})
		}
		return true
	})
	return out
}

// Bytes re-encodes the document part and rebuilds the package, preserving
// the original part ordering.
func (d *Document) Bytes() ([]byte, error) {
	encoded, err := encodeXMLDocument(d.header, d.root, d.rootStart, d.rootEnd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", documentPart, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range d.entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("create part %s: %w", entry.name, err)
		}
		content := entry.data
		if entry.isDocument {
			content = []byte(encoded)
		}
		if _, err := w.Write(content); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write part %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraph is a w:p element in the document body.
type Paragraph struct {
	n *node
}

// Text concatenates all text nodes in the paragraph.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	walkXML(p.n, func(n *node) bool {
		if isElement(n, "t") {
			for _, child := range n.Children {
				if child.IsText {
					sb.WriteString(child.Text)
				}
			}
		}
		return true
	})
	return sb.String()
}

// SetText replaces the paragraph content with a single run holding text.
// Paragraph properties are preserved; everything else is dropped.
func (p *Paragraph) SetText(text string) {
	var kept []*node
	for _, child := range p.n.Children {
		if isElement(child, "pPr") {
			kept = append(kept, child)
		}
	}
	p.n.Children = kept

	if text == "" {
		return
	}

	t := &node{
		Name: wname("t"),
		Attr: []xml.Attr{{Name: xml.Name{Local: "xml:space"}, Value: "preserve"}},
		Children: []*node{
			{IsText: true, Text: text},
		},
	}
	run := &node{Name: wname("r"), Children: []*node{t}}
	p.n.Children = append(p.n.Children, run)
}

// Runs returns the direct runs of the paragraph.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, child := range p.n.Children {
		if isElement(child, "r") {
			out = append(out, &Run{n: child})
		}
	}
	return out
}

// SetAlignment sets the paragraph justification ("left", "center", ...).
func (p *Paragraph) SetAlignment(val string) {
	pPr := p.ensurePPr()
	jc := ensureChild(pPr, "jc")
	setAttr(jc, "val", val)
}

// Alignment returns the current justification value, or "" if unset.
func (p *Paragraph) Alignment() string {
	pPr := findChild(p.n, "pPr")
	if pPr == nil {
		return ""
	}
	jc := findChild(pPr, "jc")
	if jc == nil {
		return ""
	}
	return getAttr(jc, "val")
}

func (p *Paragraph) ensurePPr() *node {
	if existing := findChild(p.n, "pPr"); existing != nil {
		return existing
	}
	pPr := &node{Name: wname("pPr")}
	p.n.Children = append([]*node{pPr}, p.n.Children...)
	return pPr
}

// Run is a w:r element.
type Run struct {
	n *node
}

// SetFont sets the run font face and size in points.
func (r *Run) SetFont(name string, sizePt int) {
	rPr := r.ensureRPr()
	rFonts := ensureChild(rPr, "rFonts")
	setAttr(rFonts, "ascii", name)
	setAttr(rFonts, "hAnsi", name)

	halfPoints := strconv.Itoa(sizePt * 2)
	setAttr(ensureChild(rPr, "sz"), "val", halfPoints)
	setAttr(ensureChild(rPr, "szCs"), "val", halfPoints)
}

// SetBold marks the run bold.
func (r *Run) SetBold() {
	rPr := r.ensureRPr()
	ensureChild(rPr, "b")
}

// Font returns the run font face and size in points. Size is 0 if unset.
func (r *Run) Font() (string, int) {
	rPr := findChild(r.n, "rPr")
	if rPr == nil {
		return "", 0
	}
	name := ""
	if rFonts := findChild(rPr, "rFonts"); rFonts != nil {
		name = getAttr(rFonts, "ascii")
	}
	size := 0
	if sz := findChild(rPr, "sz"); sz != nil {
		if half, err := strconv.Atoi(getAttr(sz, "val")); err == nil {
			size = half / 2
		}
	}
	return name, size
}

// IsBold reports whether the run carries a bold property.
func (r *Run) IsBold() bool {
	rPr := findChild(r.n, "rPr")
	if rPr == nil {
		return false
	}
	b := findChild(rPr, "b")
	if b == nil {
		return false
	}
	val := getAttr(b, "val")
	return val == "" || val == "true" || val == "1" || val == "on"
}

// Run properties must be the first child of the run.
func (r *Run) ensureRPr() *node {
	if existing := findChild(r.n, "rPr"); existing != nil {
		return existing
	}
	rPr := &node{Name: wname("rPr")}
	r.n.Children = append([]*node{rPr}, r.n.Children...)
	return rPr
}

// Section is a w:sectPr element.
type Section struct {
	n *node
}

// SetMargins sets all four page margins to the given value in twips.
func (s *Section) SetMargins(twips int) {
	pgMar := ensureChild(s.n, "pgMar")
	val := strconv.Itoa(twips)
	for _, side := range []string{"top", "right", "bottom", "left"} {
		setAttr(pgMar, side, val)
	}
}

// Margin returns a page margin value in twips, or "" if unset.
func (s *Section) Margin(side string) string {
	pgMar := findChild(s.n, "pgMar")
	if pgMar == nil {
		return ""
	}
	return getAttr(pgMar, side)
}

func wname(local string) xml.Name {
	return xml.Name{Space: wmlNamespace, Local: local}
}

func findChild(n *node, local string) *node {
	for _, child := range n.Children {
		if isElement(child, local) {
			return child
		}
	}
	return nil
}

func ensureChild(n *node, local string) *node {
	if existing := findChild(n, local); existing != nil {
		return existing
	}
	child := &node{Name: wname(local)}
	n.Children = append(n.Children, child)
	return child
}

func getAttr(n *node, local string) string {
	for _, attr := range n.Attr {
		if attr.Name.Local == local && (attr.Name.Space == "" || attr.Name.Space == wmlNamespace) {
			return attr.Value
		}
	}
	return ""
}

func setAttr(n *node, local, value string) {
	for i, attr := range n.Attr {
		if attr.Name.Local == local && (attr.Name.Space == "" || attr.Name.Space == wmlNamespace) {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Space: wmlNamespace, Local: local}, Value: value})
}
