package docfix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docfixer-backend/internal/docx"
	"docfixer-backend/internal/llm"
	"docfixer-backend/internal/shared/storage/object"
	"docfixer-backend/internal/shared/telemetry"
	"docfixer-backend/internal/shared/util"
)

// ErrUnsupportedFormat is returned for uploads that are not .docx files.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrUpstreamUnavailable is returned when no rewrite provider is configured,
// before any paragraph work is attempted.
var ErrUpstreamUnavailable = errors.New("rewrite upstream unavailable")

const outputPrefix = "SmartDocFixed_"

// Result is a processed document ready to be returned to the client.
type Result struct {
	FileName         string
	Data             []byte
	ParagraphsFailed int
}

// Service runs the full fix pipeline: stage the upload, rewrite paragraphs,
// normalize formatting, and keep a best-effort copy in the object store.
type Service struct {
	improver  llm.Improver
	formatter *Formatter
	store     object.ObjectStore
}

func NewService(improver llm.Improver, store object.ObjectStore) *Service {
	return &Service{
		improver:  improver,
		formatter: NewFormatter(),
		store:     store,
	}
}

// Process fixes a single uploaded document. The reader is staged to a
// temporary file that is removed before Process returns, on every path.
func (s *Service) Process(ctx context.Context, userID, fileName, requestID string, r io.Reader) (*Result, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if strings.ToLower(filepath.Ext(sanitizedName)) != ".docx" {
		return nil, ErrUnsupportedFormat
	}
	if s.improver == nil {
		return nil, ErrUpstreamUnavailable
	}
	if _, unconfigured := s.improver.(llm.Unconfigured); unconfigured {
		return nil, ErrUpstreamUnavailable
	}

	tmp, err := os.CreateTemp("", "docfix-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read staged upload: %w", err)
	}

	doc, err := docx.Parse(data)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if _, _, _, err := s.store.Save(ctx, userID, sanitizedName, bytes.NewReader(data)); err != nil {
			telemetry.Warn("docfix.store_copy_failed", map[string]any{
				"request_id": requestID,
				"user_id":    userID,
				"file_name":  sanitizedName,
				"error":      err.Error(),
			})
		}
	}

	telemetry.Info("docfix.start", map[string]any{
		"request_id": requestID,
		"user_id":    userID,
		"file_name":  sanitizedName,
		"paragraphs": len(doc.Paragraphs()),
	})

	rewriter := NewRewriter(newRetryingImprover(s.improver, requestID))
	failed, err := rewriter.Rewrite(ctx, doc, requestID)
	if err != nil {
		return nil, err
	}

	s.formatter.Apply(doc)

	out, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	outputName := outputPrefix + sanitizedName
	if s.store != nil {
		if _, _, _, err := s.store.Save(ctx, userID, outputName, bytes.NewReader(out)); err != nil {
			telemetry.Warn("docfix.store_copy_failed", map[string]any{
				"request_id": requestID,
				"user_id":    userID,
				"file_name":  outputName,
				"error":      err.Error(),
			})
		}
	}

	telemetry.Info("docfix.done", map[string]any{
		"request_id":        requestID,
		"user_id":           userID,
		"file_name":         outputName,
		"paragraphs_failed": failed,
		"size_bytes":        len(out),
	})

	return &Result{
		FileName:         outputName,
		Data:             out,
		ParagraphsFailed: failed,
	}, nil
}
