package object

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// ContentTypeFor resolves a content type from the file extension first,
// falling back to sniffing. Office files sniff as application/zip, so the
// extension mapping has to win.
func ContentTypeFor(fileName string, sniff []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if byExt := mime.TypeByExtension(ext); byExt != "" && byExt != "application/zip" {
		return byExt
	}
	if ext == ".docx" {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return http.DetectContentType(sniff)
}
