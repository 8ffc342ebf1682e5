// Package types defines core domain values for the docqa client.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"path/filepath"
	"strings"
)

// SupportedFormat pairs an accepted file extension with its MIME type.
type SupportedFormat struct {
	Extension string
	MIMEType  string
}

// SupportedFormats lists the document formats the backend can index.
// Order matches the user-facing "Supported formats" hint.
var SupportedFormats = []SupportedFormat{
	{Extension: ".pdf", MIMEType: "application/pdf"},
	{Extension: ".doc", MIMEType: "application/msword"},
	{Extension: ".docx", MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	{Extension: ".txt", MIMEType: "text/plain"},
}

// IsSupported reports whether a file with the given name may be selected.
// Only the extension decides, case-insensitively; the backend rejects any
// other suffix whatever the content.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range SupportedFormats {
		if ext == f.Extension {
			return true
		}
	}
	return false
}

// FormatMIMEType returns the MIME type registered for name's extension,
// or "" when the extension is not supported.
func FormatMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range SupportedFormats {
		if ext == f.Extension {
			return f.MIMEType
		}
	}
	return ""
}

// SupportedExtensions returns the accepted extensions, e.g. for help text.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(SupportedFormats))
	for _, f := range SupportedFormats {
		exts = append(exts, f.Extension)
	}
	return exts
}

// SelectedFile is a local file chosen for upload but not yet accepted by
// the backend. It is a value: selecting the same file twice yields equal
// SelectedFile values.
type SelectedFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	MIMEType      string `json:"mime_type"`
	FormattedSize string `json:"formatted_size"`
}

// NewSelectedFile builds a SelectedFile and derives its formatted size.
func NewSelectedFile(id, path string, size int64, mimeType string) SelectedFile {
	return SelectedFile{
		ID:            id,
		Name:          filepath.Base(path),
		Path:          path,
		Size:          size,
		MIMEType:      mimeType,
		FormattedSize: FormatFileSize(size),
	}
}

// UploadedDocument is a file the backend has accepted.
// Immutable once created; dropped only by a global clear.
type UploadedDocument struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	FormattedSize string `json:"formatted_size"`
	// StoragePath is the server-assigned location, when reported.
	StoragePath string `json:"storage_path,omitempty"`
}

// Extension returns the document's extension without the leading dot.
func (d UploadedDocument) Extension() string {
	return strings.TrimPrefix(filepath.Ext(d.Name), ".")
}

// NewUploadedDocument derives an UploadedDocument from the selection that
// was uploaded and the storage path returned by the backend.
// Missing name or type fall back to "Unknown".
func NewUploadedDocument(f SelectedFile, storagePath string) UploadedDocument {
	name := f.Name
	if name == "" {
		name = "Unknown"
	}
	typ := f.MIMEType
	if typ == "" {
		typ = "Unknown"
	}
	return UploadedDocument{
		ID:            f.ID,
		Name:          name,
		Size:          f.Size,
		Type:          typ,
		FormattedSize: FormatFileSize(f.Size),
		StoragePath:   storagePath,
	}
}
