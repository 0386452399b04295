package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/observability"
	"github.com/noah-isme/codemission/internal/utils"
)

// DefaultMaxArchiveBytes is the archive size limit when none is configured.
const DefaultMaxArchiveBytes int64 = 50 * 1024 * 1024

// MaxFilesPerUpload is how many archives one upload may carry.
const MaxFilesPerUpload = 1

// MessageRARNotSupported is shown for any .rar archive.
const MessageRARNotSupported = "RAR archives are not supported. Please use a .zip file."

var allowedExtensions = map[string]struct{}{
	".zip": {},
	".tar": {},
	".gz":  {},
}

var allowedMIMETypes = map[string]struct{}{
	"application/zip":              {},
	"application/x-zip-compressed": {},
	"application/zip-compressed":   {},
	"application/octet-stream":     {},
	"application/x-tar":            {},
	"application/gzip":             {},
}

// AllowedExtensions lists the accepted archive extensions in display order.
func AllowedExtensions() []string {
	return []string{".zip", ".tar", ".gz"}
}

// Archive checks a project archive before upload. A .rar name is always rejected, as is anything
// over maxBytes. Otherwise the archive passes when either its extension or its MIME type is allowed.
// An undeclared MIME type is sniffed from the content.
func Archive(file api.File, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxArchiveBytes
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == ".rar" {
		return reject("rar", MessageRARNotSupported)
	}

	if file.Size > maxBytes {
		return reject("size", fmt.Sprintf("File %q: size exceeds the limit of %s", file.Name, utils.FormatFileSize(maxBytes)))
	}

	_, extAllowed := allowedExtensions[ext]
	contentType := baseMIME(file.ContentType)
	if !extAllowed && contentType == "" {
		contentType = sniff(file)
	}
	_, mimeAllowed := allowedMIMETypes[contentType]
	if !extAllowed && !mimeAllowed {
		return reject("type", fmt.Sprintf("File %q: type not allowed. Allowed types: %s", file.Name, strings.Join(AllowedExtensions(), ", ")))
	}

	return nil
}

// Files checks a batch selection: at most MaxFilesPerUpload archives, each passing Archive.
func Files(files []api.File, maxBytes int64) error {
	if len(files) == 0 {
		return reject("empty", "No file selected.")
	}
	if len(files) > MaxFilesPerUpload {
		return reject("count", fmt.Sprintf("Only %d file can be uploaded at a time.", MaxFilesPerUpload))
	}
	for _, file := range files {
		if err := Archive(file, maxBytes); err != nil {
			return err
		}
	}
	return nil
}

// sniff returns the detected MIME type of file's content, or "" when it cannot be read.
func sniff(file api.File) string {
	if file.Open == nil {
		return ""
	}
	reader, err := file.Open()
	if err != nil {
		return ""
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return ""
	}
	return baseMIME(detected.String())
}

func baseMIME(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return contentType
}

func reject(reason, message string) error {
	observability.ValidationRejections().WithLabelValues(reason).Inc()
	return api.NewValidationError(message)
}
