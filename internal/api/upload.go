package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/codemission/internal/observability"
)

// DefaultUploadTimeout applies to multipart uploads without their own timeout.
const DefaultUploadTimeout = 120 * time.Second

// ProgressFunc receives the integer percentage of the archive sent so far.
type ProgressFunc func(percent int)

// File is an archive ready to be sent. Open must return a fresh reader on each call so retries can resend it.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// OpenFile describes the file at path, sniffing its content type from the first bytes.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	contentType := ""
	if detected, err := mimetype.DetectFile(path); err == nil {
		contentType = detected.String()
	}

	return File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// BytesFile wraps an in-memory archive.
func BytesFile(name string, content []byte, contentType string) File {
	return File{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// Upload is a multipart request: the archive under field "file" plus plain form fields.
type Upload struct {
	Path     string
	Route    string
	File     File
	Fields   map[string]string
	Timeout  time.Duration
	Progress ProgressFunc
}

// SendUpload streams the multipart body to the backend, reporting progress as the archive is read.
func SendUpload[T any](ctx context.Context, c *Client, up Upload) Envelope[T] {
	if up.File.Open == nil {
		return Fail[T](NewValidationError("No file selected."))
	}

	source, err := up.File.Open()
	if err != nil {
		return Fail[T](&Error{Kind: KindValidation, Message: fmt.Sprintf("Could not read %s.", up.File.Name), Err: err})
	}
	defer source.Close()

	timeout := up.Timeout
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	counter := &progressReader{reader: source, total: up.File.Size, report: up.Progress}

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := writeMultipart(writer, up, counter)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	env := Send[T](ctx, c, Request{
		Method:      http.MethodPost,
		Path:        up.Path,
		Route:       up.Route,
		Timeout:     timeout,
		body:        pr,
		contentType: writer.FormDataContentType(),
	})
	_ = pr.Close()
	<-done

	observability.UploadBytes().Add(float64(counter.read))
	if env.Success {
		counter.finish()
	}
	return env
}

func writeMultipart(writer *multipart.Writer, up Upload, source io.Reader) error {
	keys := make([]string, 0, len(up.Fields))
	for key := range up.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := writer.WriteField(key, up.Fields[key]); err != nil {
			return err
		}
	}

	contentType := up.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.File.Name))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, source)
	return err
}

type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	p.read += int64(n)
	if p.total > 0 && p.report != nil {
		percent := int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent > p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}

func (p *progressReader) finish() {
	if p.report != nil && p.last < 100 {
		p.last = 100
		p.report(100)
	}
}
