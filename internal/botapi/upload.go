package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileKind distinguishes the two upload types the backend accepts.
type FileKind string

const (
	FilePDF   FileKind = "pdf"
	FileImage FileKind = "image"
)

// DefaultUploadMax is the backend's upload cap, enforced client-side too so a
// too-large file fails before any bytes leave the machine.
const DefaultUploadMax = 5 << 20

// KindForPath guesses the upload kind from a file extension.
func KindForPath(path string) FileKind {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FilePDF
	}
	return FileImage
}

// UploadFile stores a PDF or image on the backend and returns the stored URL.
// onProgress, when non-nil, is called with the upload fraction in [0,1] as the
// request body is consumed.
func (c *Client) UploadFile(ctx context.Context, path string, kind FileKind, maxBytes int64, onProgress func(float64)) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMax
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", &TransportError{Op: "reading file", Err: err}
	}
	if info.Size() > maxBytes {
		return "", &APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("el archivo supera el límite de %d MB", maxBytes>>20),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &TransportError{Op: "reading file", Err: err}
	}
	defer func() { _ = f.Close() }()

	// The form is built in memory: the cap keeps bodies small and an
	// in-memory body gives an exact total for progress reporting.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", &TransportError{Op: "building form", Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &TransportError{Op: "building form", Err: err}
	}
	if err := mw.WriteField("type", string(kind)); err != nil {
		return "", &TransportError{Op: "building form", Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &TransportError{Op: "building form", Err: err}
	}

	pr := &progressReader{r: &buf, total: int64(buf.Len()), report: onProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-file", pr)
	if err != nil {
		return "", &TransportError{Op: "building request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = pr.total
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: "POST /upload-file", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrLoginRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeAPIError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TransportError{Op: "decoding response", Err: err}
	}
	return out.FileURL, nil
}

// progressReader reports the consumed fraction of a known-length body.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.sent += int64(n)
	if p.report != nil && p.total > 0 {
		p.report(float64(p.sent) / float64(p.total))
	}
	return n, err
}
