// ABOUTME: Document management endpoints: list, upload, and delete indexed files
// ABOUTME: Uploads are multipart with field "file" and restricted to CSV documents

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned by Upload for anything but a .csv file.
var ErrUnsupportedFile = errors.New("only .csv files are supported")

// File describes one indexed document as reported by the backend.
type File struct {
	Name string `json:"name"`
	Size string `json:"size"` // preformatted, e.g. "1.5 KB"
	Date string `json:"date"` // "YYYY-MM-DD HH:MM", newest first
}

// UploadResult is the backend's acknowledgement of an upload.
type UploadResult struct {
	Message     string          `json:"message"`
	Filename    string          `json:"filename"`
	IndexResult json.RawMessage `json:"index_result,omitempty"`
}

// ListFiles returns the indexed documents.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	var files []File
	if err := c.doJSON(ctx, http.MethodGet, "/files", nil, &files); err != nil {
		return nil, err
	}
	if files == nil {
		files = []File{}
	}
	return files, nil
}

// Upload sends the contents of r to the backend as the document name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResult, error) {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return nil, fmt.Errorf("%s: %w", base, ErrUnsupportedFile)
	}

	// Stream the multipart body rather than buffering the whole file.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", base)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		pr.Close()
		return nil, err
	}
	return &result, nil
}

// DeleteFile removes the named document from the backend.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/files/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
