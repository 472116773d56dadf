package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Blob is a binary download held in memory.
type Blob struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SaveTo writes the blob into dir under its filename and returns the path.
func (b *Blob) SaveTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	path := filepath.Join(dir, b.Filename)
	if err := os.WriteFile(path, b.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// InvoicePDF downloads an invoice document.
func (c *Client) InvoicePDF(ctx context.Context, invoiceID int64) (*Blob, error) {
	return c.download(ctx, idPath("/invoices/%s/pdf", invoiceID), nil, idPath("invoice-%s.pdf", invoiceID))
}

// ArticlePDF downloads a knowledge-base article rendered as PDF.
func (c *Client) ArticlePDF(ctx context.Context, articleID int64) (*Blob, error) {
	return c.download(ctx, idPath("/articles/%s/pdf", articleID), nil, idPath("article-%s.pdf", articleID))
}

func (c *Client) download(ctx context.Context, path string, query url.Values, fallbackName string) (*Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf, application/octet-stream")
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download: %w", err)
	}
	return &Blob{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// attachmentName returns the Content-Disposition filename with any
// directory components stripped, or fallback.
func attachmentName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == "/" || name == ".." {
		return fallback
	}
	return name
}
