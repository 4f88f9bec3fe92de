// Package sibling fetches documents owned by the sibling documents service.
package sibling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"certdocs/internal/apperror"
	"certdocs/internal/model"
)

// SubjectIDHeader optionally echoes the subject a document belongs to.
const SubjectIDHeader = "X-Subject-Id"

const maxErrorBody = 512

// Document is a fetched payload. Body streams from the network and must be
// closed by the caller.
type Document struct {
	Kind        model.Kind
	SubjectID   int64
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type Client struct {
	base string
	http *http.Client
}

// NewClient targets baseURL. headerTimeout bounds the wait for response
// headers only, so long bodies can stream for as long as the reader needs.
func NewClient(baseURL string, headerTimeout time.Duration) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = headerTimeout
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Transport: otelhttp.NewTransport(tr)},
	}
}

// Fetch requests GET {base}/documents/{kind}/by-subject/{subjectID} with
// token as the bearer credential. A 404 is reported as a not-found error and
// any other non-2xx status as a remote service error.
func (c *Client) Fetch(ctx context.Context, token string, kind model.Kind, subjectID int64) (*Document, error) {
	const op = "sibling.Fetch"
	u := fmt.Sprintf("%s/documents/%s/by-subject/%d", c.base, url.PathEscape(string(kind)), subjectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, apperror.RemoteService(op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/pdf, application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.RemoteService(op, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		drain(resp.Body)
		return nil, apperror.NotFound(op, fmt.Sprintf("%s not found for subject %d", kind, subjectID))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		drain(resp.Body)
		return nil, apperror.RemoteService(op, fmt.Errorf("GET %s: status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	doc := &Document{
		Kind:        kind,
		SubjectID:   subjectID,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}
	if h := resp.Header.Get(SubjectIDHeader); h != "" {
		id, err := strconv.ParseInt(h, 10, 64)
		if err != nil || id != subjectID {
			drain(resp.Body)
			return nil, apperror.RemoteService(op, errors.New("document belongs to a different subject"))
		}
	}
	return doc, nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
