// Package archive streams a sequence of documents into a zip archive, one
// entry at a time, so memory stays bounded by the copy buffer rather than
// the size of the documents.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"certdocs/internal/metrics"
)

// Entry is one file of the archive. Its payload is either already open
// (a fetched response body) or opened when the entry is reached.
type Entry struct {
	Name     string
	Source   string
	Modified time.Time

	open func(ctx context.Context) (io.ReadCloser, error)
	body io.ReadCloser
}

// Lazy returns an entry whose payload is opened only when it is written.
func Lazy(name, source string, modified time.Time, open func(ctx context.Context) (io.ReadCloser, error)) Entry {
	return Entry{Name: name, Source: source, Modified: modified, open: open}
}

// Opened returns an entry backed by an open body. The archive closes it.
func Opened(name, source string, modified time.Time, body io.ReadCloser) Entry {
	return Entry{Name: name, Source: source, Modified: modified, body: body}
}

// Archive is a manifest of entries written in order by Stream. Close
// releases any payload that was opened but not written.
type Archive struct {
	entries []Entry
	metrics *metrics.Domain
}

// New builds an archive over entries. Names are made unique by suffixing
// " (2)", " (3)" and so on before the extension.
func New(entries []Entry, m *metrics.Domain) *Archive {
	seen := make(map[string]int, len(entries))
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Name = uniqueName(seen, e.Name)
		out[i] = e
	}
	return &Archive{entries: out, metrics: m}
}

func (a *Archive) Len() int { return len(a.entries) }

// Names lists entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Stream writes the archive to w. Each entry is compressed, copied and
// closed before the next is opened. If w has a Flush method it is called
// after every entry so the transport can send bytes as they are produced.
// Stream stops at the first error or when ctx is done.
func (a *Archive) Stream(ctx context.Context, w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	flusher, _ := w.(interface{ Flush() error })

	for i := range a.entries {
		if err := ctx.Err(); err != nil {
			return cw.n, err
		}
		if err := a.writeEntry(ctx, zw, &a.entries[i]); err != nil {
			return cw.n, err
		}
		if err := zw.Flush(); err != nil {
			return cw.n, fmt.Errorf("flush archive: %w", err)
		}
		if flusher != nil {
			if err := flusher.Flush(); err != nil {
				return cw.n, fmt.Errorf("flush archive: %w", err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("finish archive: %w", err)
	}
	if flusher != nil {
		if err := flusher.Flush(); err != nil {
			return cw.n, fmt.Errorf("flush archive: %w", err)
		}
	}
	return cw.n, nil
}

func (a *Archive) writeEntry(ctx context.Context, zw *zip.Writer, e *Entry) error {
	body := e.body
	e.body = nil
	if body == nil {
		if e.open == nil {
			return fmt.Errorf("archive entry %q has no payload", e.Name)
		}
		var err error
		body, err = e.open(ctx)
		if err != nil {
			return fmt.Errorf("open %q: %w", e.Name, err)
		}
	}
	defer body.Close()

	modified := e.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     e.Name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create %q: %w", e.Name, err)
	}
	if _, err := io.Copy(fw, &ctxReader{ctx: ctx, r: body}); err != nil {
		return fmt.Errorf("write %q: %w", e.Name, err)
	}
	a.metrics.ArchiveEntry(e.Source)
	return nil
}

// Close releases payloads that Stream never reached.
func (a *Archive) Close() error {
	var errs []error
	for i := range a.entries {
		if b := a.entries[i].body; b != nil {
			a.entries[i].body = nil
			if err := b.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
