package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdocs/internal/metrics"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = b
	}
	return out
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

// flushRecorder counts Flush calls and records how many bytes had been
// written at each one.
type flushRecorder struct {
	bytes.Buffer
	flushes []int
}

func (f *flushRecorder) Flush() error {
	f.flushes = append(f.flushes, f.Len())
	return nil
}

func TestArchive_StreamInOrder(t *testing.T) {
	m, err := metrics.NewDomain(prometheus.NewRegistry())
	require.NoError(t, err)

	large := bytes.Repeat([]byte("0123456789abcdef"), 64<<10)
	remote := &trackedBody{Reader: strings.NewReader("%PDF credential")}
	var opened []string

	open := func(name string, payload []byte) func(context.Context) (io.ReadCloser, error) {
		return func(context.Context) (io.ReadCloser, error) {
			opened = append(opened, name)
			return io.NopCloser(bytes.NewReader(payload)), nil
		}
	}

	a := New([]Entry{
		Lazy("Documento Medico.pdf", metrics.SourceLocal, time.Now(), open("medico", []byte("%PDF medico"))),
		Lazy("Documento psicologico.pdf", metrics.SourceLocal, time.Time{}, open("psico", large)),
		Opened("Credencial.pdf", metrics.SourceRemote, time.Now(), remote),
	}, m)
	assert.Equal(t, 3, a.Len())

	var out flushRecorder
	n, err := a.Stream(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)

	assert.Equal(t, []string{"Documento Medico.pdf", "Documento psicologico.pdf", "Credencial.pdf"}, zipNames(t, out.Bytes()))
	files := readZip(t, out.Bytes())
	assert.Equal(t, []byte("%PDF medico"), files["Documento Medico.pdf"])
	assert.Equal(t, large, files["Documento psicologico.pdf"])
	assert.Equal(t, []byte("%PDF credential"), files["Credencial.pdf"])

	assert.Equal(t, []string{"medico", "psico"}, opened)
	assert.True(t, remote.closed)
	assert.Len(t, out.flushes, 4, "one flush per entry plus the central directory")
	assert.Less(t, out.flushes[0], out.flushes[1])
	assert.Less(t, out.Len(), len(large), "entries are compressed")
	assert.NoError(t, a.Close())
}

func TestArchive_DuplicateNames(t *testing.T) {
	body := func() io.ReadCloser { return io.NopCloser(strings.NewReader("x")) }
	a := New([]Entry{
		Opened("Credencial.pdf", "", time.Time{}, body()),
		Opened("Credencial.pdf", "", time.Time{}, body()),
		Opened("Credencial.pdf", "", time.Time{}, body()),
	}, nil)

	assert.Equal(t, []string{"Credencial.pdf", "Credencial (2).pdf", "Credencial (3).pdf"}, a.Names())
	require.NoError(t, a.Close())
}

func TestArchive_OpenFailureStops(t *testing.T) {
	remote := &trackedBody{Reader: strings.NewReader("remote")}
	a := New([]Entry{
		Lazy("a.pdf", metrics.SourceLocal, time.Time{}, func(context.Context) (io.ReadCloser, error) {
			return nil, errors.New("object missing")
		}),
		Opened("b.pdf", metrics.SourceRemote, time.Time{}, remote),
	}, nil)

	_, err := a.Stream(context.Background(), io.Discard)
	assert.ErrorContains(t, err, `open "a.pdf": object missing`)
	assert.False(t, remote.closed)

	require.NoError(t, a.Close())
	assert.True(t, remote.closed)
}

func TestArchive_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &trackedBody{Reader: strings.NewReader("first")}
	second := &trackedBody{Reader: strings.NewReader("second")}

	a := New([]Entry{
		Lazy("a.pdf", "", time.Time{}, func(context.Context) (io.ReadCloser, error) {
			cancel()
			return first, nil
		}),
		Opened("b.pdf", "", time.Time{}, second),
	}, nil)
	defer a.Close()

	_, err := a.Stream(ctx, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, first.closed, "entry in progress is released")

	require.NoError(t, a.Close())
	assert.True(t, second.closed)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestArchive_WriterFailure(t *testing.T) {
	body := &trackedBody{Reader: bytes.NewReader(bytes.Repeat([]byte("z"), 1<<20))}
	a := New([]Entry{Opened("a.pdf", "", time.Time{}, body)}, nil)

	_, err := a.Stream(context.Background(), failingWriter{})
	assert.ErrorContains(t, err, "connection reset")
	assert.True(t, body.closed)
}
