package generator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdocs/internal/apperror"
	"certdocs/internal/logging"
	"certdocs/internal/metrics"
)

func newTestConverter(t *testing.T, script string, timeout time.Duration, slots int) (*Converter, string) {
	t.Helper()
	workDir := t.TempDir()
	m, err := metrics.NewDomain(prometheus.NewRegistry())
	require.NoError(t, err)
	conv := NewConverter(ConverterOptions{
		Bin:           writeScript(t, script),
		WorkDir:       workDir,
		Timeout:       timeout,
		MaxConcurrent: slots,
	}, logging.Nop(), m)
	return conv, workDir
}

func TestConverter_Success(t *testing.T) {
	conv, workDir := newTestConverter(t, copyScript, 5*time.Second, 1)

	out, err := conv.Convert(context.Background(), []byte("docx-bytes"))

	require.NoError(t, err)
	assert.Equal(t, []byte("docx-bytes"), out)
	assertEmptyDir(t, workDir)
}

func TestConverter_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		wantMsg string
	}{
		{
			name:    "non-zero exit",
			script:  "echo 'source file could not be loaded' >&2\nexit 1",
			timeout: 5 * time.Second,
			wantMsg: "converter exited with code 1: source file could not be loaded",
		},
		{
			name:    "exit zero without output file",
			script:  "exit 0",
			timeout: 5 * time.Second,
			wantMsg: "read converted file",
		},
		{
			name:    "timeout",
			script:  "exec sleep 5",
			timeout: 200 * time.Millisecond,
			wantMsg: "converter did not finish",
		},
		{
			name:    "partial output removed on failure",
			script:  copyScript + "\nexit 2",
			timeout: 5 * time.Second,
			wantMsg: "converter exited with code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, workDir := newTestConverter(t, tt.script, tt.timeout, 1)

			out, err := conv.Convert(context.Background(), []byte("docx-bytes"))

			assert.Nil(t, out)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrConversion)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assertEmptyDir(t, workDir)
		})
	}
}

func TestConverter_MissingBinary(t *testing.T) {
	workDir := t.TempDir()
	conv := NewConverter(ConverterOptions{Bin: "/nonexistent/soffice", WorkDir: workDir}, logging.Nop(), nil)

	_, err := conv.Convert(context.Background(), []byte("x"))

	assert.ErrorIs(t, err, apperror.ErrConversion)
	assert.Contains(t, err.Error(), "run converter")
	assertEmptyDir(t, workDir)
}

func TestConverter_SerializesProcesses(t *testing.T) {
	// The script fails if another instance holds the lock directory.
	script := `mkdir "$5/busy.lock" || exit 3
sleep 0.1
` + copyScript + `
rmdir "$5/busy.lock"`
	conv, workDir := newTestConverter(t, script, 10*time.Second, 1)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = conv.Convert(context.Background(), []byte("docx"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assertEmptyDir(t, workDir)
}

func TestConverter_CanceledWhileWaitingForSlot(t *testing.T) {
	conv, _ := newTestConverter(t, copyScript, 5*time.Second, 1)
	require.NoError(t, conv.slots.Acquire(context.Background(), 1))
	defer conv.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Convert(ctx, []byte("x"))
	assert.ErrorIs(t, err, apperror.ErrConversion)
	assert.ErrorIs(t, err, context.Canceled)
}
