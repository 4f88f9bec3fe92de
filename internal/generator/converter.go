package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"certdocs/internal/apperror"
	"certdocs/internal/logging"
	"certdocs/internal/metrics"
)

const (
	defaultConverterTimeout = 60 * time.Second
	sourcePattern           = "formulario_*.docx"
	maxOutputTail           = 512
)

type ConverterOptions struct {
	// Bin is the converter executable, typically soffice.
	Bin string
	// WorkDir holds the temporary source and produced files. Empty uses os.TempDir.
	WorkDir string
	// Timeout bounds one conversion, including the wait for a free slot.
	Timeout time.Duration
	// MaxConcurrent is the number of converter processes allowed at once.
	MaxConcurrent int
}

// Converter runs a headless office converter to turn docx bytes into PDF
// bytes. Runs are limited to MaxConcurrent processes and every temporary file
// is removed before Convert returns.
type Converter struct {
	bin     string
	workDir string
	timeout time.Duration
	slots   *semaphore.Weighted
	log     logging.Logger
	metrics *metrics.Domain
}

func NewConverter(opts ConverterOptions, log logging.Logger, m *metrics.Domain) *Converter {
	if opts.Bin == "" {
		opts.Bin = "soffice"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultConverterTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Converter{
		bin:     opts.Bin,
		workDir: opts.WorkDir,
		timeout: opts.Timeout,
		slots:   semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		log:     log,
		metrics: m,
	}
}

// Convert writes src to a uniquely named file in the work directory, runs
// "<bin> --headless --convert-to pdf --outdir <dir> <file>" and returns the
// produced PDF. Failures are reported as conversion errors.
func (c *Converter) Convert(ctx context.Context, src []byte) (pdf []byte, err error) {
	const op = "generator.Convert"
	defer func() { c.metrics.Conversion(err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("wait for converter slot: %w", err))
	}
	defer c.slots.Release(1)

	dir, err := filepath.Abs(c.workDir)
	if err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("resolve work dir: %w", err))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("create work dir: %w", err))
	}

	f, err := os.CreateTemp(dir, sourcePattern)
	if err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("create source file: %w", err))
	}
	srcPath := f.Name()
	outPath := filepath.Join(dir, strings.TrimSuffix(filepath.Base(srcPath), ".docx")+".pdf")
	defer c.remove(ctx, outPath)
	defer c.remove(ctx, srcPath)

	_, werr := f.Write(src)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("write source file: %w", err))
	}

	cmd := exec.CommandContext(ctx, c.bin, "--headless", "--convert-to", "pdf", "--outdir", dir, srcPath)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("converter did not finish: %w", ctxErr))
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, apperror.Conversion(op, fmt.Errorf("converter exited with code %d: %s", exitErr.ExitCode(), tail(out)))
		}
		return nil, apperror.Conversion(op, fmt.Errorf("run converter: %w", err))
	}

	pdf, err = os.ReadFile(outPath)
	if err != nil {
		return nil, apperror.Conversion(op, fmt.Errorf("read converted file: %w", err))
	}
	return pdf, nil
}

// remove deletes path, logging anything other than a missing file.
func (c *Converter) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn(ctx, "converter cleanup failed", "path", path, "error", err)
	}
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputTail {
		s = s[len(s)-maxOutputTail:]
	}
	return s
}
