package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain_Conversion(t *testing.T) {
	d, err := NewDomain(prometheus.NewRegistry())
	require.NoError(t, err)

	d.Conversion(nil)
	d.Conversion(errors.New("exit 1"))
	d.Conversion(fmt.Errorf("run: %w", context.DeadlineExceeded))
	d.Conversion(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(d.conversions.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.conversions.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.conversions.WithLabelValues(ResultTimeout)))
}

func TestDomain_ArchiveEntry(t *testing.T) {
	d, err := NewDomain(prometheus.NewRegistry())
	require.NoError(t, err)

	d.ArchiveEntry(SourceLocal)
	d.ArchiveEntry(SourceLocal)
	d.ArchiveEntry(SourceRemote)

	assert.Equal(t, 2.0, testutil.ToFloat64(d.archiveEntries.WithLabelValues(SourceLocal)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.archiveEntries.WithLabelValues(SourceRemote)))
}

func TestDomain_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewDomain(reg)
	require.NoError(t, err)

	_, err = NewDomain(reg)
	assert.Error(t, err)
}

func TestDomain_NilIsNoop(t *testing.T) {
	var d *Domain
	d.Conversion(nil)
	d.ArchiveEntry(SourceLocal)
}
