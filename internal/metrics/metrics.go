// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Conversion results.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

// Archive entry sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Domain counts converter runs and archive entries. A nil *Domain is valid
// and records nothing.
type Domain struct {
	conversions    *prometheus.CounterVec
	archiveEntries *prometheus.CounterVec
}

// NewDomain creates the domain collectors and registers them on reg.
func NewDomain(reg prometheus.Registerer) (*Domain, error) {
	d := &Domain{
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certdocs_conversions_total",
				Help: "Total number of office-to-PDF converter runs by result.",
			},
			[]string{"result"},
		),
		archiveEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certdocs_archive_entries_total",
				Help: "Total number of entries written to subject archives by source.",
			},
			[]string{"source"},
		),
	}

	for _, c := range []prometheus.Collector{d.conversions, d.archiveEntries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Conversion records the outcome of one converter run.
func (d *Domain) Conversion(err error) {
	if d == nil {
		return
	}
	result := ResultOK
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result = ResultTimeout
	case err != nil:
		result = ResultError
	}
	d.conversions.WithLabelValues(result).Inc()
}

// ArchiveEntry records one entry written to an archive.
func (d *Domain) ArchiveEntry(source string) {
	if d == nil {
		return
	}
	d.archiveEntries.WithLabelValues(source).Inc()
}
