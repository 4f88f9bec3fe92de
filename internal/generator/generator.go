// Package generator turns a template and a FieldMap into a finished PDF,
// either through a remote document-editing service or through a local docx
// template and a headless office converter.
package generator

import (
	"context"

	"certdocs/internal/model"
)

// Strategy selects a Generator implementation.
type Strategy string

const (
	StrategyRemote Strategy = "remote"
	StrategyLocal  Strategy = "local"
)

// ParseStrategy accepts "remote" and "local"; anything else reports false.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyRemote, StrategyLocal:
		return Strategy(s), true
	}
	return "", false
}

// Generator fills the template identified by templateRef with fields and
// returns the resulting PDF bytes.
type Generator interface {
	Generate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error)
}
