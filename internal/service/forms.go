package service

import (
	"context"
	"fmt"

	"certdocs/internal/apperror"
	"certdocs/internal/config"
	"certdocs/internal/generator"
	"certdocs/internal/logging"
	"certdocs/internal/model"
	"certdocs/internal/pdfstamp"
)

// Stamper places an overlay on a PDF page.
type Stamper interface {
	Stamp(ctx context.Context, pdf []byte, ov pdfstamp.Overlay) ([]byte, error)
}

// FormRequest asks for one filled form. Strategy may be empty to use the
// default; Signature, when present, is stamped with the kind's preset.
type FormRequest struct {
	Kind      model.Kind
	Strategy  generator.Strategy
	Fields    model.FieldMap
	SubjectID int64
	ActorID   int64
	Signature []byte
}

// FormResult is the stored artifact and the PDF that was stored.
type FormResult struct {
	Artifact *model.Artifact
	PDF      []byte
}

type FormService interface {
	// Generate fills, optionally signs, and stores a form.
	Generate(ctx context.Context, req FormRequest) (*FormResult, error)

	GenerateViaRemoteTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error)
	GenerateViaLocalTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error)

	StampImage(ctx context.Context, pdf []byte, ov pdfstamp.Overlay) ([]byte, error)
	// StampPreset stamps image at the named overlay preset.
	StampPreset(ctx context.Context, pdf []byte, preset string, image []byte) ([]byte, error)
}

// FormTemplates maps each form kind to its template reference per strategy.
type FormTemplates map[generator.Strategy]map[model.Kind]string

// signaturePresets names the preset used to sign each form kind.
var signaturePresets = map[model.Kind]string{
	model.KindMedicalForm:       config.PresetMedicSignature,
	model.KindPsychologicalForm: config.PresetPsychologistSignature,
}

type formService struct {
	generators      map[generator.Strategy]generator.Generator
	templates       FormTemplates
	defaultStrategy generator.Strategy
	stamper         Stamper
	presets         map[string]config.OverlayPreset
	artifacts       ArtifactService
	log             logging.Logger
}

// FormServiceDeps groups the collaborators of NewFormService. Generators
// without an entry are treated as not configured.
type FormServiceDeps struct {
	Generators      map[generator.Strategy]generator.Generator
	Templates       FormTemplates
	DefaultStrategy generator.Strategy
	Stamper         Stamper
	Presets         map[string]config.OverlayPreset
	Artifacts       ArtifactService
	Log             logging.Logger
}

func NewFormService(d FormServiceDeps) FormService {
	return &formService{
		generators:      d.Generators,
		templates:       d.Templates,
		defaultStrategy: d.DefaultStrategy,
		stamper:         d.Stamper,
		presets:         d.Presets,
		artifacts:       d.Artifacts,
		log:             d.Log,
	}
}

func (s *formService) Generate(ctx context.Context, req FormRequest) (*FormResult, error) {
	const op = "forms.Generate"
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	gen, ok := s.generators[strategy]
	if !ok {
		return nil, apperror.Validation(op, fmt.Sprintf("generation strategy %q is not available", strategy))
	}
	ref, ok := s.templates[strategy][req.Kind]
	if !ok || ref == "" {
		return nil, apperror.Validation(op, fmt.Sprintf("no %s template for %s", strategy, req.Kind))
	}

	// Fail before the expensive part when the slot is already taken.
	exists, err := s.artifacts.Exists(ctx, req.SubjectID, req.ActorID, req.Kind)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict(op, req.Kind, req.SubjectID, req.ActorID)
	}

	pdf, err := gen.Generate(ctx, ref, req.Fields)
	if err != nil {
		return nil, err
	}

	if len(req.Signature) > 0 {
		preset, ok := signaturePresets[req.Kind]
		if !ok {
			return nil, apperror.Validation(op, fmt.Sprintf("%s forms are not signed", req.Kind))
		}
		pdf, err = s.StampPreset(ctx, pdf, preset, req.Signature)
		if err != nil {
			return nil, err
		}
	}

	a, err := s.artifacts.Save(ctx, pdf, req.Kind, req.SubjectID, req.ActorID)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "form generated", "kind", req.Kind, "strategy", strategy, "artifact_id", a.ID, "signed", len(req.Signature) > 0)
	return &FormResult{Artifact: a, PDF: pdf}, nil
}

func (s *formService) GenerateViaRemoteTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	return s.generateWith(ctx, generator.StrategyRemote, templateRef, fields)
}

func (s *formService) GenerateViaLocalTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	return s.generateWith(ctx, generator.StrategyLocal, templateRef, fields)
}

func (s *formService) generateWith(ctx context.Context, strategy generator.Strategy, ref string, fields model.FieldMap) ([]byte, error) {
	gen, ok := s.generators[strategy]
	if !ok {
		return nil, apperror.Validation("forms.generate", fmt.Sprintf("generation strategy %q is not available", strategy))
	}
	return gen.Generate(ctx, ref, fields)
}

func (s *formService) StampImage(ctx context.Context, pdf []byte, ov pdfstamp.Overlay) ([]byte, error) {
	return s.stamper.Stamp(ctx, pdf, ov)
}

func (s *formService) StampPreset(ctx context.Context, pdf []byte, preset string, image []byte) ([]byte, error) {
	const op = "forms.StampPreset"
	p, ok := s.presets[preset]
	if !ok {
		return nil, apperror.Validation(op, fmt.Sprintf("unknown overlay preset %q", preset))
	}
	ov, err := pdfstamp.FromPreset(p, image)
	if err != nil {
		return nil, fmt.Errorf("%s: preset %s: %w", op, preset, err)
	}
	return s.stamper.Stamp(ctx, pdf, ov)
}
