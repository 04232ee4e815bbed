package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/adapters/observability"
	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/schema"
)

// EditService sequences a single edit instruction through the patch
// engine: normalize, validate, merge, project, render, persist. Failures
// along the way come back as *schema.Error data; only infrastructure
// problems (storage, rendering) surface as plain errors.
type EditService struct {
	repo     domain.BrochureRepository
	patcher  domain.PatchProvider
	renderer domain.Renderer
	exporter domain.Exporter
	cache    domain.Cache
	outRoot  string
}

func NewEditService(
	repo domain.BrochureRepository,
	patcher domain.PatchProvider,
	renderer domain.Renderer,
	exporter domain.Exporter,
	cache domain.Cache,
	outRoot string,
) *EditService {
	return &EditService{repo: repo, patcher: patcher, renderer: renderer, exporter: exporter, cache: cache, outRoot: outRoot}
}

type EditResult struct {
	Brochure *domain.Brochure
	Document *schema.Document
}

// Edit applies one natural-language instruction to a brochure's document.
// No retries here: provider retries belong to the providers themselves.
func (s *EditService) Edit(ctx context.Context, id int64, instruction string) (*EditResult, error) {
	instruction = strings.TrimSpace(instruction)
	if len(instruction) < 3 {
		observability.ObserveEdit("rejected")
		return nil, &schema.Error{Kind: schema.KindNeedsClarification, Message: "Instruction is too short."}
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := s.loadDocument(b)

	raw, err := s.patcher.GeneratePatch(ctx, doc, instruction)
	if err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("patch generation failed")
		observability.ObserveEdit("rejected")
		return nil, &schema.Error{Kind: schema.KindNeedsClarification, Message: "Patch generation failed."}
	}

	patch, err := schema.Normalize(raw)
	if err != nil {
		return nil, s.terminal(id, "normalize", err)
	}
	log.Debug().Int64("id", id).Interface("patch", patch).Msg("edit normalized")

	if err := schema.Validate(patch); err != nil {
		return nil, s.terminal(id, "validate", err)
	}

	merged, err := schema.Merge(doc, patch)
	if err != nil {
		return nil, s.terminal(id, "merge", err)
	}

	renderData := schema.Project(merged)
	html, err := s.renderer.Render(renderData)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	runDir := filepath.Dir(filepath.Join(s.outRoot, filepath.FromSlash(b.PNGPath)))
	paths, err := s.exporter.Export(ctx, html, runDir, "brochure")
	if err != nil {
		// Persist nothing on a failed export: the stored document must
		// stay consistent with the rendered artifact.
		return nil, fmt.Errorf("export: %w", err)
	}

	b.SchemaJSON, _ = json.Marshal(merged)
	b.Headline = renderData.Headline
	b.Description = renderData.Description
	b.Amenities = renderData.Amenities
	b.PNGPath = s.relOutput(paths.PNGPath)
	b.PDFPath = s.relOutput(paths.PDFPath)
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, brochureKey(id))
		invalidateRecentLists(ctx, s.cache)
	}
	observability.ObserveEdit("merged")
	log.Info().Int64("id", id).Msg("edit applied")
	return &EditResult{Brochure: b, Document: merged}, nil
}

// terminal records the outcome of a rejected or no-op edit and forwards
// the verdict unchanged.
func (s *EditService) terminal(id int64, stage string, err error) error {
	if se, ok := err.(*schema.Error); ok && se.Kind == schema.KindNoChanges {
		observability.ObserveEdit("noop")
		log.Info().Int64("id", id).Str("stage", stage).Msg("edit is a no-op")
		return err
	}
	observability.ObserveEdit("rejected")
	log.Info().Int64("id", id).Str("stage", stage).Err(err).Msg("edit rejected")
	return err
}

// loadDocument deserializes the stored document, rebuilding it from the
// denormalized row when the column is empty or corrupt.
func (s *EditService) loadDocument(b *domain.Brochure) *schema.Document {
	if len(b.SchemaJSON) > 0 {
		var doc schema.Document
		if err := json.Unmarshal(b.SchemaJSON, &doc); err == nil && doc.Version > 0 {
			return &doc
		}
		log.Warn().Int64("id", b.ID).Msg("stored document unreadable; rebuilding from record")
	}
	return s.rebuildDocument(b)
}

func (s *EditService) rebuildDocument(b *domain.Brochure) *schema.Document {
	heroURL := ""
	heroPath := filepath.Join(filepath.Dir(filepath.Join(s.outRoot, filepath.FromSlash(b.PNGPath))), "hero.png")
	if _, err := os.Stat(heroPath); err == nil {
		heroURL = fileURI(heroPath)
	}
	return schema.Build(schema.BuildInput{
		Prompt:    b.Prompt,
		HotelName: b.HotelName,
		Location:  b.Location,
		HeroURL:   heroURL,
		Copy: schema.Copy{
			Headline:    b.Headline,
			Description: b.Description,
			Amenities:   b.Amenities,
		},
		HeroSource: schema.SourceAI,
	})
}

func (s *EditService) relOutput(p string) string {
	if rel, err := filepath.Rel(s.outRoot, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}
