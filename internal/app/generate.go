package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/schema"
)

var ErrPromptTooShort = errors.New("prompt is too short")

type GenerateRequest struct {
	Prompt   string
	HeroURL  string // user-supplied remote image, wins over generation
	HeroPath string // user-supplied local file
}

type GenerateService struct {
	repo     domain.BrochureRepository
	copy     domain.CopyProvider // nil means always fall back
	image    domain.ImageProvider
	fetcher  domain.ImageFetcher
	renderer domain.Renderer
	exporter domain.Exporter
	cache    domain.Cache
	fallback *CopyFallback
	outRoot  string
}

func NewGenerateService(
	repo domain.BrochureRepository,
	copyP domain.CopyProvider,
	image domain.ImageProvider,
	fetcher domain.ImageFetcher,
	renderer domain.Renderer,
	exporter domain.Exporter,
	cache domain.Cache,
	fallback *CopyFallback,
	outRoot string,
) *GenerateService {
	return &GenerateService{
		repo: repo, copy: copyP, image: image, fetcher: fetcher,
		renderer: renderer, exporter: exporter, cache: cache,
		fallback: fallback, outRoot: outRoot,
	}
}

// Generate runs the full pipeline: extract hotel info, produce copy
// (AI or template fallback), resolve the hero image, build the canonical
// document, render and export, then persist.
func (s *GenerateService) Generate(ctx context.Context, req GenerateRequest) (*domain.Brochure, *schema.Document, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if len(prompt) < 5 {
		return nil, nil, ErrPromptTooShort
	}

	hotelName, location := ExtractHotelInfo(prompt)
	copyText := s.generateCopy(ctx, prompt, hotelName, location)

	runDir := filepath.Join(s.outRoot, "runs", timestamp()+"_"+slugify(hotelName))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, nil, err
	}

	heroURL, heroSource := s.resolveHero(ctx, req, prompt, hotelName, location, runDir)
	if heroURL == "" {
		log.Info().Msg("hero image missing; using layout without image")
	}

	doc := schema.Build(schema.BuildInput{
		Prompt:     prompt,
		HotelName:  hotelName,
		Location:   location,
		HeroURL:    heroURL,
		Copy:       copyText,
		HeroSource: heroSource,
	})
	renderData := schema.Project(doc)

	s.writeRunArtifacts(runDir, prompt, doc, renderData)

	html, err := s.renderer.Render(renderData)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}
	paths, err := s.exporter.Export(ctx, html, runDir, "brochure")
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}

	schemaJSON, _ := json.Marshal(doc)
	b := &domain.Brochure{
		Prompt:      prompt,
		HotelName:   hotelName,
		Location:    location,
		Headline:    copyText.Headline,
		Description: copyText.Description,
		Amenities:   copyText.Amenities,
		SchemaJSON:  schemaJSON,
		PNGPath:     s.relOutput(paths.PNGPath),
		PDFPath:     s.relOutput(paths.PDFPath),
	}
	id, err := s.repo.Insert(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	b.ID = id

	if s.cache != nil {
		invalidateRecentLists(ctx, s.cache)
	}
	log.Info().Int64("id", id).Str("hotel", hotelName).Str("location", location).Msg("brochure generated")
	return b, doc, nil
}

func (s *GenerateService) generateCopy(ctx context.Context, prompt, hotelName, location string) schema.Copy {
	if s.copy != nil {
		c, err := s.copy.GenerateCopy(ctx, prompt, hotelName, location)
		if err == nil {
			return c
		}
		log.Warn().Err(err).Msg("copy provider failed; using template fallback")
	}
	return s.fallback.Copy(hotelName, location)
}

// resolveHero prefers user-supplied images over generation: remote URL,
// then local path, then the AI provider. Every failure degrades to the
// next option and finally to no image at all.
func (s *GenerateService) resolveHero(ctx context.Context, req GenerateRequest, prompt, hotelName, location, runDir string) (heroURL, heroSource string) {
	if req.HeroURL != "" && s.fetcher != nil {
		dest := filepath.Join(runDir, "hero.png")
		err := s.fetcher.FetchImage(ctx, req.HeroURL, dest)
		if err == nil {
			return fileURI(dest), schema.SourceUser
		}
		log.Warn().Err(err).Str("url", req.HeroURL).Msg("hero download failed")
	}
	if req.HeroPath != "" {
		dest, err := copyLocalHero(req.HeroPath, runDir)
		if err == nil {
			return fileURI(dest), schema.SourceUser
		}
		log.Warn().Err(err).Str("path", req.HeroPath).Msg("hero copy failed")
	}
	if s.image != nil {
		if uri, err := s.image.GenerateHeroImage(ctx, prompt, hotelName, location, runDir); err == nil && uri != "" {
			return uri, schema.SourceAI
		} else if err != nil {
			log.Warn().Err(err).Msg("hero generation failed")
		}
	}
	return "", schema.SourceAI
}

// writeRunArtifacts drops debug artifacts next to the exported files.
// Failures are logged, never fatal.
func (s *GenerateService) writeRunArtifacts(runDir, prompt string, doc *schema.Document, rd schema.RenderData) {
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(runDir, name), data, 0o644); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("run artifact write failed")
		}
	}
	write("prompt.txt", []byte(prompt))
	if b, err := json.MarshalIndent(doc, "", "  "); err == nil {
		write("schema.json", b)
	}
	if b, err := json.MarshalIndent(rd, "", "  "); err == nil {
		write("data.json", b)
	}
}

func (s *GenerateService) relOutput(p string) string {
	if rel, err := filepath.Rel(s.outRoot, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}

func copyLocalHero(src, runDir string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(runDir, filepath.Base(src))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	out := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return "brochure"
	}
	return out
}

func timestamp() string {
	return time.Now().UTC().Format("20060102_150405")
}

func fileURI(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return "file://" + filepath.ToSlash(abs)
}
