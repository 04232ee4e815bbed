package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/domain"
)

const (
	pageWidth  = 1080
	pageHeight = 1350
)

// ChromiumExporter drives a headless browser binary to print the
// rendered HTML to PNG and PDF at the fixed brochure size.
type ChromiumExporter struct {
	bin     string
	timeout time.Duration
}

func NewChromiumExporter(bin string) *ChromiumExporter {
	if bin == "" {
		bin = findChromium()
	}
	return &ChromiumExporter{bin: bin, timeout: 60 * time.Second}
}

func (e *ChromiumExporter) Export(ctx context.Context, html, outDir, baseName string) (domain.ExportPaths, error) {
	if e.bin == "" {
		return domain.ExportPaths{}, fmt.Errorf("render: no chromium binary found")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return domain.ExportPaths{}, err
	}

	htmlPath := filepath.Join(outDir, baseName+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return domain.ExportPaths{}, err
	}

	paths := domain.ExportPaths{
		PNGPath: filepath.Join(outDir, baseName+".png"),
		PDFPath: filepath.Join(outDir, baseName+".pdf"),
	}

	if err := e.run(ctx,
		fmt.Sprintf("--screenshot=%s", paths.PNGPath),
		fmt.Sprintf("--window-size=%d,%d", pageWidth, pageHeight),
		"--hide-scrollbars",
		htmlPath,
	); err != nil {
		return domain.ExportPaths{}, fmt.Errorf("render: png export: %w", err)
	}

	if err := e.run(ctx,
		fmt.Sprintf("--print-to-pdf=%s", paths.PDFPath),
		"--no-pdf-header-footer",
		htmlPath,
	); err != nil {
		return domain.ExportPaths{}, fmt.Errorf("render: pdf export: %w", err)
	}

	log.Info().Str("png", paths.PNGPath).Str("pdf", paths.PDFPath).Msg("brochure exported")
	return paths, nil
}

func (e *ChromiumExporter) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	base := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--force-device-scale-factor=1",
	}
	cmd := exec.CommandContext(ctx, e.bin, append(base, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}

func findChromium() string {
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}
