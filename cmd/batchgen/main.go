// batchgen generates brochures for a file of prompts, one per line.
// Useful for seeding demo data and for soak-testing the pipeline.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"luxe_brochure/internal/adapters/aitext"
	"luxe_brochure/internal/adapters/imagegen"
	"luxe_brochure/internal/adapters/memcache"
	"luxe_brochure/internal/adapters/observability"
	"luxe_brochure/internal/adapters/render"
	"luxe_brochure/internal/app"
	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/shared"
	mysqlrepo "luxe_brochure/internal/storage/mysql"
)

func main() {
	promptsPath := flag.String("prompts", "prompts.txt", "file with one brochure prompt per line")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	prompts, err := readPrompts(*promptsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *promptsPath).Msg("read prompts failed")
	}
	log.Info().Int("prompts", len(prompts)).Int("workers", cfg.Workers).Msg("batchgen starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if _, err := db.Exec(mysqlrepo.SchemaDDL()); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	repo := mysqlrepo.New(db)

	var copyProv domain.CopyProvider
	if cfg.AIAPIKey != "" {
		copyProv, err = aitext.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AITextModel)
		if err != nil {
			log.Fatal().Err(err).Msg("ai client init failed")
		}
	}
	images := imagegen.New(cfg.ImageProvider, cfg.AIAPIKey, cfg.AIImageModel, 2)

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("renderer init failed")
	}
	exporter := render.NewChromiumExporter(cfg.ChromeBin)

	// No shared cache to invalidate in batch mode; a throwaway in-process
	// one keeps the service wiring uniform.
	cache := memcache.New(cfg.CacheTTL)
	fallback := app.NewCopyFallback(time.Now().UnixNano())
	gen := app.NewGenerateService(repo, copyProv, images, images, renderer, exporter, cache, fallback, cfg.OutputDir)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, prompt := range prompts {
		prompt := prompt

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			b, _, err := gen.Generate(ctx, app.GenerateRequest{Prompt: prompt})
			if err != nil {
				log.Warn().Str("prompt", prompt).Err(err).Msg("generate failed")
				return
			}
			log.Info().Int64("id", b.ID).Str("hotel", b.HotelName).Msg("generate ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("batch generation completed")
}

func readPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
