package main

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"luxe_brochure/internal/adapters/aitext"
	server "luxe_brochure/internal/adapters/http_server"
	"luxe_brochure/internal/adapters/imagegen"
	"luxe_brochure/internal/adapters/memcache"
	"luxe_brochure/internal/adapters/observability"
	redisad "luxe_brochure/internal/adapters/redis"
	"luxe_brochure/internal/adapters/render"
	"luxe_brochure/internal/app"
	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/shared"
	mysqlrepo "luxe_brochure/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
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
	log.Info().Msg("database connection ok")

	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, "runs"), 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("output dir unavailable")
	}

	// deps
	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.CacheBackend == "memory" {
		cache = memcache.New(cfg.CacheTTL)
		log.Info().Msg("using in-process cache")
	} else {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	var copyProv domain.CopyProvider
	var patchProv domain.PatchProvider
	if cfg.AIAPIKey != "" {
		ai, err := aitext.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AITextModel)
		if err != nil {
			log.Fatal().Err(err).Msg("ai client init failed")
		}
		copyProv, patchProv = ai, ai
	}

	images := imagegen.New(cfg.ImageProvider, cfg.AIAPIKey, cfg.AIImageModel, 2)

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("renderer init failed")
	}
	exporter := render.NewChromiumExporter(cfg.ChromeBin)

	fallback := app.NewCopyFallback(time.Now().UnixNano())
	gen := app.NewGenerateService(repo, copyProv, images, images, renderer, exporter, cache, fallback, cfg.OutputDir)
	edit := app.NewEditService(repo, patchProv, renderer, exporter, cache, cfg.OutputDir)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Gen: gen, Edit: edit, Q: q, OutRoot: cfg.OutputDir})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
