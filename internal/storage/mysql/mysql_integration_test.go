//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"luxe_brochure/internal/domain"
	mysqlrepo "luxe_brochure/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	// Isolated MySQL; Docker picks a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=brochures",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/brochures?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(mysqlrepo.SchemaDDL()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestRepo_MySQL_InsertGetUpdate(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	b := &domain.Brochure{
		Prompt:      "a boutique resort in Zanzibar",
		HotelName:   "Azure Sands Resort",
		Location:    "Zanzibar, Tanzania",
		Headline:    "Where the ocean sets the pace",
		Description: "Barefoot luxury on a private beach.",
		Amenities:   []string{"Infinity pool", "Private beach", "Spa", "Fine dining"},
		SchemaJSON:  []byte(`{"meta":{"schema_version":2}}`),
		PNGPath:     "runs/20250101_000000_azure/brochure.png",
		PDFPath:     "runs/20250101_000000_azure/brochure.pdf",
	}

	id, err := repo.Insert(ctx, b)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 || b.Version != 1 {
		t.Fatalf("unexpected insert state: id=%d version=%d", id, b.Version)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HotelName != b.HotelName || got.Version != 1 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if len(got.Amenities) != 4 || got.Amenities[0] != "Infinity pool" {
		t.Fatalf("amenities round-trip: %v", got.Amenities)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not scanned")
	}

	got.Headline = "A quieter kind of luxury"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("version not bumped: %d", got.Version)
	}

	// A writer holding the old version must lose.
	stale := *got
	stale.Version = 1
	if err := repo.Update(ctx, &stale); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale update: want ErrConflict, got %v", err)
	}
}

func TestRepo_MySQL_GetMissingAndList(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing row: want ErrNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		b := &domain.Brochure{
			Prompt:     fmt.Sprintf("prompt %d", i),
			HotelName:  fmt.Sprintf("Hotel %d", i),
			Location:   "Lisbon, Portugal",
			SchemaJSON: []byte(`{}`),
		}
		if _, err := repo.Insert(ctx, b); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	items, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	// Newest first.
	if items[0].HotelName != "Hotel 2" {
		t.Fatalf("ordering: %+v", items)
	}
}
