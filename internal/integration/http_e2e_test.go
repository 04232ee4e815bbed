//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	server "luxe_brochure/internal/adapters/http_server"
	"luxe_brochure/internal/adapters/memcache"
	"luxe_brochure/internal/adapters/render"
	"luxe_brochure/internal/app"
	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/schema"
)

// ---------- in-memory infrastructure ----------

type memRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Brochure
}

func newMemRepo() *memRepo { return &memRepo{rows: map[int64]domain.Brochure{}} }

func (r *memRepo) Insert(_ context.Context, b *domain.Brochure) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.Version = 1
	b.CreatedAt = time.Now()
	r.rows[b.ID] = *b
	return b.ID, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*domain.Brochure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, limit int) ([]domain.Brochure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Brochure
	for id := r.nextID; id > 0 && len(out) < limit; id-- {
		if b, ok := r.rows[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, b *domain.Brochure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != b.Version {
		return domain.ErrConflict
	}
	b.Version++
	r.rows[b.ID] = *b
	return nil
}

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, _ string, outDir, baseName string) (domain.ExportPaths, error) {
	return domain.ExportPaths{
		PNGPath: outDir + "/" + baseName + ".png",
		PDFPath: outDir + "/" + baseName + ".pdf",
	}, nil
}

// scriptedPatcher returns one canned patch per call, in order.
type scriptedPatcher struct {
	mu      sync.Mutex
	patches []any
}

func (p *scriptedPatcher) GeneratePatch(context.Context, *schema.Document, string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.patches) == 0 {
		return map[string]any{}, nil
	}
	next := p.patches[0]
	p.patches = p.patches[1:]
	return next, nil
}

func startAPI(t *testing.T, patcher *scriptedPatcher) *httptest.Server {
	t.Helper()
	repo := newMemRepo()
	cache := memcache.New(time.Minute)
	outRoot := t.TempDir()

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	fallback := app.NewCopyFallback(7)
	gen := app.NewGenerateService(repo, nil, nil, nil, renderer, stubExporter{}, cache, fallback, outRoot)
	edit := app.NewEditService(repo, patcher, renderer, stubExporter{}, cache, outRoot)
	q := app.NewQueryService(repo, cache, time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Gen: gen, Edit: edit, Q: q, OutRoot: outRoot})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_GenerateEditRead(t *testing.T) {
	patcher := &scriptedPatcher{patches: []any{
		// Operation-shaped patch, as some models emit.
		map[string]any{"op": "replace", "path": "/sections/amenities/visibility", "value": false},
		// Read-only violation.
		map[string]any{"sections": map[string]any{"contact": map[string]any{"email": "x@y.z"}}},
	}}
	ts := startAPI(t, patcher)

	// Create.
	res := postJSON(t, ts.URL+"/v1/brochures", map[string]string{
		"prompt": "Brochure for Azure Sands Resort in Zanzibar",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", res.StatusCode)
	}
	var created struct {
		ID       int64           `json:"id"`
		Hotel    string          `json:"hotel_name"`
		Document json.RawMessage `json:"document"`
		Version  int             `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	res.Body.Close()
	if created.Hotel != "Azure Sands Resort" || created.Version != 1 || len(created.Document) == 0 {
		t.Fatalf("unexpected create body: %+v", created)
	}

	// Edit: hide amenities.
	res = postJSON(t, fmt.Sprintf("%s/v1/brochures/%d/edit", ts.URL, created.ID), map[string]string{
		"instruction": "hide the amenities section",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("edit status %d", res.StatusCode)
	}
	var edited struct {
		Status   string `json:"status"`
		Brochure struct {
			Amenities []string `json:"amenities"`
			Version   int      `json:"version"`
		} `json:"brochure"`
	}
	if err := json.NewDecoder(res.Body).Decode(&edited); err != nil {
		t.Fatalf("decode edit: %v", err)
	}
	res.Body.Close()
	if edited.Status != "updated" || len(edited.Brochure.Amenities) != 0 || edited.Brochure.Version != 2 {
		t.Fatalf("unexpected edit body: %+v", edited)
	}

	// Edit: contact is read-only, rejected with a structured error.
	res = postJSON(t, fmt.Sprintf("%s/v1/brochures/%d/edit", ts.URL, created.ID), map[string]string{
		"instruction": "change the contact email",
	})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("contact edit status %d", res.StatusCode)
	}
	var rejection struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rejection); err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	res.Body.Close()
	if rejection.Error != "needs_clarification" {
		t.Fatalf("unexpected rejection: %+v", rejection)
	}

	// Read with ETag round-trip.
	getURL := fmt.Sprintf("%s/v1/brochures/%d", ts.URL, created.ID)
	res, err := http.Get(getURL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	etag := res.Header.Get("ETag")
	res.Body.Close()
	if res.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("get status %d etag %q", res.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, getURL, nil)
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional get status %d", res.StatusCode)
	}

	// List.
	res, err = http.Get(ts.URL + "/v1/brochures?limit=10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listing struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	res.Body.Close()
	if len(listing.Items) != 1 || listing.Items[0].ID != created.ID {
		t.Fatalf("unexpected listing: %+v", listing)
	}
}

func TestHTTP_EndToEnd_ErrorStatuses(t *testing.T) {
	ts := startAPI(t, &scriptedPatcher{})

	res := postJSON(t, ts.URL+"/v1/brochures", map[string]string{"prompt": "hi"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("short prompt status %d", res.StatusCode)
	}
	res.Body.Close()

	res = postJSON(t, ts.URL+"/v1/brochures/999/edit", map[string]string{"instruction": "hide the gallery"})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing brochure status %d", res.StatusCode)
	}
	res.Body.Close()

	res, err := http.Get(ts.URL + "/v1/brochures/999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing get status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("problem content type %q", ct)
	}
	res.Body.Close()
}
