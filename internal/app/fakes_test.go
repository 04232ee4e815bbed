package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"luxe_brochure/internal/domain"
	"luxe_brochure/internal/schema"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Brochure

	insertErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]domain.Brochure{}}
}

func (r *fakeRepo) Insert(_ context.Context, b *domain.Brochure) (int64, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.Version = 1
	r.rows[b.ID] = *b
	return b.ID, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (*domain.Brochure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, limit int) ([]domain.Brochure, error) {
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

func (r *fakeRepo) Update(_ context.Context, b *domain.Brochure) error {
	if r.updateErr != nil {
		return r.updateErr
	}
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

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeRenderer struct {
	lastData schema.RenderData
	err      error
}

func (r *fakeRenderer) Render(data schema.RenderData) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.lastData = data
	return "<html>" + data.HotelName + "</html>", nil
}

type fakeExporter struct {
	calls int
	err   error
}

func (e *fakeExporter) Export(_ context.Context, _ string, outDir, baseName string) (domain.ExportPaths, error) {
	if e.err != nil {
		return domain.ExportPaths{}, e.err
	}
	e.calls++
	return domain.ExportPaths{
		PNGPath: outDir + "/" + baseName + ".png",
		PDFPath: outDir + "/" + baseName + ".pdf",
	}, nil
}

type fakeCopyProvider struct {
	copy schema.Copy
	err  error
}

func (p *fakeCopyProvider) GenerateCopy(context.Context, string, string, string) (schema.Copy, error) {
	if p.err != nil {
		return schema.Copy{}, p.err
	}
	return p.copy, nil
}

type fakeImageProvider struct {
	uri string
	err error
}

func (p *fakeImageProvider) GenerateHeroImage(context.Context, string, string, string, string) (string, error) {
	return p.uri, p.err
}

type fakePatcher struct {
	raw any
	err error
}

func (p *fakePatcher) GeneratePatch(context.Context, *schema.Document, string) (any, error) {
	return p.raw, p.err
}

var errBoom = errors.New("boom")
