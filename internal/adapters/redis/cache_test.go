package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "luxe_brochure/internal/adapters/redis"
	"luxe_brochure/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_SetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := domain.Brochure{ID: 7, HotelName: "Azure Sands", Amenities: []string{"Spa", "Pool"}}
	if err := c.Set(ctx, "brochure:7", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.Brochure
	ok, err := c.Get(ctx, "brochure:7", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.HotelName != "Azure Sands" || len(out.Amenities) != 2 {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "brochure:7"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "brochure:7", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after del, ok=%v err=%v", ok, err)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := newTestCache(t)
	var out domain.Brochure
	ok, err := c.Get(context.Background(), "brochure:404", &out)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
}

func TestCache_NonPositiveTTLSkipsWrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out string
	ok, _ := c.Get(ctx, "k", &out)
	if ok {
		t.Fatalf("expected entry to be skipped for ttl<=0")
	}
}
