package terminology

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ncp/patient-summary/internal/platform/fhir"
)

// fakeGateway answers from a fixed map and records lookup counts.
type fakeGateway struct {
	displays map[string]string
	err      error
	calls    int
}

func (g *fakeGateway) Lookup(ctx context.Context, code, systemOID, language string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.displays[code], nil
}

func TestResolve_GatewayHit(t *testing.T) {
	gw := &fakeGateway{displays: map[string]string{"38341003": "Hypertensive disorder"}}
	r := NewResolver(gw, NewCache(), "en-GB", zerolog.Nop())

	res := r.Resolve(context.Background(), "38341003", fhir.OIDSNOMED)
	if res.Display != "Hypertensive disorder" {
		t.Errorf("expected gateway display, got %q", res.Display)
	}
	if res.Source != SourceGateway {
		t.Errorf("expected gateway source, got %q", res.Source)
	}
	if !res.Resolved() {
		t.Error("expected gateway hit to count as resolved")
	}
}

func TestResolve_CachesGatewayHits(t *testing.T) {
	gw := &fakeGateway{displays: map[string]string{"38341003": "Hypertensive disorder"}}
	r := NewResolver(gw, NewCache(), "en-GB", zerolog.Nop())

	r.Resolve(context.Background(), "38341003", fhir.OIDSNOMED)
	res := r.Resolve(context.Background(), "38341003", fhir.OIDSNOMED)

	if gw.calls != 1 {
		t.Errorf("expected 1 gateway call, got %d", gw.calls)
	}
	if res.Source != SourceCache {
		t.Errorf("expected cache source on second lookup, got %q", res.Source)
	}
}

func TestResolve_FallbackTableOnGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	r := NewResolver(gw, NewCache(), "en-GB", zerolog.Nop())

	res := r.Resolve(context.Background(), "H03AA01", fhir.OIDATC)
	if res.Display != "Levothyroxine" {
		t.Errorf("expected static table display, got %q", res.Display)
	}
	if res.Source != SourceTable {
		t.Errorf("expected table source, got %q", res.Source)
	}
}

func TestResolve_EchoOnTotalMiss(t *testing.T) {
	r := NewResolver(nil, NewCache(), "en-GB", zerolog.Nop())

	res := r.Resolve(context.Background(), "X99XX99", fhir.OIDATC)
	if res.Display != "X99XX99" {
		t.Errorf("expected code echoed as display, got %q", res.Display)
	}
	if res.Resolved() {
		t.Error("expected echo to count as unresolved")
	}
}

func TestResolve_EchoesAreNotCached(t *testing.T) {
	cache := NewCache()
	r := NewResolver(nil, cache, "en-GB", zerolog.Nop())

	r.Resolve(context.Background(), "X99XX99", fhir.OIDATC)
	if cache.Len() != 0 {
		t.Errorf("expected echo not cached, cache has %d entries", cache.Len())
	}
}

func TestResolve_NilGatewayServesTable(t *testing.T) {
	r := NewResolver(nil, NewCache(), "en-GB", zerolog.Nop())

	if got := r.Display(context.Background(), "N02BE01", fhir.OIDATC); got != "Paracetamol" {
		t.Errorf("expected Paracetamol, got %q", got)
	}
}

func TestCache_FirstWriteWins(t *testing.T) {
	c := NewCache()
	c.Put("code", "sys", "first")
	c.Put("code", "sys", "second")

	display, ok := c.Get("code", "sys")
	if !ok || display != "first" {
		t.Errorf("expected first write kept, got %q (%v)", display, ok)
	}
}

func TestFallbackDisplay_OnlyATC(t *testing.T) {
	if _, ok := fallbackDisplay("H03AA01", fhir.OIDSNOMED); ok {
		t.Error("expected no fallback for non-ATC system")
	}
	if name, ok := fallbackDisplay("H03AA01", fhir.OIDATC); !ok || name != "Levothyroxine" {
		t.Errorf("expected Levothyroxine, got %q (%v)", name, ok)
	}
}
