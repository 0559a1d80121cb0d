package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/config"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/ondcsearch/internal/usecase/health"
)

const catalogBody = `{"response": {"data": [
	{"id": "p1_i1", "item_details": {"id": "i1", "descriptor": {"name": "Organic Rice 1kg"}, "price": {"value": "120", "currency": "INR"}}}
]}}`

// closedAddr returns a local address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}
	return addr
}

func TestBuildDeps_UnreachableStoreServesKeywordOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogBody))
	}))
	defer srv.Close()

	cfg := config.Config{
		Catalog:   config.CatalogConfig{BaseURL: srv.URL},
		Database:  config.DatabaseConfig{Addrs: []string{closedAddr(t)}, ReadinessTimeout: 1},
		Embedding: config.EmbeddingConfig{Provider: "hash", Dimensions: 8},
	}
	cfg.ApplyDefaults()
	a := &app{env: "test", cfg: cfg, logger: zap.NewNop()}

	d, err := a.buildDeps(context.Background())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	defer d.Close()

	if d.store != nil || d.vector != nil {
		t.Fatal("vector path should be disabled when the store is unreachable")
	}
	if d.storeErr == nil {
		t.Error("storeErr should record the connect failure")
	}

	threshold := 0.0
	resp, err := d.search.Search(context.Background(), request.Params{Query: "organic rice", Threshold: &threshold})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.SearchType != mode.Keyword {
		t.Errorf("SearchType = %q, want %q", resp.SearchType, mode.Keyword)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}

	report := d.health.Check(context.Background())
	if report.Status != healthuc.Degraded {
		t.Errorf("health = %q, want degraded", report.Status)
	}
	if report.Checks[healthuc.CheckStore] != healthuc.CheckError || report.Checks[healthuc.CheckIndex] != healthuc.CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
	if report.Checks[healthuc.CheckEmbedding] != healthuc.CheckOK {
		t.Errorf("embedding check = %q", report.Checks[healthuc.CheckEmbedding])
	}
}

func TestBuildDeps_VectorDisabledSkipsStore(t *testing.T) {
	disabled := false
	cfg := config.Config{
		Catalog:   config.CatalogConfig{BaseURL: "http://127.0.0.1"},
		Embedding: config.EmbeddingConfig{Provider: "hash", Dimensions: 8},
		Vector:    config.VectorConfig{Enabled: &disabled},
	}
	cfg.ApplyDefaults()
	a := &app{env: "test", cfg: cfg, logger: zap.NewNop()}

	d, err := a.buildDeps(context.Background())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	defer d.Close()

	if d.store != nil || d.storeErr != nil {
		t.Errorf("store = %v, storeErr = %v", d.store, d.storeErr)
	}
	report := d.health.Check(context.Background())
	if _, ok := report.Checks[healthuc.CheckStore]; ok {
		t.Errorf("store check should be skipped, got %v", report.Checks)
	}
}
