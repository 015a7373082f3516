package dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/dataset"
	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/errors"
	"github.com/dataquill/tutorkit/internal/fetch"
)

func testBootstrapper(t *testing.T, registry map[string]dataset.Family, files map[string][]byte) (*dataset.Bootstrapper, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	f, err := fetch.New(config.FetchConfig{Origin: srv.URL, Concurrency: 2}, nil, nil)
	if err != nil {
		t.Fatalf("fetch.New: %v", err)
	}
	cacheDir := t.TempDir()
	return dataset.NewBootstrapper(registry, f, cacheDir, nil), &hits
}

func csvRegistry() map[string]dataset.Family {
	return map[string]dataset.Family{
		"birds": {
			Name: "birds",
			Files: []dataset.File{
				{Remote: "birds/sightings.csv", Local: "sightings.csv", Kind: dataset.KindCSV, Table: "sightings"},
				{Remote: "birds/species.csv", Local: "species.csv", Kind: dataset.KindCSV, Table: "species"},
			},
		},
	}
}

func TestBootstrapCSVFamily(t *testing.T) {
	boot, _ := testBootstrapper(t, csvRegistry(), map[string][]byte{
		"/birds/sightings.csv": []byte("species,n\nrobin,3\nwren,1\n"),
		"/birds/species.csv":   []byte("species,family\nrobin,Turdidae\n"),
	})

	db, err := boot.Open(context.Background(), "birds")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	tables, err := db.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "sightings" || tables[1] != "species" {
		t.Fatalf("tables = %v, want [sightings species]", tables)
	}

	v, err := db.QueryScalar(context.Background(), "SELECT sum(n) FROM sightings")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if v != int64(4) {
		t.Fatalf("sum = %v, want 4", v)
	}
	if db.ReadOnly() {
		t.Fatal("an ingested in-memory store should be writable")
	}
}

func TestBootstrapDatabaseFamilyIsReadOnly(t *testing.T) {
	// Build a database file to serve as the origin blob.
	src := filepath.Join(t.TempDir(), "src.db")
	wdb, err := engine.Open(src, false, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := wdb.Exec(ctx, "CREATE TABLE penguins (species TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := wdb.Exec(ctx, "INSERT INTO penguins VALUES ('Adelie')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	wdb.Close()
	blob, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read db file: %v", err)
	}

	registry := map[string]dataset.Family{
		"penguins": {
			Name: "penguins",
			Files: []dataset.File{
				{Remote: "penguins/p.db", Local: "p.db", Kind: dataset.KindDatabase},
			},
		},
	}
	boot, hits := testBootstrapper(t, registry, map[string][]byte{"/penguins/p.db": blob})

	db, err := boot.Open(ctx, "penguins")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !db.ReadOnly() {
		t.Fatal("a database-file family should open read-only")
	}
	tables, err := db.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "penguins" {
		t.Fatalf("tables = %v, want [penguins]", tables)
	}
	v, err := db.QueryScalar(ctx, "SELECT count(*) FROM penguins")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if v != int64(1) {
		t.Fatalf("count = %v, want 1", v)
	}
	if err := db.Exec(ctx, "DELETE FROM penguins"); !errors.Is(err, errors.ErrReadOnly) {
		t.Fatalf("want ErrReadOnly, got %v", err)
	}
	db.Close()

	// A second bootstrap serves from the cache without another transfer.
	db2, err := boot.Open(ctx, "penguins")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	db2.Close()
	if got := atomic.LoadInt64(hits); got != 1 {
		t.Fatalf("origin hits = %d, want 1", got)
	}
}

func TestBootstrapUnknownFamily(t *testing.T) {
	boot, _ := testBootstrapper(t, csvRegistry(), nil)
	if _, err := boot.Open(context.Background(), "nope"); !errors.Is(err, errors.ErrDatasetUnknown) {
		t.Fatalf("want ErrDatasetUnknown, got %v", err)
	}
}

func TestPrefetchAndCached(t *testing.T) {
	boot, _ := testBootstrapper(t, csvRegistry(), map[string][]byte{
		"/birds/sightings.csv": []byte("species,n\n"),
		"/birds/species.csv":   []byte("species,family\n"),
	})

	present, missing, err := boot.Cached("birds")
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	if len(present) != 0 || len(missing) != 2 {
		t.Fatalf("before prefetch: present=%v missing=%v", present, missing)
	}

	if err := boot.Prefetch(context.Background(), []string{"birds"}); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}

	present, missing, err = boot.Cached("birds")
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	if len(present) != 2 || len(missing) != 0 {
		t.Fatalf("after prefetch: present=%v missing=%v", present, missing)
	}
}
