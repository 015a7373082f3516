package dataset

import (
	"context"
	"fmt"

	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/fetch"
	"github.com/dataquill/tutorkit/internal/logger"
)

// Bootstrapper turns a family name into a live connection: fetch whatever is
// missing from the cache, then either open the database file read-only or
// ingest the family's columnar files into a fresh in-process store.
type Bootstrapper struct {
	registry map[string]Family
	fetcher  *fetch.Fetcher
	cacheDir string
	log      *logger.Logger
}

func NewBootstrapper(registry map[string]Family, fetcher *fetch.Fetcher, cacheDir string, log *logger.Logger) *Bootstrapper {
	if log == nil {
		log = logger.Nop()
	}
	return &Bootstrapper{registry: registry, fetcher: fetcher, cacheDir: cacheDir, log: log}
}

// Prefetch downloads every missing file of the named families.
func (b *Bootstrapper) Prefetch(ctx context.Context, families []string) error {
	var jobs []fetch.Job
	for _, name := range families {
		fam, err := Lookup(b.registry, name)
		if err != nil {
			return err
		}
		for _, f := range fam.Files {
			jobs = append(jobs, fetch.Job{
				Remote: f.Remote,
				Target: f.LocalPath(b.cacheDir, fam.Name),
				SHA256: f.SHA256,
			})
		}
	}
	return b.fetcher.FetchAll(ctx, jobs)
}

// Open fetches (if needed) and connects the named family.
func (b *Bootstrapper) Open(ctx context.Context, family string) (*engine.DB, error) {
	fam, err := Lookup(b.registry, family)
	if err != nil {
		return nil, err
	}

	for _, f := range fam.Files {
		if err := b.fetcher.Fetch(ctx, f.Remote, f.LocalPath(b.cacheDir, fam.Name), f.SHA256); err != nil {
			return nil, err
		}
	}

	// A family built around a database file opens that file read-only; a
	// family of columnar files is ingested into an in-process store.
	for _, f := range fam.Files {
		if f.Kind == KindDatabase {
			return engine.Open(f.LocalPath(b.cacheDir, fam.Name), true, b.log)
		}
	}

	db, err := engine.OpenMemory(b.log)
	if err != nil {
		return nil, err
	}
	for _, f := range fam.Files {
		if f.Kind != KindCSV {
			continue
		}
		if err := db.IngestCSV(ctx, f.Table, f.LocalPath(b.cacheDir, fam.Name)); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap %s: %w", family, err)
		}
	}
	return db, nil
}

// Cached reports which of a family's files are already in the cache.
func (b *Bootstrapper) Cached(family string) (present, missing []string, err error) {
	fam, err := Lookup(b.registry, family)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range fam.Files {
		path := f.LocalPath(b.cacheDir, fam.Name)
		if fileExists(path) {
			present = append(present, f.Local)
		} else {
			missing = append(missing, f.Local)
		}
	}
	return present, missing, nil
}
