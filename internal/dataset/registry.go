// Package dataset knows which example datasets exist, where they live on the
// storage origin, and how to turn a cached family into a live connection.
package dataset

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dataquill/tutorkit/internal/errors"
)

type FileKind string

const (
	// KindDatabase is a ready-made database file, opened read-only.
	KindDatabase FileKind = "database"
	// KindCSV is a columnar file ingested into a fresh in-process store.
	KindCSV FileKind = "csv"
)

// File is one immutable dataset blob: a remote name under the origin and a
// local name inside the family's cache directory. Fetched once, never
// mutated afterwards.
type File struct {
	Remote string   `json:"remote"`
	Local  string   `json:"local"`
	SHA256 string   `json:"sha256,omitempty"`
	Kind   FileKind `json:"kind"`
	Table  string   `json:"table,omitempty"` // ingest target for csv files
}

// Family is a named group of files sharing one cache directory.
type Family struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Files       []File `json:"files"`
}

// Registry is the built-in set of dataset families. An external manifest
// (see LoadManifest) may replace it.
func Registry() map[string]Family {
	return map[string]Family{
		"penguins": {
			Name:        "penguins",
			Description: "Palmer Station penguin measurements, as a database file",
			Files: []File{
				{
					Remote: "penguins/palmer_penguins.db",
					Local:  "palmer_penguins.db",
					Kind:   KindDatabase,
				},
			},
		},
		"imdb": {
			Name:        "imdb",
			Description: "IMDB title and rating extracts",
			Files: []File{
				{
					Remote: "imdb/title_basics.csv",
					Local:  "title_basics.csv",
					Kind:   KindCSV,
					Table:  "title_basics",
				},
				{
					Remote: "imdb/title_ratings.csv",
					Local:  "title_ratings.csv",
					Kind:   KindCSV,
					Table:  "title_ratings",
				},
			},
		},
		"pypi": {
			Name:        "pypi",
			Description: "Package index metadata extracts",
			Files: []File{
				{
					Remote: "pypi/packages.csv",
					Local:  "packages.csv",
					Kind:   KindCSV,
					Table:  "packages",
				},
				{
					Remote: "pypi/releases.csv",
					Local:  "releases.csv",
					Kind:   KindCSV,
					Table:  "releases",
				},
			},
		},
	}
}

// Lookup finds a family in the registry.
func Lookup(registry map[string]Family, name string) (Family, error) {
	fam, ok := registry[name]
	if !ok {
		return Family{}, fmt.Errorf("%w: %s", errors.ErrDatasetUnknown, name)
	}
	return fam, nil
}

// Names returns the registry's family names, sorted.
func Names(registry map[string]Family) []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CacheDir returns the per-family cache directory. Each family gets its own
// directory; file names derive from the remote resource name.
func CacheDir(root, family string) string {
	return filepath.Join(root, family)
}

// LocalPath returns where a file lives inside the cache.
func (f File) LocalPath(root, family string) string {
	return filepath.Join(CacheDir(root, family), f.Local)
}
