package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/dataset"
	"github.com/dataquill/tutorkit/internal/engine"
	"github.com/dataquill/tutorkit/internal/fetch"
	"github.com/dataquill/tutorkit/internal/logger"
	"github.com/dataquill/tutorkit/internal/pypi"
	"github.com/dataquill/tutorkit/internal/render"
)

// shell holds the state behind the REPL: the open database, if any, and
// everything needed to open another one.
type shell struct {
	cfg      *config.Config
	log      *logger.Logger
	boot     *dataset.Bootstrapper
	renderer *render.Renderer

	db     *engine.DB
	family string
}

func newShell(cfg *config.Config, log *logger.Logger) (*shell, error) {
	fetcher, err := fetch.New(cfg.Fetch, log, nil)
	if err != nil {
		return nil, err
	}
	return &shell{
		cfg:      cfg,
		log:      log,
		boot:     dataset.NewBootstrapper(dataset.Registry(), fetcher, cfg.CacheDir, log),
		renderer: render.New(cfg.Render),
	}, nil
}

func (s *shell) close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// execute runs one line of input. The bool result reports whether the
// shell should exit.
func (s *shell) execute(input string) (bool, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, ".") {
		return s.dotCommand(input)
	}
	if s.db == nil {
		return false, fmt.Errorf("no dataset open; use .open <family>")
	}

	ctx := context.Background()
	if s.cfg.Engine.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Engine.QueryTimeout)
		defer cancel()
	}

	res, err := s.db.Query(ctx, input)
	if err != nil {
		return false, err
	}
	fmt.Print(s.renderer.Render(res))
	return false, nil
}

func (s *shell) dotCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case ".exit", ".quit":
		return true, nil
	case ".help":
		s.help()
		return false, nil
	case ".open":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: .open <family>")
		}
		return false, s.open(fields[1])
	case ".fetch":
		families := fields[1:]
		if len(families) == 0 {
			families = dataset.Names(dataset.Registry())
		}
		return false, s.boot.Prefetch(context.Background(), families)
	case ".tables":
		if s.db == nil {
			return false, fmt.Errorf("no dataset open")
		}
		tables, err := s.db.ListTables(context.Background())
		if err != nil {
			return false, err
		}
		for _, t := range tables {
			fmt.Println(t)
		}
		return false, nil
	case ".schema":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: .schema <table>")
		}
		return false, s.schema(fields[1])
	case ".mode":
		if len(fields) != 2 || (fields[1] != "box" && fields[1] != "plain") {
			return false, fmt.Errorf("usage: .mode box|plain")
		}
		s.cfg.Render.Interactive = fields[1] == "box"
		s.renderer = render.New(s.cfg.Render)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s; try .help", fields[0])
	}
}

func (s *shell) open(family string) error {
	db, err := s.boot.Open(context.Background(), family)
	if err != nil {
		return err
	}
	if s.db != nil {
		s.db.Close()
	}
	s.db = db
	s.family = family

	if family == "pypi" {
		client := pypi.NewClient(s.cfg.PyPI, s.log)
		if err := client.RegisterUDFs(); err != nil {
			return err
		}
	}

	fmt.Printf("opened %s\n", family)
	return nil
}

// openFile attaches an arbitrary database file read-only, bypassing the
// registry.
func (s *shell) openFile(path string) error {
	db, err := engine.Open(path, true, s.log)
	if err != nil {
		return err
	}
	if s.db != nil {
		s.db.Close()
	}
	s.db = db
	s.family = ""
	fmt.Printf("opened %s (read-only)\n", path)
	return nil
}

func (s *shell) schema(table string) error {
	if s.db == nil {
		return fmt.Errorf("no dataset open")
	}
	res, err := s.db.Query(context.Background(), fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return err
	}
	fmt.Print(s.renderer.Render(res))
	return nil
}

func (s *shell) help() {
	names := dataset.Names(dataset.Registry())
	fmt.Print(`Commands:
  .open <family>       open a dataset family (` + strings.Join(names, ", ") + `)
  .fetch [family...]   download datasets into the cache
  .tables              list tables in the open dataset
  .schema <table>      show a table's columns
  .mode box|plain      switch result rendering
  .help                this text
  .exit                leave the shell

Anything else is run as SQL against the open dataset.
`)
}
