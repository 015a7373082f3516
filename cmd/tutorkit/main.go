package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/dataset"
	"github.com/dataquill/tutorkit/internal/fetch"
	"github.com/dataquill/tutorkit/internal/logger"
	"github.com/dataquill/tutorkit/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "tutorkit",
	Short: "Runnable data tutorials against local example datasets",
}

var (
	flagVerbose  bool
	flagManifest string
	flagCacheDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flagManifest, "manifest", "", "dataset manifest file overriding the built-in registry")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "dataset cache directory")

	rootCmd.AddCommand(fetchCmd(), datasetsCmd(), lessonsCmd(), runCmd(), tablesCmd())
}

// app bundles what every command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	registry map[string]dataset.Family
	boot     *dataset.Bootstrapper
}

func newApp() (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}

	log := logger.Default()
	if flagVerbose {
		log.SetLevel(logger.LevelDebug)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	registry := dataset.Registry()
	if flagManifest != "" {
		registry, err = dataset.LoadManifest(flagManifest)
		if err != nil {
			return nil, err
		}
	}

	fetcher, err := fetch.New(cfg.Fetch, log, m)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		registry: registry,
		boot:     dataset.NewBootstrapper(registry, fetcher, cfg.CacheDir, log),
	}, nil
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [family...]",
		Short: "Download example datasets into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			families := args
			if len(families) == 0 {
				families = dataset.Names(a.registry)
			}
			if err := a.boot.Prefetch(cmd.Context(), families); err != nil {
				return err
			}
			fmt.Printf("fetched %d families into %s\n", len(families), a.cfg.CacheDir)
			return nil
		},
	}
}

func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List dataset families and their cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, name := range dataset.Names(a.registry) {
				fam := a.registry[name]
				present, missing, err := a.boot.Cached(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", fam.Name, fam.Description)
				for _, f := range present {
					fmt.Printf("  [cached]  %s\n", f)
				}
				for _, f := range missing {
					fmt.Printf("  [missing] %s\n", f)
				}
			}
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <family>",
		Short: "Bootstrap a family and list its tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			db, err := a.boot.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := db.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Println(t)
			}
			return nil
		},
	}
}
