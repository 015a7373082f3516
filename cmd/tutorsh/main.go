package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/logger"
)

const prompt = "tutorsh> "

func main() {
	family := flag.String("family", "", "dataset family to open on startup")
	dbPath := flag.String("db", "", "database file to open read-only instead of a family")
	plain := flag.Bool("plain", false, "plain tab-separated output")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *plain {
		cfg.Render.Interactive = false
	}

	log := logger.Default()
	if *verbose {
		log.SetLevel(logger.LevelDebug)
	}

	sh, err := newShell(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize shell: %v\n", err)
		os.Exit(1)
	}
	defer sh.close()

	fmt.Println("tutorsh: interactive SQL over the tutorial datasets")
	switch {
	case *dbPath != "":
		if err := sh.openFile(*dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", *dbPath, err)
			os.Exit(1)
		}
	case *family != "":
		if err := sh.open(*family); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", *family, err)
			os.Exit(1)
		}
	}
	fmt.Println("Type '.help' for commands.")
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(cfg.CacheDir, "tutorsh_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err.Error() == "EOF" {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			continue
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		done, err := sh.execute(input)
		if done {
			return
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		fmt.Println()
	}
}
