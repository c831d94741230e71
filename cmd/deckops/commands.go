package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ramonehamilton/DeckOps/internal/api"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/charts"
	"github.com/ramonehamilton/DeckOps/internal/display"
	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deckwatch"
	"github.com/ramonehamilton/DeckOps/internal/ygo/simulator"
)

func runSimulate(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	file := fs.String("file", "", "Path to the .ydk file (required)")
	draw := fs.Int("draw", e.cfg.Simulation.DrawCount, "Cards per hand")
	runs := fs.Int("runs", e.cfg.Simulation.Runs, "Number of simulated hands")
	seed := fs.Uint64("seed", e.cfg.Simulation.Seed, "Random seed for reproducible runs (0 = random)")
	top := fs.Int("top", display.DefaultTopCards, "Cards shown in the appearance table (0 = all)")
	chartPath := fs.String("chart", "", "Write an HTML chart to this path")
	openChart := fs.Bool("open", false, "Open the chart in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	e.cfg.Simulation.Seed = *seed
	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	report, err := simulateFile(ctx, e, services, *file, *draw, *runs)
	if err != nil {
		return err
	}

	display.Simulation(os.Stdout, report, *top)

	if *chartPath != "" {
		if err := charts.WriteFile(*chartPath, func(w io.Writer) error { return app.RenderReport(w, report) }); err != nil {
			return err
		}
		fmt.Printf("\nChart written to %s\n", *chartPath)
		if *openChart {
			return charts.OpenInBrowser(*chartPath)
		}
	}

	return nil
}

// simulateFile loads, enriches and simulates a deck file without saving it.
func simulateFile(ctx context.Context, e *env, services *app.Services, path string, draw, runs int) (*app.SimulationReport, error) {
	d, unresolved, err := app.NewDeckFacade(services).LoadDeckFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		e.logger.Warn("Some cards could not be resolved and were left out", "ids", unresolved)
	}

	return app.NewSimulationFacade(services).SimulateDeck(ctx, d, simulator.Options{DrawCount: draw, Runs: runs})
}

func runImport(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	file := fs.String("file", "", "Path to the .ydk file (required)")
	name := fs.String("name", "", "Deck name (default: file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read deck file: %w", err)
	}
	if *name == "" {
		*name = deckName(*file)
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	resp, err := app.NewDeckFacade(services).ImportDeck(ctx, &app.ImportDeckRequest{Name: *name, Content: string(content)})
	if err != nil {
		return err
	}

	fmt.Printf("Imported %q as %s (%d cards)\n", resp.Deck.Name, resp.Deck.ID, resp.Deck.TotalCards())
	if len(resp.Unresolved) > 0 {
		fmt.Printf("Could not resolve %d card id(s): %v\n", len(resp.Unresolved), resp.Unresolved)
	}
	return nil
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "Saved deck ID (required)")
	out := fs.String("out", "", "Output path, or - for stdout (default: <deck name>.ydk)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errors.New("-id is required")
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	export, err := app.NewDeckFacade(services).ExportDeck(ctx, *id)
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err := io.WriteString(os.Stdout, export.Content)
		return err
	}
	if *out == "" {
		*out = export.Filename
	}
	if err := os.WriteFile(*out, []byte(export.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write deck file: %w", err)
	}

	fmt.Printf("Deck exported to %s\n", *out)
	return nil
}

func runList(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	decks, err := app.NewDeckFacade(services).ListDecks(ctx)
	if err != nil {
		return err
	}

	display.Decks(os.Stdout, decks)
	return nil
}

func runShow(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "Saved deck ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errors.New("-id is required")
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	saved, err := app.NewDeckFacade(services).GetDeck(ctx, *id)
	if err != nil {
		return err
	}

	display.Composition(os.Stdout, saved.Name, saved.Composition())
	return nil
}

func runHistory(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	id := fs.String("id", "", "Saved deck ID (required)")
	limit := fs.Int("limit", 20, "Number of runs to show")
	record := fs.Bool("run", false, "Run and record a new simulation first")
	chartPath := fs.String("chart", "", "Write an HTML chart of the history to this path")
	openChart := fs.Bool("open", false, "Open the chart in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errors.New("-id is required")
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	sims := app.NewSimulationFacade(services)

	if *record {
		report, err := sims.Simulate(ctx, &app.SimulateRequest{DeckID: *id})
		if err != nil {
			return err
		}
		display.Simulation(os.Stdout, report, display.DefaultTopCards)
		fmt.Println()
	}

	runs, err := sims.History(ctx, *id, *limit)
	if err != nil {
		return err
	}
	display.History(os.Stdout, runs)

	if *chartPath != "" {
		if err := charts.WriteFile(*chartPath, func(w io.Writer) error { return sims.RenderHistory(ctx, *id, w) }); err != nil {
			return err
		}
		fmt.Printf("\nChart written to %s\n", *chartPath)
		if *openChart {
			return charts.OpenInBrowser(*chartPath)
		}
	}

	return nil
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	dir := fs.String("dir", ".", "Directory containing .ydk files")
	draw := fs.Int("draw", e.cfg.Simulation.DrawCount, "Cards per hand")
	runs := fs.Int("runs", e.cfg.Simulation.Runs, "Number of simulated hands")
	top := fs.Int("top", display.DefaultTopCards, "Cards shown in the appearance table (0 = all)")
	initial := fs.Bool("initial", false, "Simulate every deck in the directory on startup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	simulate := func(ctx context.Context, path string) {
		report, err := simulateFile(ctx, e, services, path, *draw, *runs)
		if err != nil {
			e.logger.Error("Simulation failed", "file", path, "error", err)
			return
		}
		fmt.Println()
		display.Simulation(os.Stdout, report, *top)
	}

	if *initial {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && deckwatch.IsDeckFile(entry.Name()) {
				simulate(ctx, filepath.Join(*dir, entry.Name()))
			}
		}
	}

	fmt.Printf("Watching %s for deck changes. Press Ctrl+C to stop.\n", *dir)
	return deckwatch.New(*dir, simulate, deckwatch.Options{Logger: e.logger}).Run(ctx)
}

func runServe(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", e.cfg.API.Port, "API server port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, err := e.services(ctx)
	if err != nil {
		return err
	}
	defer closeServices(e, services)

	server := api.NewServer(&api.Config{
		Port:           *port,
		AllowedOrigins: e.cfg.API.AllowedOrigins,
		Logger:         e.logger,
	}, &api.Facades{
		Deck:       app.NewDeckFacade(services),
		Simulation: app.NewSimulationFacade(services),
		Card:       app.NewCardFacade(services),
		System:     app.NewSystemFacade(services),
	})

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	fmt.Printf("API server running at http://localhost:%d\n", *port)
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runMigrate(_ context.Context, e *env, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: deckops migrate <up|down|status>")
	}

	dbPath, err := e.cfg.DatabasePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			e.logger.Warn("Error closing migration manager", "error", err)
		}
	}()

	switch args[0] {
	case "up":
		if err := mgr.Up(); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	case "down":
		if err := mgr.Down(); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	case "status", "version":
	default:
		return fmt.Errorf("unknown migrate command: %s", args[0])
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
	return nil
}

func closeServices(e *env, services *app.Services) {
	if err := services.Close(); err != nil {
		e.logger.Warn("Error closing database", "error", err)
	}
}

// deckName derives a deck name from a file path.
func deckName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runBackup(ctx context.Context, e *env, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: deckops backup <create|list|restore> [options]")
	}

	fs := flag.NewFlagSet("backup "+args[0], flag.ContinueOnError)
	dir := fs.String("dir", "", "Backup directory (default: <database dir>/backups)")
	name := fs.String("name", "", "Backup name for create (default: timestamped)")
	file := fs.String("file", "", "Backup file for restore")
	password := fs.String("password", os.Getenv("DECKOPS_BACKUP_PASSWORD"), "Encrypt or decrypt with this password")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	dbPath, err := e.cfg.DatabasePath()
	if err != nil {
		return err
	}
	bm := storage.NewBackupManager(dbPath)

	switch args[0] {
	case "create":
		info, err := bm.Backup(ctx, storage.BackupOptions{Dir: *dir, Name: *name, Password: *password})
		if err != nil {
			return err
		}
		e.logger.Info("Backup created", "path", info.Path, "encrypted", info.Encrypted)
		fmt.Printf("Backup written to %s (%d bytes)\n", info.Path, info.Size)
		fmt.Printf("SHA-256: %s\n", info.Checksum)
	case "list":
		backups, err := bm.List(*dir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		for _, b := range backups {
			lock := ""
			if b.Encrypted {
				lock = " [encrypted]"
			}
			fmt.Printf("%s  %10d bytes  %s%s\n", b.ModTime.Format(time.DateTime), b.Size, b.Path, lock)
		}
	case "restore":
		if *file == "" {
			fs.Usage()
			return errors.New("-file is required")
		}
		if err := bm.Restore(ctx, *file, *password); err != nil {
			return err
		}
		fmt.Printf("Database restored from %s\n", *file)
	default:
		return fmt.Errorf("unknown backup command: %s", args[0])
	}

	return nil
}
