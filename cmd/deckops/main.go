// Command deckops parses, simulates, stores and serves Yu-Gi-Oh! decks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/config"
	"github.com/ramonehamilton/DeckOps/internal/version"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"simulate", "Simulate opening hands for a .ydk file", runSimulate},
	{"import", "Import a .ydk file into the deck library", runImport},
	{"export", "Write a saved deck as a .ydk file", runExport},
	{"list", "List saved decks", runList},
	{"show", "Show a saved deck's composition", runShow},
	{"history", "Show a saved deck's simulation history", runHistory},
	{"watch", "Re-run simulations when .ydk files in a directory change", runWatch},
	{"serve", "Run the REST API server", runServe},
	{"migrate", "Run database migrations (up, down, status)", runMigrate},
	{"backup", "Create, list or restore deck library backups", runBackup},
}

// env carries the state every command shares.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// services opens the database and builds the service graph.
func (e *env) services(ctx context.Context) (*app.Services, error) {
	return app.NewServices(ctx, e.cfg, e.logger)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	name := os.Args[1]
	switch name {
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "--version":
		fmt.Println("deckops", version.String())
		return
	}

	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := dispatch(ctx, cmd, os.Args[2:])
		stop()
		if err != nil {
			if !errors.Is(err, flag.ErrHelp) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	printUsage()
	os.Exit(2)
}

// dispatch pulls the global -config and -debug flags out of args, then runs cmd.
func dispatch(ctx context.Context, cmd command, args []string) error {
	configPath, debug, rest := globalFlags(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	return cmd.run(ctx, &env{cfg: cfg, logger: newLogger(debug || cfg.App.DebugMode)}, rest)
}

// globalFlags extracts -config PATH and -debug, leaving the command's own flags.
func globalFlags(args []string) (configPath string, debug bool, rest []string) {
	for i := 0; i < len(args); i++ {
		name, isFlag := strings.CutPrefix(args[i], "-")
		name = strings.TrimPrefix(name, "-")
		switch {
		case isFlag && name == "debug":
			debug = true
		case isFlag && name == "config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case isFlag && strings.HasPrefix(name, "config="):
			configPath = strings.TrimPrefix(name, "config=")
		default:
			rest = append(rest, args[i])
		}
	}
	return configPath, debug, rest
}

// newLogger returns a slog logger backed by a charmbracelet handler on stderr.
func newLogger(debug bool) *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "deckops",
	})
	if debug {
		handler.SetLevel(log.DebugLevel)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func printUsage() {
	fmt.Println("DeckOps - Yu-Gi-Oh! deck toolkit")
	fmt.Println("================================")
	fmt.Println()
	fmt.Println("Usage: deckops <command> [-config path] [-debug] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  deckops simulate -file deck.ydk -runs 5000 -chart hands.html")
	fmt.Println("  deckops import -file deck.ydk -name \"Snake-Eye\"")
	fmt.Println("  deckops watch -dir ~/decks")
	fmt.Println("  deckops serve -port 8080")
	fmt.Println("  deckops backup create -password secret")
	fmt.Println()
	fmt.Println("Run 'deckops <command> -h' for command options.")
}
