// Command trap-report renders the motion event database as a PNG timeline
// or an HTML page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/banshee-data/trapcam/internal/db"
	"github.com/banshee-data/trapcam/internal/report"
	"github.com/banshee-data/trapcam/internal/security"
	"github.com/banshee-data/trapcam/internal/version"
)

var (
	dbPath      = flag.String("db", "trap_events.db", "SQLite event database")
	since       = flag.Duration("since", 24*time.Hour, "Report on events newer than this")
	limit       = flag.Int("limit", 0, "Maximum rows of each kind to read (0 = no limit)")
	outPath     = flag.String("out", "trap-report.png", "Output file (.png or .html)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("trap-report"))
		return
	}

	if err := run(context.Background(), *dbPath, *outPath, time.Now().Add(-*since), *limit); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, dbFile, out string, from time.Time, n int) error {
	format, err := report.FormatFor(out)
	if err != nil {
		return err
	}
	if err := security.ValidateOutputPath(out); err != nil {
		return err
	}
	if _, err := os.Stat(dbFile); err != nil {
		return fmt.Errorf("event database: %w", err)
	}
	events, err := db.Open(dbFile)
	if err != nil {
		return fmt.Errorf("failed to open event database: %w", err)
	}
	defer events.Close()

	tl, err := report.Load(ctx, events, from, n)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := report.Write(f, tl, format); err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %s: %d events, %d summaries", out, len(tl.Events), len(tl.Summaries))
	return nil
}
